package parser

// Label is the qualitative band an overall score falls into.
type Label string

const (
	LabelExcellent    Label = "Excellent"
	LabelVeryGood     Label = "Very Good"
	LabelAverage      Label = "Average"
	LabelBelowAverage Label = "Below Average"
	LabelPoor         Label = "Poor"
)

// Tier is the severity colour used when rendering a score.
type Tier string

const (
	TierGreen  Tier = "green"
	TierYellow Tier = "yellow"
	TierRed    Tier = "red"
)

// Defaults applied when a field cannot be extracted.
const (
	DefaultProductName = "Product"
	DefaultBrand       = "Unknown"
	DefaultCategory    = "General"
	DefaultScore       = 5
)

// Fixed maximums of the four score components.
const (
	MaxPackaging     = 3
	MaxProduction    = 3
	MaxCompanyEthics = 2
	MaxLifecycle     = 2
)

// SubScore is one weighted component of the overall score.
type SubScore struct {
	Points int    `json:"points"`
	Max    int    `json:"max"`
	Reason string `json:"reason"`
}

// SubScores holds the score breakdown. A nil entry means the component was
// missing or rejected.
type SubScores struct {
	Packaging     *SubScore `json:"packaging"`
	Production    *SubScore `json:"production"`
	CompanyEthics *SubScore `json:"company_ethics"`
	Lifecycle     *SubScore `json:"lifecycle"`
}

// Alternative is a suggested substitute product.
type Alternative struct {
	Index        int    `json:"index"`
	Name         string `json:"name"`
	Brand        string `json:"brand"`
	Reason       string `json:"reason"`
	PriceTier    string `json:"price_tier"`
	Availability string `json:"availability"`
}

// Tips groups the action tips by kind.
type Tips struct {
	Recycling     []string `json:"recycling"`
	ReduceImpact  []string `json:"reduce_impact"`
	BetterChoices []string `json:"better_choices"`
}

// Report is the structured form of a sustainability analysis. Every field is
// populated, either extracted or defaulted, and slices are never nil.
type Report struct {
	ProductName          string        `json:"product_name"`
	Brand                string        `json:"brand"`
	Category             string        `json:"category"`
	Score                int           `json:"score"`
	ScoreLabel           Label         `json:"score_label"`
	ScoreTier            Tier          `json:"score_tier"`
	ScoreEmoji           string        `json:"score_emoji"`
	SubScores            SubScores     `json:"sub_scores"`
	Pros                 []string      `json:"pros"`
	Cons                 []string      `json:"cons"`
	Alternatives         []Alternative `json:"alternatives"`
	AlternativesStrategy string        `json:"alternatives_strategy,omitempty"`
	Tips                 Tips          `json:"tips"`
	Verdict              string        `json:"verdict"`
}

// IsEmpty reports whether nothing could be extracted, i.e. every field still
// holds its default.
func (r Report) IsEmpty() bool {
	return r.ProductName == DefaultProductName &&
		r.Brand == DefaultBrand &&
		r.Category == DefaultCategory &&
		r.Score == DefaultScore &&
		r.SubScores == (SubScores{}) &&
		len(r.Pros) == 0 &&
		len(r.Cons) == 0 &&
		len(r.Alternatives) == 0 &&
		len(r.Tips.Recycling) == 0 &&
		len(r.Tips.ReduceImpact) == 0 &&
		len(r.Tips.BetterChoices) == 0 &&
		r.Verdict == ""
}

func defaultReport() Report {
	return Report{
		ProductName:  DefaultProductName,
		Brand:        DefaultBrand,
		Category:     DefaultCategory,
		Score:        DefaultScore,
		Pros:         []string{},
		Cons:         []string{},
		Alternatives: []Alternative{},
		Tips: Tips{
			Recycling:     []string{},
			ReduceImpact:  []string{},
			BetterChoices: []string{},
		},
	}
}
