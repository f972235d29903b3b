package parser

import (
	"reflect"
	"strings"
	"testing"
)

const ecoJug = "Product Name: EcoJug\nBrand: GreenCo\nCategory: Kitchenware\n\nSUSTAINABILITY SCORE: 8/10\n\n" +
	"Score Details:\n• Packaging: 3/3 - recyclable\n• Production: 2/3 - moderate energy\n" +
	"• Company Ethics: 2/2 - certified fair trade\n• Lifecycle Impact: 1/2 - long-lived\n\n" +
	"PROS\n• Durable\n• Recyclable\n\nCONS\n• Heavy\n\n" +
	"ALTERNATIVES\n\n1. Glass Jug\nBrand: ClearCo\nWhy better: no plastic\nPrice: similar\nWhere: supermarkets\n\n" +
	"ACTION TIPS\n\nRecycling:\n• Rinse before recycling\n\nReduce Impact:\n• Reuse often\n\n" +
	"Better Choices:\n• Buy glass\n\nVERDICT\nA solid sustainable choice."

const filledTemplate = `PRODUCT INFO
Product Name: Bamboo Toothbrush
Brand: EcoSmile
Category: Personal Care

SUSTAINABILITY SCORE: 9/10

Score Details:
• Packaging: 3/3 - Compostable cardboard box
• Production: 3/3 - Sustainably harvested bamboo
• Company Ethics: 2/2 - B Corp certified
• Lifecycle Impact: 1/2 - Bristles are nylon

PROS
• Biodegradable handle
• Plastic-free packaging
• Affordable

CONS
• Nylon bristles are not compostable
• Shorter lifespan than plastic brushes
• Handle can mould if left wet

ALTERNATIVES

1. Wooden Toothbrush
Brand: WoodyBrush
Why better: Plant-based bristles
Price: similar
Where: Health food stores

2. Replaceable Head Toothbrush
Brand: Goodwell
Why better: Only the head is replaced
Price: expensive
Where: Online

3. Silicone Toothbrush
Brand: SoftLoop
Why better: Lasts much longer
Price: cheaper
Where: Pharmacies

ACTION TIPS

Recycling:
• Pull the bristles out before composting the handle
• Recycle the cardboard box
• Check local rules for bamboo

Reduce Impact:
• Replace every three months
• Dry the brush between uses
• Buy in multipacks

Better Choices:
• Look for plant-based bristles
• Prefer unbleached packaging
• Support certified brands

VERDICT
A strong low-waste choice held back by its nylon bristles.

Guidelines:
- Be specific and actionable
`

func TestParseEcoJug(t *testing.T) {
	r := Parse(ecoJug)

	if r.ProductName != "EcoJug" {
		t.Errorf("ProductName = %q, want %q", r.ProductName, "EcoJug")
	}
	if r.Brand != "GreenCo" {
		t.Errorf("Brand = %q, want %q", r.Brand, "GreenCo")
	}
	if r.Category != "Kitchenware" {
		t.Errorf("Category = %q, want %q", r.Category, "Kitchenware")
	}
	if r.Score != 8 {
		t.Errorf("Score = %d, want 8", r.Score)
	}
	if r.ScoreLabel != LabelVeryGood {
		t.Errorf("ScoreLabel = %q, want %q", r.ScoreLabel, LabelVeryGood)
	}
	if !reflect.DeepEqual(r.Pros, []string{"Durable", "Recyclable"}) {
		t.Errorf("Pros = %q", r.Pros)
	}
	if !reflect.DeepEqual(r.Cons, []string{"Heavy"}) {
		t.Errorf("Cons = %q", r.Cons)
	}
	want := []Alternative{{Index: 1, Name: "Glass Jug", Brand: "ClearCo", Reason: "no plastic", PriceTier: "similar", Availability: "supermarkets"}}
	if !reflect.DeepEqual(r.Alternatives, want) {
		t.Errorf("Alternatives = %+v, want %+v", r.Alternatives, want)
	}
	if r.AlternativesStrategy != StrategyStrict {
		t.Errorf("AlternativesStrategy = %q, want %q", r.AlternativesStrategy, StrategyStrict)
	}
	if r.Verdict != "A solid sustainable choice." {
		t.Errorf("Verdict = %q", r.Verdict)
	}
	if r.SubScores.Lifecycle == nil || *r.SubScores.Lifecycle != (SubScore{Points: 1, Max: 2, Reason: "long-lived"}) {
		t.Errorf("Lifecycle = %+v", r.SubScores.Lifecycle)
	}
	if !reflect.DeepEqual(r.Tips.Recycling, []string{"Rinse before recycling"}) ||
		!reflect.DeepEqual(r.Tips.ReduceImpact, []string{"Reuse often"}) ||
		!reflect.DeepEqual(r.Tips.BetterChoices, []string{"Buy glass"}) {
		t.Errorf("Tips = %+v", r.Tips)
	}
}

func TestParseTemplateRoundTrip(t *testing.T) {
	r := Parse(filledTemplate)

	if r.ProductName != "Bamboo Toothbrush" || r.Brand != "EcoSmile" || r.Category != "Personal Care" {
		t.Errorf("product info = %q / %q / %q", r.ProductName, r.Brand, r.Category)
	}
	if r.Score != 9 || r.ScoreLabel != LabelExcellent || r.ScoreTier != TierGreen {
		t.Errorf("score = %d %q %q", r.Score, r.ScoreLabel, r.ScoreTier)
	}

	subs := []struct {
		name string
		got  *SubScore
		want SubScore
	}{
		{"packaging", r.SubScores.Packaging, SubScore{3, 3, "Compostable cardboard box"}},
		{"production", r.SubScores.Production, SubScore{3, 3, "Sustainably harvested bamboo"}},
		{"company ethics", r.SubScores.CompanyEthics, SubScore{2, 2, "B Corp certified"}},
		{"lifecycle", r.SubScores.Lifecycle, SubScore{1, 2, "Bristles are nylon"}},
	}
	for _, s := range subs {
		if s.got == nil || *s.got != s.want {
			t.Errorf("%s = %+v, want %+v", s.name, s.got, s.want)
		}
	}

	if len(r.Pros) != 3 || r.Pros[2] != "Affordable" {
		t.Errorf("Pros = %q", r.Pros)
	}
	if len(r.Cons) != 3 || r.Cons[0] != "Nylon bristles are not compostable" {
		t.Errorf("Cons = %q", r.Cons)
	}

	wantAlts := []Alternative{
		{1, "Wooden Toothbrush", "WoodyBrush", "Plant-based bristles", "similar", "Health food stores"},
		{2, "Replaceable Head Toothbrush", "Goodwell", "Only the head is replaced", "expensive", "Online"},
		{3, "Silicone Toothbrush", "SoftLoop", "Lasts much longer", "cheaper", "Pharmacies"},
	}
	if !reflect.DeepEqual(r.Alternatives, wantAlts) {
		t.Errorf("Alternatives = %+v, want %+v", r.Alternatives, wantAlts)
	}

	if len(r.Tips.Recycling) != 3 || len(r.Tips.ReduceImpact) != 3 || len(r.Tips.BetterChoices) != 3 {
		t.Errorf("Tips = %+v", r.Tips)
	}
	if r.Tips.BetterChoices[2] != "Support certified brands" {
		t.Errorf("BetterChoices[2] = %q", r.Tips.BetterChoices[2])
	}
	if r.Verdict != "A strong low-waste choice held back by its nylon bristles." {
		t.Errorf("Verdict = %q", r.Verdict)
	}
}

func TestParseTotality(t *testing.T) {
	inputs := []string{
		"",
		"   \n\n\t",
		"lorem ipsum dolor sit amet",
		"PROS\nCONS\nALTERNATIVES\nVERDICT",
		"SUSTAINABILITY SCORE: /10\nScore Details:\n• Packaging: x/3",
		"ALTERNATIVES\n1.\n2.\nBrand:\nWhy better:\n3. ",
		"ACTION TIPS\nRecycling:",
		"\x00\xff\xfe garbage \u2022\u2022\u2022",
		strings.Repeat("1. Brand: Why better: Price: Where: ", 50),
	}

	for _, in := range inputs {
		r := Parse(in)
		if r.Pros == nil || r.Cons == nil || r.Alternatives == nil ||
			r.Tips.Recycling == nil || r.Tips.ReduceImpact == nil || r.Tips.BetterChoices == nil {
			t.Errorf("Parse(%q) returned a nil slice: %+v", in, r)
		}
		if r.Score < 0 || r.Score > 10 {
			t.Errorf("Parse(%q).Score = %d", in, r.Score)
		}
		if r.ScoreLabel == "" || r.ProductName == "" || r.Brand == "" || r.Category == "" {
			t.Errorf("Parse(%q) left a scalar unset: %+v", in, r)
		}
	}

	if r := Parse(""); !r.IsEmpty() {
		t.Errorf("Parse(\"\").IsEmpty() = false, got %+v", r)
	}
	if r := Parse(ecoJug); r.IsEmpty() {
		t.Errorf("Parse(ecoJug).IsEmpty() = true")
	}
}

func TestParseIdempotent(t *testing.T) {
	for _, in := range []string{ecoJug, filledTemplate, "", "PROS\n• one"} {
		a, b := Parse(in), Parse(in)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("Parse not idempotent for %q:\n%+v\n%+v", in, a, b)
		}
	}
}

func TestParseWrappedBullet(t *testing.T) {
	text := "PROS\n• Made from recycled glass\n• Refillable\n• Ships in a cardboard sleeve that\n  is fully compostable\n\nCONS\n• Fragile"
	r := Parse(text)

	want := []string{"Made from recycled glass", "Refillable", "Ships in a cardboard sleeve that is fully compostable"}
	if !reflect.DeepEqual(r.Pros, want) {
		t.Errorf("Pros = %q, want %q", r.Pros, want)
	}
}

func TestParseMissingVerdict(t *testing.T) {
	text := strings.Replace(ecoJug, "VERDICT\nA solid sustainable choice.", "", 1)
	r := Parse(text)
	if r.Verdict != "" {
		t.Errorf("Verdict = %q, want empty", r.Verdict)
	}
	if r.ProductName != "EcoJug" {
		t.Errorf("ProductName = %q", r.ProductName)
	}
}

func TestParseCRLFAndMarkdown(t *testing.T) {
	text := "## **PRODUCT INFO**\r\n**Product Name:** Oat Milk\r\n**Brand:** Oatly\r\n\r\n" +
		"**SUSTAINABILITY SCORE:** 7/10\r\n\r\n**PROS**\r\n- Low water use\r\n- Plant based\r\n\r\n" +
		"**VERDICT**\r\nA good dairy swap.\r\n"
	r := Parse(text)

	if r.ProductName != "Oat Milk" || r.Brand != "Oatly" {
		t.Errorf("product = %q / %q", r.ProductName, r.Brand)
	}
	if r.Score != 7 {
		t.Errorf("Score = %d, want 7", r.Score)
	}
	if !reflect.DeepEqual(r.Pros, []string{"Low water use", "Plant based"}) {
		t.Errorf("Pros = %q", r.Pros)
	}
	if r.Verdict != "A good dairy swap." {
		t.Errorf("Verdict = %q", r.Verdict)
	}
}

func TestParseScoreEdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		want      int
		wantTrace bool
	}{
		{"integer", "SUSTAINABILITY SCORE: 6/10", 6, false},
		{"decimal rounds up", "SUSTAINABILITY SCORE: 7.5/10", 8, false},
		{"decimal rounds down", "Sustainability Score: 4.2 / 10", 4, false},
		{"out of range", "SUSTAINABILITY SCORE: 12/10", DefaultScore, true},
		{"missing", "no score here", DefaultScore, false},
		{"wrong denominator", "SUSTAINABILITY SCORE: 60/100", DefaultScore, false},
	}

	for _, tt := range tests {
		var events []Event
		r := Parse(tt.text, WithTrace(func(e Event) {
			if e.Stage == "score" {
				events = append(events, e)
			}
		}))
		if r.Score != tt.want {
			t.Errorf("%s: Score = %d, want %d", tt.name, r.Score, tt.want)
		}
		if (len(events) > 0) != tt.wantTrace {
			t.Errorf("%s: score events = %v, want trace %v", tt.name, events, tt.wantTrace)
		}
	}
}

func TestParseSubScoreOutOfRange(t *testing.T) {
	text := "Score Details:\n• Packaging: 4/3 - overclaimed\n• Production: 2/5 - wrong scale\n" +
		"• Company Ethics: 1/2 - fine\n"

	var rejected []string
	r := Parse(text, WithTrace(func(e Event) {
		if e.Stage == "sub_scores" {
			rejected = append(rejected, e.Fields["component"].(string))
		}
	}))

	if r.SubScores.Packaging != nil {
		t.Errorf("Packaging = %+v, want nil for 4/3", r.SubScores.Packaging)
	}
	if r.SubScores.Production != nil {
		t.Errorf("Production = %+v, want nil for 2/5", r.SubScores.Production)
	}
	if r.SubScores.CompanyEthics == nil || r.SubScores.CompanyEthics.Points != 1 {
		t.Errorf("CompanyEthics = %+v", r.SubScores.CompanyEthics)
	}
	if r.SubScores.Lifecycle != nil {
		t.Errorf("Lifecycle = %+v, want nil when missing", r.SubScores.Lifecycle)
	}
	if !reflect.DeepEqual(rejected, []string{"packaging", "production"}) {
		t.Errorf("rejected = %v", rejected)
	}
}

func TestParseBrandIgnoresAlternatives(t *testing.T) {
	text := "ALTERNATIVES\n1. Glass Jug\nBrand: ClearCo\nWhy better: x\nPrice: similar\nWhere: y\n\nVERDICT\nok\nBrand: LateCo"
	r := Parse(text)
	if r.Brand != "LateCo" {
		t.Errorf("Brand = %q, want %q", r.Brand, "LateCo")
	}

	r = Parse("ALTERNATIVES\n1. Glass Jug\nBrand: ClearCo\n")
	if r.Brand != DefaultBrand {
		t.Errorf("Brand = %q, want default", r.Brand)
	}
}

func TestParseRecoversFromPanic(t *testing.T) {
	text := strings.Replace(ecoJug, "1. Glass Jug", "2. Glass Jug", 1)

	var stages []string
	r := Parse(text, WithTrace(func(e Event) {
		stages = append(stages, e.Stage)
		if e.Stage == "alternatives" {
			panic("hook failure")
		}
	}))
	if len(stages) == 0 || stages[0] != "alternatives" {
		t.Fatalf("stages = %v, want an alternatives event", stages)
	}
	if len(r.Alternatives) != 1 || r.Alternatives[0].Index != 2 {
		t.Errorf("Alternatives = %+v", r.Alternatives)
	}
	if r.Verdict != "A solid sustainable choice." {
		t.Errorf("Verdict = %q", r.Verdict)
	}
}

func TestParseTipsRunOn(t *testing.T) {
	text := "ACTION TIPS: Recycling: • Rinse it • Crush it Reduce Impact: • Refill Better Choices: • Buy bulk\n\nVERDICT\nfine"
	r := Parse(text)

	if !reflect.DeepEqual(r.Tips.Recycling, []string{"Rinse it", "Crush it"}) {
		t.Errorf("Recycling = %q", r.Tips.Recycling)
	}
	if !reflect.DeepEqual(r.Tips.ReduceImpact, []string{"Refill"}) {
		t.Errorf("ReduceImpact = %q", r.Tips.ReduceImpact)
	}
	if !reflect.DeepEqual(r.Tips.BetterChoices, []string{"Buy bulk"}) {
		t.Errorf("BetterChoices = %q", r.Tips.BetterChoices)
	}
}

func TestGuardRecoversExtractorPanic(t *testing.T) {
	var got []Event
	r := &run{trace: func(e Event) { got = append(got, e) }}

	ran := false
	r.guard("verdict", func() { panic("index out of range") })
	r.guard("pros", func() { ran = true })

	if !ran {
		t.Errorf("guard did not run the extractor after a previous panic")
	}
	if len(got) != 1 || got[0].Stage != "verdict" || got[0].Fields["panic"] != "index out of range" {
		t.Errorf("events = %+v", got)
	}
}
