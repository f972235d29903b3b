package parser

import (
	"reflect"
	"testing"
)

const strictBody = `
1. Glass Jug
Brand: ClearCo
Why better: no plastic
Price: similar
Where: supermarkets
Call ahead for stock

2. Steel Bottle
Brand: Klean
Why better: lasts decades
Price: expensive
Where: outdoor shops
`

func TestCascadeKeepsStrictResult(t *testing.T) {
	res := runCascade(strictBody)

	want := []Alternative{
		{1, "Glass Jug", "ClearCo", "no plastic", "similar", "supermarkets"},
		{2, "Steel Bottle", "Klean", "lasts decades", "expensive", "outdoor shops"},
	}
	if res.strategy != StrategyStrict {
		t.Errorf("strategy = %q, want %q", res.strategy, StrategyStrict)
	}
	if !reflect.DeepEqual(res.entries, want) {
		t.Errorf("entries = %+v, want %+v", res.entries, want)
	}

	// the line strategy reads the trailing note as part of Where; the cascade
	// must not have used it
	loose, _ := lineAlternatives(strictBody)
	if loose[0].Availability != "supermarkets Call ahead for stock" {
		t.Errorf("line Availability = %q", loose[0].Availability)
	}
}

func TestCascadeFallsThroughToLine(t *testing.T) {
	body := `
1. Bamboo Cutlery
Why better: compostable
and lighter
Brand: Bambu
Where: online
Price: cheaper
`
	if got, ok := strictAlternatives(body); ok {
		t.Fatalf("strict matched: %+v", got)
	}
	if got, ok := normalizedAlternatives(body); ok {
		t.Fatalf("normalized matched: %+v", got)
	}

	res := runCascade(body)
	want := []Alternative{{1, "Bamboo Cutlery", "Bambu", "compostable and lighter", "cheaper", "online"}}
	if res.strategy != StrategyLine {
		t.Errorf("strategy = %q, want %q", res.strategy, StrategyLine)
	}
	if !reflect.DeepEqual(res.entries, want) {
		t.Errorf("entries = %+v, want %+v", res.entries, want)
	}
}

func TestCascadeStrategies(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantStrategy string
		want         []Alternative
	}{
		{
			name:         "wrapped fields use normalized",
			body:         "1. Glass\nJug\nBrand: ClearCo\nWhy better: no\nplastic at all\nPrice: similar\nWhere: supermarkets\n",
			wantStrategy: StrategyNormalized,
			want:         []Alternative{{1, "Glass Jug", "ClearCo", "no plastic at all", "similar", "supermarkets"}},
		},
		{
			name: "partial strict match is kept",
			body: "1. Glass Jug\nBrand: ClearCo\nWhy better: no plastic\nPrice: similar\nWhere: supermarkets\n\n" +
				"2. Tin Can\nBrand: CanCo\nWhy better: infinitely\nrecyclable\nPrice: cheaper\nWhere: everywhere\n",
			wantStrategy: StrategyStrict,
			want:         []Alternative{{1, "Glass Jug", "ClearCo", "no plastic", "similar", "supermarkets"}},
		},
		{
			name: "truncated second entry does not reopen the first",
			body: "1. Glass Jug\nBrand: ClearCo\nWhy better: no plastic\nPrice: similar\nWhere: supermarkets\nCall ahead for stock\n\n" +
				"2. Tin Can\nBrand: CanCo\nWhy better: recyclable\n",
			wantStrategy: StrategyStrict,
			want:         []Alternative{{1, "Glass Jug", "ClearCo", "no plastic", "similar", "supermarkets"}},
		},
		{
			name:         "inline markers use block",
			body:         "Try these: 1. Glass Jug Why better: no plastic Brand: ClearCo Where: shops Price: similar",
			wantStrategy: StrategyBlock,
			want:         []Alternative{{1, "Glass Jug", "ClearCo", "no plastic", "similar", "shops"}},
		},
		{
			name:         "markdown bold",
			body:         "1. **Glass Jug**\n- **Brand:** ClearCo\n- **Why better:** no plastic\n- **Price:** similar\n- **Where:** supermarkets\n",
			wantStrategy: StrategyStrict,
			want:         []Alternative{{1, "Glass Jug", "ClearCo", "no plastic", "similar", "supermarkets"}},
		},
		{
			name:         "nothing usable",
			body:         "No alternatives found for this product.",
			wantStrategy: "",
			want:         []Alternative{},
		},
	}

	for _, tt := range tests {
		res := runCascade(tt.body)
		if res.strategy != tt.wantStrategy {
			t.Errorf("%s: strategy = %q, want %q", tt.name, res.strategy, tt.wantStrategy)
		}
		if !reflect.DeepEqual(res.entries, tt.want) {
			t.Errorf("%s: entries = %+v, want %+v", tt.name, res.entries, tt.want)
		}
	}
}

func TestBlockRequiresAllFields(t *testing.T) {
	body := "Options: 1. Glass Jug Brand: ClearCo Price: similar 2. Tin Can Brand: CanCo Why better: recyclable Price: cheaper Where: everywhere"
	got, ok := blockAlternatives(body)
	if !ok || len(got) != 1 {
		t.Fatalf("blockAlternatives = %+v, %v", got, ok)
	}
	if got[0].Index != 2 || got[0].Name != "Tin Can" || got[0].Availability != "everywhere" {
		t.Errorf("entry = %+v", got[0])
	}
}

func TestAlternativeIndexPreserved(t *testing.T) {
	text := "ALTERNATIVES\n3. Glass Jug\nBrand: ClearCo\nWhy better: no plastic\nPrice: similar\nWhere: shops\n\n" +
		"7. Tin Can\nBrand: CanCo\nWhy better: recyclable\nPrice: cheaper\nWhere: everywhere\n"

	var flagged []int
	r := Parse(text, WithTrace(func(e Event) {
		if e.Message == "non-sequential index" {
			flagged = append(flagged, e.Fields["index"].(int))
		}
	}))

	if len(r.Alternatives) != 2 || r.Alternatives[0].Index != 3 || r.Alternatives[1].Index != 7 {
		t.Errorf("Alternatives = %+v", r.Alternatives)
	}
	if !reflect.DeepEqual(flagged, []int{3, 7}) {
		t.Errorf("flagged = %v, want [3 7]", flagged)
	}
}

func TestPartialListIsReported(t *testing.T) {
	text := "ALTERNATIVES\n1. Glass Jug\nBrand: ClearCo\nWhy better: no plastic\nPrice: similar\nWhere: shops\n\n" +
		"2. Tin Can\nBrand: CanCo\nWhy better: recyclable\n"

	var partial []Event
	r := Parse(text, WithTrace(func(e Event) {
		if e.Message == "strategy matched only part of the list" {
			partial = append(partial, e)
		}
	}))

	if r.AlternativesStrategy != StrategyStrict || len(r.Alternatives) != 1 {
		t.Fatalf("strategy %q, alternatives %+v", r.AlternativesStrategy, r.Alternatives)
	}
	if len(partial) != 1 || partial[0].Fields["entries"] != 1 || partial[0].Fields["numbered"] != 2 {
		t.Errorf("partial diagnostics = %+v", partial)
	}
}

func TestBlockLabelsNeedAFieldStart(t *testing.T) {
	body := "Options: 1. Glass Jug Why better: the main reason: no plastic, and a lower price: over time " +
		"Brand: ClearCo Price: similar Where: in stores. Elsewhere: online"
	got, ok := blockAlternatives(body)
	if !ok || len(got) != 1 {
		t.Fatalf("blockAlternatives = %+v, %v", got, ok)
	}
	want := Alternative{1, "Glass Jug", "ClearCo", "the main reason: no plastic, and a lower price: over time", "similar", "in stores. Elsewhere: online"}
	if got[0] != want {
		t.Errorf("entry = %+v, want %+v", got[0], want)
	}

	lines := "1. Steel Bottle\nbrand: Klean\nwhy better: lasts\nprice: more\nwhere: outdoor shops"
	got, ok = blockAlternatives(lines)
	if !ok || got[0].Brand != "Klean" || got[0].Availability != "outdoor shops" {
		t.Errorf("lowercase labels opening a line: %+v, %v", got, ok)
	}
}
