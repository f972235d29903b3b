package stubllm

import (
	"context"
	"testing"

	"verdix/parser"
)

func TestAnalyzeImageIsParseable(t *testing.T) {
	c := NewClient()
	for _, img := range [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d"), nil} {
		text, err := c.AnalyzeImage(context.Background(), img, "image/jpeg")
		if err != nil {
			t.Fatalf("AnalyzeImage() error = %v", err)
		}
		again, _ := c.AnalyzeImage(context.Background(), img, "image/jpeg")
		if text != again {
			t.Errorf("AnalyzeImage() is not deterministic for %q", img)
		}

		r := parser.Parse(text)
		if r.IsEmpty() {
			t.Fatalf("stub output parsed to an empty report:\n%s", text)
		}
		if len(r.Alternatives) != 3 || r.AlternativesStrategy != parser.StrategyStrict {
			t.Errorf("alternatives = %+v via %q", r.Alternatives, r.AlternativesStrategy)
		}
		subs := r.SubScores
		if subs.Packaging == nil || subs.Production == nil || subs.CompanyEthics == nil || subs.Lifecycle == nil {
			t.Errorf("sub-scores missing: %+v", subs)
			continue
		}
		if sum := subs.Packaging.Points + subs.Production.Points + subs.CompanyEthics.Points + subs.Lifecycle.Points; sum != r.Score {
			t.Errorf("sub-scores sum to %d, score is %d", sum, r.Score)
		}
	}
}

func TestAnalyzeImageCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewClient().AnalyzeImage(ctx, []byte("a"), ""); err == nil {
		t.Errorf("expected context error")
	}
}
