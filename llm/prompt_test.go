package llm

import (
	"testing"

	"verdix/parser"
)

func TestPromptDeclaresEverySection(t *testing.T) {
	s := parser.Split(ProductAnalysisPrompt)
	for _, name := range []parser.Section{
		parser.SectionProductInfo,
		parser.SectionScore,
		parser.SectionScoreDetails,
		parser.SectionPros,
		parser.SectionCons,
		parser.SectionAlternatives,
		parser.SectionTips,
		parser.SectionVerdict,
	} {
		if _, ok := s.Get(name); !ok {
			t.Errorf("prompt has no %s header", name)
		}
	}
}

func TestPromptPlaceholdersDoNotScore(t *testing.T) {
	r := parser.Parse(ProductAnalysisPrompt)
	// "[X]/10" is not a number, so the echo of an unfilled template keeps the default
	if r.Score != parser.DefaultScore {
		t.Errorf("Score = %d, want default", r.Score)
	}
	if r.SubScores.Packaging != nil {
		t.Errorf("Packaging = %+v, want nil", r.SubScores.Packaging)
	}
}
