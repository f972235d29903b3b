package parser

import (
	"testing"
)

func TestSplit(t *testing.T) {
	text := "intro\nPROS\n• a\n\n## cons\n• b\nVerdict: Fine overall.\nPROS\n• late"
	s := Split(text)

	tests := []struct {
		section Section
		want    string
		present bool
	}{
		{SectionPros, "• a\n\n", true},
		{SectionCons, "• b\n", true},
		{SectionVerdict, "Fine overall.\n", true},
		{SectionAlternatives, "", false},
		{SectionTips, "", false},
	}

	for _, tt := range tests {
		got, ok := s.Text(tt.section)
		if ok != tt.present {
			t.Errorf("Text(%s) present = %v, want %v", tt.section, ok, tt.present)
		}
		if got != tt.want {
			t.Errorf("Text(%s) = %q, want %q", tt.section, got, tt.want)
		}
	}
}

func TestSplitEmptySectionIsPresent(t *testing.T) {
	s := Split("PROS\nCONS\n• heavy")

	body, ok := s.Text(SectionPros)
	if !ok || body != "" {
		t.Errorf("Text(pros) = %q, %v, want empty and present", body, ok)
	}
	span, ok := s.Get(SectionCons)
	if !ok || span.End != len("PROS\nCONS\n• heavy") {
		t.Errorf("Get(cons) = %+v, %v", span, ok)
	}
}

func TestSplitHeaderVariants(t *testing.T) {
	tests := []struct {
		line    string
		section Section
		matched bool
	}{
		{"PRODUCT INFO", SectionProductInfo, true},
		{"  **Product Information**  ", SectionProductInfo, true},
		{"SUSTAINABILITY SCORE: 8/10", SectionScore, true},
		{"Score Details:", SectionScoreDetails, true},
		{"score breakdown", SectionScoreDetails, true},
		{"### Pros:", SectionPros, true},
		{"CONS", SectionCons, true},
		{"Better Alternatives", SectionAlternatives, true},
		{"ACTION TIPS", SectionTips, true},
		{"**VERDICT**", SectionVerdict, true},
		{"Final verdict: buy it", SectionVerdict, true},
		{"• Pros outweigh cons", "", false},
		{"Pros and cons", "", false},
		{"The verdict is clear", "", false},
		{"* Tips for reuse", "", false},
		{"*Tips for reuse", "", false},
		{"_Verdict", "", false},
		{"*Pros*", SectionPros, true},
		{"__CONS__", SectionCons, true},
	}

	for _, tt := range tests {
		section, _, ok := matchHeader(tt.line)
		if ok != tt.matched || section != tt.section {
			t.Errorf("matchHeader(%q) = %q, %v, want %q, %v", tt.line, section, ok, tt.section, tt.matched)
		}
	}
}

func TestSplitInlineContent(t *testing.T) {
	s := Split("**SUSTAINABILITY SCORE:** 7/10\nVERDICT: Worth it.")

	if got, _ := s.Text(SectionScore); got != "7/10\n" {
		t.Errorf("Text(score) = %q", got)
	}
	if got, _ := s.Text(SectionVerdict); got != "Worth it." {
		t.Errorf("Text(verdict) = %q", got)
	}
}

func TestSplitBulletIsNotHeader(t *testing.T) {
	s := Split("PROS\n* Tips for reuse are printed on the lid\n* Light\n\nCONS\n* Pricey\n")
	body, ok := s.Text(SectionPros)
	if !ok {
		t.Fatalf("PROS section missing")
	}
	if got := Bullets(body); len(got) != 2 || got[0] != "Tips for reuse are printed on the lid" {
		t.Errorf("pros = %q", got)
	}
	if _, ok := s.Get(SectionTips); ok {
		t.Errorf("bullet line was taken as a TIPS header")
	}
}
