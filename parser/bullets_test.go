package parser

import (
	"reflect"
	"testing"
)

func TestBullets(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"round bullets", "\n• one\n• two\n", []string{"one", "two"}},
		{"hyphens and stars", "- one\n* two\n+ three", []string{"one", "two", "three"}},
		{"substitute glyphs", "● one\n▪ two\n➤ three\n– four", []string{"one", "two", "three", "four"}},
		{"mojibake", "‚Ä¢ one\n‚Ä¢ two", []string{"one", "two"}},
		{"numbered", "1. one\n2) two", []string{"one", "two"}},
		{"wrapped", "• one\n  continues here\n• two", []string{"one continues here", "two"}},
		{"inline bullets", "• one • two • three", []string{"one", "two", "three"}},
		{"no glyphs", "first point\n\nsecond point\n", []string{"first point", "second point"}},
		{"markdown bold", "• **Durable** build\n• __Cheap__", []string{"Durable build", "Cheap"}},
		{"empty", "", []string{}},
		{"whitespace only", "\n  \n\t", []string{}},
		{"negative number is text", "• Uses 20% less water\n-5% sugar than rivals", []string{"Uses 20% less water -5% sugar than rivals"}},
		{"intro before bullets dropped", "Here we go:\n• one", []string{"one"}},
		{"bare marker", "•\n  late text\n• two", []string{"late text", "two"}},
	}

	for _, tt := range tests {
		got := Bullets(tt.body)
		if got == nil {
			t.Errorf("%s: Bullets returned nil", tt.name)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: Bullets(%q) = %q, want %q", tt.name, tt.body, got, tt.want)
		}
	}
}

func TestTipGroups(t *testing.T) {
	body := "\nRecycling:\n• Rinse\n• Flatten\n\n**Reduce Impact:**\n• Refill\n\nBetter Choice:\n• Buy loose\n"
	got := TipGroups(body)

	want := map[TipGroup][]string{
		TipRecycling:     {"Rinse", "Flatten"},
		TipReduceImpact:  {"Refill"},
		TipBetterChoices: {"Buy loose"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TipGroups = %q, want %q", got, want)
	}
}

func TestTipGroupsFirstOccurrenceWins(t *testing.T) {
	got := TipGroups("Recycling:\n• first\nRecycling:\n• second")
	if !reflect.DeepEqual(got[TipRecycling], []string{"first"}) {
		t.Errorf("Recycling = %q", got[TipRecycling])
	}
}
