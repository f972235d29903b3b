package parser

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		score int
		label Label
		tier  Tier
	}{
		{10, LabelExcellent, TierGreen},
		{9, LabelExcellent, TierGreen},
		{8, LabelVeryGood, TierGreen},
		{7, LabelVeryGood, TierGreen},
		{6, LabelAverage, TierYellow},
		{5, LabelAverage, TierYellow},
		{4, LabelBelowAverage, TierRed},
		{3, LabelBelowAverage, TierRed},
		{2, LabelPoor, TierRed},
		{0, LabelPoor, TierRed},
		{-3, LabelPoor, TierRed},
		{42, LabelExcellent, TierGreen},
	}

	for _, tt := range tests {
		if got := Classify(tt.score); got != tt.label {
			t.Errorf("Classify(%d) = %q, want %q", tt.score, got, tt.label)
		}
		if got := TierFor(tt.score); got != tt.tier {
			t.Errorf("TierFor(%d) = %q, want %q", tt.score, got, tt.tier)
		}
	}
}

func TestEmojiFor(t *testing.T) {
	seen := map[string]Label{}
	for _, l := range []Label{LabelExcellent, LabelVeryGood, LabelAverage, LabelBelowAverage, LabelPoor} {
		e := EmojiFor(l)
		if e == "" {
			t.Errorf("EmojiFor(%q) is empty", l)
		}
		if prev, dup := seen[e]; dup {
			t.Errorf("EmojiFor(%q) = EmojiFor(%q) = %q", l, prev, e)
		}
		seen[e] = l
	}
}
