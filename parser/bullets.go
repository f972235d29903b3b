package parser

import (
	"regexp"
	"strings"
)

// Bullets splits a section body into one string per bullet. A line without
// a marker directly after a bullet continues that bullet. A body with no
// markers at all yields one item per non-empty line.
func Bullets(body string) []string {
	lines := strings.Split(body, "\n")

	marked := false
	for _, line := range lines {
		if _, ok := stripBullet(line); ok {
			marked = true
			break
		}
	}

	items := []string{}
	if !marked {
		for _, line := range lines {
			if v := cleanValue(line); v != "" {
				items = append(items, splitInline(v)...)
			}
		}
		return items
	}

	open := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			open = false
			continue
		}
		if rest, ok := stripBullet(line); ok {
			parts := splitInline(cleanValue(rest))
			if len(parts) == 0 {
				// a bare marker; whatever follows belongs to it
				items = append(items, "")
				open = true
				continue
			}
			items = append(items, parts...)
			open = true
			continue
		}
		v := cleanValue(line)
		if open && len(items) > 0 {
			items[len(items)-1] = joinSpace(items[len(items)-1], v)
			continue
		}
		if len(items) > 0 {
			items = append(items, v)
			open = true
		}
	}
	return compact(items)
}

func splitInline(s string) []string {
	var out []string
	for _, p := range inlineBulletRe.Split(s, -1) {
		if v := cleanValue(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func distinctGroups(body string, locs [][]int) int {
	seen := map[TipGroup]bool{}
	for _, loc := range locs {
		seen[tipGroupOf(body[loc[2]:loc[3]])] = true
	}
	return len(seen)
}

func compact(items []string) []string {
	out := items[:0]
	for _, it := range items {
		if it != "" {
			out = append(out, it)
		}
	}
	return out
}

// TipGroup identifies an ACTION TIPS sub-list.
type TipGroup int

const (
	TipRecycling TipGroup = iota
	TipReduceImpact
	TipBetterChoices
)

const tipLabels = `(recycl(?:ing|e)|reduce[ \t]+impact|better[ \t]+choices?)`

var (
	tipLabelLineRe = regexp.MustCompile(`(?im)^[ \t]*[#*_]*[ \t]*` + tipLabels + `[ \t]*[*_]*[ \t]*:[*_]*`)
	tipLabelAnyRe  = regexp.MustCompile(`(?i)\b` + tipLabels + `[ \t]*[*_]*[ \t]*:[*_]*`)
)

func tipGroupOf(label string) TipGroup {
	switch strings.ToLower(label)[0] {
	case 'r':
		if strings.HasPrefix(strings.ToLower(label), "reduce") {
			return TipReduceImpact
		}
		return TipRecycling
	default:
		return TipBetterChoices
	}
}

// TipGroups splits an ACTION TIPS body into its labelled sub-lists. Labels
// are looked for at line starts; when a search anywhere in the body finds
// more distinct labels, that result is used instead, which recovers run-on
// output. A sub-list runs from its label to the next label or end of body.
// Only the first occurrence of a label counts.
func TipGroups(body string) map[TipGroup][]string {
	out := map[TipGroup][]string{}
	locs := tipLabelLineRe.FindAllStringSubmatchIndex(body, -1)
	if loose := tipLabelAnyRe.FindAllStringSubmatchIndex(body, -1); distinctGroups(body, loose) > distinctGroups(body, locs) {
		locs = loose
	}
	for i, loc := range locs {
		group := tipGroupOf(body[loc[2]:loc[3]])
		if _, seen := out[group]; seen {
			continue
		}
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		out[group] = Bullets(body[loc[1]:end])
	}
	return out
}
