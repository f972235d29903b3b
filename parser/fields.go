package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// labelLineRe builds a line-anchored "Label: value" matcher tolerant of a
// leading bullet and markdown bold around the label or the colon.
func labelLineRe(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t]*(?:[-*•][ \t]+)?[*_]*[ \t]*` + label + `[ \t]*[*_]*[ \t]*:[ \t]*([^\n]*)$`)
}

var (
	productNameRe = labelLineRe(`product[ \t]+name`)
	brandRe       = labelLineRe(`brand`)
	categoryRe    = labelLineRe(`category`)

	scoreRe = regexp.MustCompile(`(?i)sustainability[ \t]+score[ \t]*[*_]*[ \t]*:?[ \t]*[*_]*[ \t]*(\d+(?:\.\d+)?)[ \t]*/[ \t]*10\b`)
)

// firstValue returns the first non-empty capture of re in text.
func firstValue(re *regexp.Regexp, text string) (string, bool) {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if v := cleanValue(m[1]); v != "" {
			return v, true
		}
	}
	return "", false
}

// brandOutside returns the first Brand value that is not inside the
// ALTERNATIVES section, where every entry carries its own Brand line.
func brandOutside(text string, sections Sections) (string, bool) {
	for _, loc := range brandRe.FindAllStringSubmatchIndex(text, -1) {
		if sections.Contains(SectionAlternatives, loc[0]) {
			continue
		}
		if v := cleanValue(text[loc[2]:loc[3]]); v != "" {
			return v, true
		}
	}
	return "", false
}

// scoreResult distinguishes a missing score from a rejected one.
type scoreResult struct {
	value    int
	found    bool
	rejected string
}

// extractScore reads the overall score. Decimal values are rounded half away
// from zero. Values above 10 are rejected.
func extractScore(text string) scoreResult {
	m := scoreRe.FindStringSubmatch(text)
	if m == nil {
		return scoreResult{}
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return scoreResult{rejected: m[1]}
	}
	v := int(math.Round(f))
	if v < 0 || v > 10 {
		return scoreResult{rejected: m[1]}
	}
	return scoreResult{value: v, found: true}
}

type subScoreSpec struct {
	name string
	max  int
	re   *regexp.Regexp
	set  func(*SubScores, *SubScore)
}

func subScoreRe(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t]*(?:` + mojibakeBullet + `|[•◦▪‣●·*+-])?[ \t]*[*_]*` + label +
		`[*_]*[ \t]*:[ \t]*[*_]*[ \t]*(\d+)[ \t]*/[ \t]*(\d+)[*_]*[ \t]*(?:[-–—:][ \t]*)?([^\n]*)$`)
}

var subScoreSpecs = []subScoreSpec{
	{"packaging", MaxPackaging, subScoreRe(`packaging`), func(s *SubScores, v *SubScore) { s.Packaging = v }},
	{"production", MaxProduction, subScoreRe(`production`), func(s *SubScores, v *SubScore) { s.Production = v }},
	{"company_ethics", MaxCompanyEthics, subScoreRe(`company[ \t]+ethics`), func(s *SubScores, v *SubScore) { s.CompanyEthics = v }},
	{"lifecycle", MaxLifecycle, subScoreRe(`lifecycle(?:[ \t]+impact)?`), func(s *SubScores, v *SubScore) { s.Lifecycle = v }},
}

// extractSubScores reads the four score components. A component whose stated
// denominator differs from its fixed maximum, or whose points exceed it, is
// rejected and left nil; reject reports each such case.
func extractSubScores(body string, reject func(name, raw string)) SubScores {
	var out SubScores
	for _, spec := range subScoreSpecs {
		m := spec.re.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		points, err1 := strconv.Atoi(m[1])
		max, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil || max != spec.max || points > spec.max {
			reject(spec.name, m[1]+"/"+m[2])
			continue
		}
		spec.set(&out, &SubScore{Points: points, Max: max, Reason: cleanValue(m[3])})
	}
	return out
}

// extractVerdict returns the first paragraph of the VERDICT body as one line.
func extractVerdict(body string) string {
	body = strings.TrimLeft(body, " \t\n")
	if i := strings.Index(body, "\n\n"); i >= 0 {
		body = body[:i]
	}
	var parts []string
	for _, line := range strings.Split(body, "\n") {
		rest, _ := stripBullet(line)
		if v := cleanValue(rest); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}
