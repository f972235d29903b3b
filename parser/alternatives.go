package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// altStrategy is one attempt at reading the ALTERNATIVES body. ok=false means
// the strategy found nothing it could use.
type altStrategy struct {
	name string
	run  func(body string) ([]Alternative, bool)
}

// Strategy names, most to least strict.
const (
	StrategyStrict     = "strict"
	StrategyNormalized = "normalized"
	StrategyLine       = "line"
	StrategyBlock      = "block"
)

var altStrategies = []altStrategy{
	{name: StrategyStrict, run: strictAlternatives},
	{name: StrategyNormalized, run: normalizedAlternatives},
	{name: StrategyLine, run: lineAlternatives},
	{name: StrategyBlock, run: blockAlternatives},
}

// field builds the start of a labelled line: optional bullet, optional bold.
func field(label string) string {
	return `[ \t]*(?:[-•*][ \t]+)?[*_]*` + label + `[*_]*[ \t]*:[ \t]*[*_]*[ \t]*`
}

func flatField(label string) string {
	return ` *(?:[-•*] *)?[*_]*` + label + `[*_]* *: *[*_]* *`
}

const lineSep = `[ \t]*[*_]*[ \t]*\n(?:[ \t]*\n)*`

var (
	strictAltRe = regexp.MustCompile(`(?im)^[ \t]*[#*_]*[ \t]*(\d+)[.)][ \t]*[*_]*[ \t]*([^\n]+?)` + lineSep +
		field(`brand`) + `([^\n]+?)` + lineSep +
		field(`why[ \t]+better`) + `([^\n]+?)` + lineSep +
		field(`price`) + `([^\n]+?)` + lineSep +
		field(`where`) + `([^\n]*?)[ \t]*[*_]*[ \t]*$`)

	// normAltRe is the same shape over text with whitespace collapsed. Group 7
	// is the terminator: the next index marker or end of text.
	normAltRe = regexp.MustCompile(`(?i)(?:^| )(\d+)[.)] *[*_]* *(.+?) *[*_]*` +
		flatField(`brand`) + `(.+?) *[*_]*` +
		flatField(`why better`) + `(.+?) *[*_]*` +
		flatField(`price`) + `(.+?) *[*_]*` +
		flatField(`where`) + `(.+?) *[*_]*( \d+[.)] |$)`)

	// entryMarkerRe counts entries introduced at a line start, for diagnostics.
	entryMarkerRe = regexp.MustCompile(`(?m)^[ \t]*[#*_]*[ \t]*\d+[.)][ \t]*\S`)

	indexLineRe = regexp.MustCompile(`^[#*_]*[ \t]*(\d+)[.)](?:[ \t]+|$)(.*)$`)
	altLabelRe  = regexp.MustCompile(`(?i)^(?:[-•*][ \t]*)?[*_]*(brand|why[ \t]+better|reason|price|where|availability|available)[*_]*[ \t]*:[ \t]*(.*)$`)

	blockMarkerRe   = regexp.MustCompile(`(?:^|\s)(\d+)\.(?:\D|$)`)
	blockAnyLabelRe = regexp.MustCompile(`(?i)\b(brand|why[ \t]+better|reason|price|where|availability)[*_]*[ \t]*:`)
)

type altField int

const (
	altName altField = iota
	altBrand
	altReason
	altPrice
	altWhere
)

func altFieldOf(label string) altField {
	l := strings.ToLower(label)
	switch {
	case l == "brand":
		return altBrand
	case strings.HasPrefix(l, "why") || l == "reason":
		return altReason
	case l == "price":
		return altPrice
	default:
		return altWhere
	}
}

func (a *Alternative) field(f altField) *string {
	switch f {
	case altBrand:
		return &a.Brand
	case altReason:
		return &a.Reason
	case altPrice:
		return &a.PriceTier
	case altWhere:
		return &a.Availability
	default:
		return &a.Name
	}
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// strictAlternatives matches entries laid out exactly as requested: index and
// name on one line, then Brand, Why better, Price and Where, one per line.
func strictAlternatives(body string) ([]Alternative, bool) {
	var out []Alternative
	for _, m := range strictAltRe.FindAllStringSubmatch(body, -1) {
		out = append(out, Alternative{
			Index:        atoiOr(m[1], len(out)+1),
			Name:         cleanValue(m[2]),
			Brand:        cleanValue(m[3]),
			Reason:       cleanValue(m[4]),
			PriceTier:    cleanValue(m[5]),
			Availability: cleanValue(m[6]),
		})
	}
	return out, len(out) > 0
}

// normalizedAlternatives collapses whitespace and applies the same labelled
// shape, which recovers fields wrapped across lines. Each match resumes at the
// terminating index marker so consecutive entries are not swallowed.
func normalizedAlternatives(body string) ([]Alternative, bool) {
	flat := collapseSpaces(body)
	var out []Alternative
	pos := 0
	for pos < len(flat) {
		loc := normAltRe.FindStringSubmatchIndex(flat[pos:])
		if loc == nil {
			break
		}
		g := func(i int) string { return flat[pos+loc[2*i] : pos+loc[2*i+1]] }
		out = append(out, Alternative{
			Index:        atoiOr(g(1), len(out)+1),
			Name:         cleanValue(g(2)),
			Brand:        cleanValue(g(3)),
			Reason:       cleanValue(g(4)),
			PriceTier:    cleanValue(g(5)),
			Availability: cleanValue(g(6)),
		})
		next := pos + loc[14]
		if next <= pos {
			break
		}
		pos = next
	}
	return out, len(out) > 0
}

// lineAlternatives walks the body line by line. An index line opens an entry,
// a known label switches the current field, and any other text continues it.
// Labels may appear in any order.
func lineAlternatives(body string) ([]Alternative, bool) {
	var (
		out []Alternative
		cur *Alternative
		at  altField
	)
	flush := func() {
		if cur != nil && cur.Name != "" {
			out = append(out, *cur)
		}
		cur = nil
	}
	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if m := indexLineRe.FindStringSubmatch(line); m != nil {
			flush()
			cur = &Alternative{Index: atoiOr(m[1], len(out)+1), Name: cleanValue(m[2])}
			at = altName
			continue
		}
		if cur == nil {
			continue
		}
		if m := altLabelRe.FindStringSubmatch(line); m != nil {
			at = altFieldOf(m[1])
			p := cur.field(at)
			*p = joinSpace(*p, cleanValue(m[2]))
			continue
		}
		p := cur.field(at)
		*p = joinSpace(*p, cleanValue(line))
	}
	flush()
	return out, len(out) > 0
}

// blockAlternatives splits the body at index markers and extracts each label
// independently within its block. A value runs until the next label. Blocks
// missing any of the five fields are dropped.
func blockAlternatives(body string) ([]Alternative, bool) {
	marks := blockMarkerRe.FindAllStringSubmatchIndex(body, -1)
	var out []Alternative
	for i, mk := range marks {
		end := len(body)
		if i+1 < len(marks) {
			end = marks[i+1][0]
		}
		// content starts after "N."
		start := mk[3] + 1
		if start > end {
			continue
		}
		block := body[start:end]
		alt := Alternative{Index: atoiOr(body[mk[2]:mk[3]], len(out)+1)}

		labels := blockLabels(block)
		nameEnd := len(block)
		if len(labels) > 0 {
			nameEnd = labels[0][0]
		}
		alt.Name = cleanValue(collapseSpaces(strings.TrimLeft(block[:nameEnd], "-•* \t")))

		seen := map[altField]bool{}
		for j, lb := range labels {
			f := altFieldOf(block[lb[2]:lb[3]])
			if seen[f] {
				continue
			}
			seen[f] = true
			stop := len(block)
			if j+1 < len(labels) {
				stop = labels[j+1][0]
			}
			v := strings.TrimRight(block[lb[1]:stop], "-•* \t\n")
			*alt.field(f) = cleanValue(collapseSpaces(v))
		}

		if alt.Name != "" && alt.Brand != "" && alt.Reason != "" && alt.PriceTier != "" && alt.Availability != "" {
			out = append(out, alt)
		}
	}
	return out, len(out) > 0
}

type cascadeResult struct {
	entries  []Alternative
	strategy string
	// numbered is how many lines of the body open with an index marker
	numbered int
}

// runCascade returns the result of the first strategy that yields entries.
func runCascade(body string) cascadeResult {
	res := cascadeResult{numbered: len(entryMarkerRe.FindAllStringIndex(body, -1))}
	for _, s := range altStrategies {
		if entries, ok := s.run(body); ok && len(entries) > 0 {
			res.entries, res.strategy = entries, s.name
			return res
		}
	}
	res.entries = []Alternative{}
	return res
}

// blockLabels finds the labels that start a field inside an inline block. A
// lowercase label in running text ("a lower price: ...") belongs to the value
// unless it opens a line.
func blockLabels(block string) [][]int {
	var out [][]int
	for _, lb := range blockAnyLabelRe.FindAllStringSubmatchIndex(block, -1) {
		c := block[lb[2]]
		lineStart := strings.TrimLeft(block[strings.LastIndexByte(block[:lb[0]], '\n')+1:lb[0]], "-•*_ \t") == ""
		if (c >= 'A' && c <= 'Z') || lineStart {
			out = append(out, lb)
		}
	}
	return out
}

// nonSequential returns the positions whose index does not follow the
// previous one (the first is expected to be 1).
func nonSequential(entries []Alternative) []int {
	var bad []int
	for i, e := range entries {
		if e.Index != i+1 {
			bad = append(bad, i)
		}
	}
	return bad
}
