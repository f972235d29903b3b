package parser

import (
	"regexp"
	"strings"
)

// Section names a top-level block of a report.
type Section string

const (
	SectionProductInfo  Section = "product_info"
	SectionScore        Section = "score"
	SectionScoreDetails Section = "score_details"
	SectionPros         Section = "pros"
	SectionCons         Section = "cons"
	SectionAlternatives Section = "alternatives"
	SectionTips         Section = "tips"
	SectionVerdict      Section = "verdict"
)

// Span is a half-open byte range [Start, End) of the source text. Start is
// just past the header, End is the next recognised header or end of text.
type Span struct {
	Start int
	End   int
}

// Sections maps section names to their spans within one text.
type Sections struct {
	text  string
	spans map[Section]Span
}

type headerPattern struct {
	section Section
	re      *regexp.Regexp
}

// Patterns run against a header line with markdown decoration removed. The
// capture group, when set, is content sharing the header line.
var headerPatterns = []headerPattern{
	{SectionProductInfo, regexp.MustCompile(`(?i)^product\s+info(?:rmation)?[*_ \t]*(?::(.*))?$`)},
	{SectionScoreDetails, regexp.MustCompile(`(?i)^score\s+(?:details|breakdown)\b(.*)$`)},
	{SectionScore, regexp.MustCompile(`(?i)^(?:overall\s+)?sustainability\s+score\b(.*)$`)},
	{SectionPros, regexp.MustCompile(`(?i)^pros[*_ \t]*(?::(.*))?$`)},
	{SectionCons, regexp.MustCompile(`(?i)^cons[*_ \t]*(?::(.*))?$`)},
	{SectionAlternatives, regexp.MustCompile(`(?i)^(?:better\s+|sustainable\s+|suggested\s+)?alternatives[*_ \t]*(?::(.*))?$`)},
	{SectionTips, regexp.MustCompile(`(?i)^(?:action\s+)?tips\b(.*)$`)},
	{SectionVerdict, regexp.MustCompile(`(?i)^(?:final\s+)?verdict[*_ \t]*(?::(.*))?$`)},
}

// headerText strips whitespace, heading marks and wrapping emphasis so that
// "## **PROS**" reads as "PROS". A leading mark is emphasis only when it is
// closed later on the line and not followed by a space, so "* Tips for reuse"
// stays a bullet.
func headerText(line string) string {
	s := strings.TrimLeft(strings.TrimSpace(line), "# \t")
	if lead := len(s) - len(strings.TrimLeft(s, "*_")); lead > 0 {
		mark, rest := s[:lead], s[lead:]
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' || !strings.Contains(rest, reverseMark(mark)) {
			return s
		}
		s = rest
	}
	return strings.TrimRight(s, "*_ \t")
}

// reverseMark returns the closing form of an opening emphasis run ("*_" -> "_*")
func reverseMark(mark string) string {
	b := []byte(mark)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

func matchHeader(line string) (Section, string, bool) {
	h := headerText(line)
	if h == "" {
		return "", "", false
	}
	for _, hp := range headerPatterns {
		m := hp.re.FindStringSubmatch(h)
		if m == nil {
			continue
		}
		inline := ""
		if len(m) > 1 {
			inline = strings.TrimLeft(m[1], "*_: \t")
		}
		return hp.section, inline, true
	}
	return "", "", false
}

// Split locates every recognised section header in text. Headers are matched
// per line, case-insensitively. When a header repeats, the first occurrence
// owns the span and later ones only terminate the preceding span.
func Split(text string) Sections {
	type hit struct {
		section    Section
		lineStart  int
		contentPos int
	}

	var hits []hit
	offset := 0
	for offset <= len(text) {
		end := strings.IndexByte(text[offset:], '\n')
		lineEnd := len(text)
		next := len(text) + 1
		if end >= 0 {
			lineEnd = offset + end
			next = lineEnd + 1
		}
		line := text[offset:lineEnd]
		if section, inline, ok := matchHeader(line); ok {
			pos := lineEnd
			if end >= 0 {
				pos = next
			}
			if inline != "" {
				// inline is a suffix of the stripped header, which is itself a
				// substring of the raw line.
				h := headerText(line)
				pos = offset + strings.Index(line, h) + len(h) - len(inline)
			}
			hits = append(hits, hit{section: section, lineStart: offset, contentPos: pos})
		}
		offset = next
	}

	spans := make(map[Section]Span, len(hits))
	for i, h := range hits {
		if _, seen := spans[h.section]; seen {
			continue
		}
		stop := len(text)
		if i+1 < len(hits) {
			stop = hits[i+1].lineStart
		}
		start := h.contentPos
		if start > stop {
			start = stop
		}
		spans[h.section] = Span{Start: start, End: stop}
	}
	return Sections{text: text, spans: spans}
}

// Get returns the span of a section and whether its header was present.
func (s Sections) Get(name Section) (Span, bool) {
	span, ok := s.spans[name]
	return span, ok
}

// Text returns the body of a section. ok is false when the header is absent,
// which differs from a present section with an empty body.
func (s Sections) Text(name Section) (string, bool) {
	span, ok := s.spans[name]
	if !ok {
		return "", false
	}
	return s.text[span.Start:span.End], true
}

// Contains reports whether byte offset pos falls inside the named section.
func (s Sections) Contains(name Section, pos int) bool {
	span, ok := s.spans[name]
	return ok && pos >= span.Start && pos < span.End
}
