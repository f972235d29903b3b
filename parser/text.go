package parser

import (
	"regexp"
	"strings"
)

// mojibakeBullet is "•" encoded as UTF-8 and decoded as Mac Roman, which some
// clients hand back verbatim.
const mojibakeBullet = "‚Ä¢"

// glyphs that open a bullet on their own, without trailing whitespace.
const bulletGlyphs = `•◦▪▫‣●○■□►▶➤✓✔·–—`

var (
	// bulletPrefixRe matches a bullet marker at the start of a line. ASCII
	// markers and numbers need trailing whitespace so "-5%" and "2024." stay text.
	bulletPrefixRe = regexp.MustCompile(`^[ \t]*(?:` + mojibakeBullet + `|[` + bulletGlyphs + `]|[-*+](?:[ \t]+|$)|\d{1,2}[.)](?:[ \t]+|$))[ \t]*`)

	// inlineBulletRe splits several round bullets written on one line.
	inlineBulletRe = regexp.MustCompile(`[ \t]+(?:` + mojibakeBullet + `|[•●◦▪])[ \t]*`)

	spaceRunRe = regexp.MustCompile(`\s+`)
)

// normalize converts line endings to LF.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

var emphasis = strings.NewReplacer("**", "", "__", "")

// cleanValue trims whitespace and markdown emphasis from a captured value.
func cleanValue(s string) string {
	return strings.Trim(emphasis.Replace(strings.TrimSpace(s)), "*_ \t")
}

// collapseSpaces turns every whitespace run into a single space.
func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}

// stripBullet removes a leading bullet marker. ok reports whether one was found.
func stripBullet(line string) (string, bool) {
	loc := bulletPrefixRe.FindStringIndex(line)
	if loc == nil {
		return line, false
	}
	return line[loc[1]:], true
}

func joinSpace(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
