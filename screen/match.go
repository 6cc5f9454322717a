package screen

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Pattern is either a literal substring or a regular expression. Literals
// match with every metacharacter escaped; regular expressions are applied
// per line, and matches never cross line boundaries.
type Pattern struct {
	literal string
	re      *regexp.Regexp
}

// Literal builds a substring pattern.
func Literal(s string) Pattern {
	return Pattern{literal: s}
}

// Regexp builds a regular-expression pattern.
func Regexp(re *regexp.Regexp) Pattern {
	return Pattern{re: re}
}

// ParsePattern recognizes the /pattern/flags convention and builds a Regexp
// pattern from it; any other string becomes a Literal. Supported flags are
// i (case-insensitive), m (multi-line) and s (dot matches newline); the g
// flag is accepted and ignored because matching always finds every
// occurrence per line.
func ParsePattern(s string) (Pattern, error) {
	if len(s) < 2 || !strings.HasPrefix(s, "/") {
		return Literal(s), nil
	}
	end := strings.LastIndex(s, "/")
	if end == 0 {
		return Literal(s), nil
	}

	expr := s[1:end]
	flags := s[end+1:]

	var inline string
	for _, f := range flags {
		switch f {
		case 'i':
			inline += "i"
		case 'm':
			inline += "m"
		case 's':
			inline += "s"
		case 'g':
			// implied
		default:
			return Pattern{}, fmt.Errorf("unsupported regex flag %q in %q", string(f), s)
		}
	}
	if inline != "" {
		expr = "(?" + inline + ")" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("invalid pattern %q: %w", s, err)
	}
	return Regexp(re), nil
}

// IsRegexp reports whether the pattern is a regular expression.
func (p Pattern) IsRegexp() bool {
	return p.re != nil
}

// String returns a printable form of the pattern for error messages.
func (p Pattern) String() string {
	if p.re != nil {
		return "/" + p.re.String() + "/"
	}
	return fmt.Sprintf("%q", p.literal)
}

// Matches reports whether the pattern occurs anywhere in text.
func (p Pattern) Matches(text string) bool {
	if p.re != nil {
		return p.re.MatchString(text)
	}
	return strings.Contains(text, p.literal)
}

func (p Pattern) compiled() *regexp.Regexp {
	if p.re != nil {
		return p.re
	}
	return regexp.MustCompile(regexp.QuoteMeta(p.literal))
}

// Match is one occurrence of a pattern on the grid. Col is the 0-based
// character index at which the match begins within the raw line text.
type Match struct {
	Row, Col int
	Text     string
}

// FindMatches locates every non-overlapping occurrence of the pattern on
// the raw per-line view of the grid, in line-major order.
func FindMatches(lines []string, p Pattern) []Match {
	re := p.compiled()

	var out []Match
	for row, line := range lines {
		for _, loc := range re.FindAllStringIndex(line, -1) {
			out = append(out, Match{
				Row:  row,
				Col:  utf8.RuneCountInString(line[:loc[0]]),
				Text: line[loc[0]:loc[1]],
			})
		}
	}
	return out
}
