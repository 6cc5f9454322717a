package screen

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindMatchesLiteral(t *testing.T) {
	lines := []string{
		"hello world",
		"say hello again",
	}
	matches := FindMatches(lines, Literal("hello"))
	require.Equal(t, []Match{
		{Row: 0, Col: 0, Text: "hello"},
		{Row: 1, Col: 4, Text: "hello"},
	}, matches)
}

func TestFindMatchesLiteralEscapesMetacharacters(t *testing.T) {
	lines := []string{"price is $5.00 (net)"}

	matches := FindMatches(lines, Literal("$5.00"))
	require.Len(t, matches, 1)
	require.Equal(t, 9, matches[0].Col)

	matches = FindMatches(lines, Literal("(net)"))
	require.Len(t, matches, 1)
	require.Equal(t, "(net)", matches[0].Text)

	// A dot in a literal never matches an arbitrary character.
	require.Empty(t, FindMatches([]string{"5x00"}, Literal("5.00")))
}

func TestFindMatchesMultiplePerLine(t *testing.T) {
	lines := []string{"aaa bbb aaa"}

	matches := FindMatches(lines, Literal("aaa"))
	require.Equal(t, []Match{
		{Row: 0, Col: 0, Text: "aaa"},
		{Row: 0, Col: 8, Text: "aaa"},
	}, matches)
}

func TestFindMatchesRegexpAllOccurrences(t *testing.T) {
	// A non-global regex still yields every match on a line.
	lines := []string{"id=1 id=22 id=333", "id=4"}
	matches := FindMatches(lines, Regexp(regexp.MustCompile(`id=\d+`)))
	require.Equal(t, []Match{
		{Row: 0, Col: 0, Text: "id=1"},
		{Row: 0, Col: 5, Text: "id=22"},
		{Row: 0, Col: 11, Text: "id=333"},
		{Row: 1, Col: 0, Text: "id=4"},
	}, matches)
}

func TestFindMatchesDoNotCrossLines(t *testing.T) {
	lines := []string{"foo", "bar"}
	require.Empty(t, FindMatches(lines, Regexp(regexp.MustCompile(`foo\s*bar`))))
}

func TestFindMatchesRuneColumns(t *testing.T) {
	// Columns count characters, not bytes.
	lines := []string{"héllo target"}
	matches := FindMatches(lines, Literal("target"))
	require.Len(t, matches, 1)
	require.Equal(t, 6, matches[0].Col)
}

func TestParsePatternSlashForm(t *testing.T) {
	p, err := ParsePattern(`/value: \d+/`)
	require.NoError(t, err)
	require.True(t, p.IsRegexp())
	require.True(t, p.Matches(`echo "value: 42"`))
	require.False(t, p.Matches("value: none"))
}

func TestParsePatternFlags(t *testing.T) {
	p, err := ParsePattern("/hello/i")
	require.NoError(t, err)
	require.True(t, p.Matches("say HELLO"))

	p, err = ParsePattern(`/a.b/s`)
	require.NoError(t, err)
	require.True(t, p.Matches("a\nb"))

	// The global flag is accepted and ignored.
	p, err = ParsePattern("/x/g")
	require.NoError(t, err)
	require.True(t, p.Matches("x"))

	_, err = ParsePattern("/x/q")
	require.Error(t, err)
}

func TestParsePatternLiteralFallback(t *testing.T) {
	p, err := ParsePattern("plain text")
	require.NoError(t, err)
	require.False(t, p.IsRegexp())
	require.True(t, p.Matches("some plain text here"))

	// A lone slash or unterminated form stays literal.
	p, err = ParsePattern("/")
	require.NoError(t, err)
	require.False(t, p.IsRegexp())

	p, err = ParsePattern("/half")
	require.NoError(t, err)
	require.False(t, p.IsRegexp())
	require.True(t, p.Matches("a /half b"))
}

func TestParsePatternInvalidRegexp(t *testing.T) {
	_, err := ParsePattern("/[unclosed/")
	require.Error(t, err)
}

func TestPatternString(t *testing.T) {
	require.Equal(t, `"abc"`, Literal("abc").String())
	require.Equal(t, `/a\d+/`, Regexp(regexp.MustCompile(`a\d+`)).String())
}
