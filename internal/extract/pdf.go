package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// minRecoveredChars is the length below which recovered text is considered too
// thin to analyze.
const minRecoveredChars = 50

var (
	// (text) Tj
	literalShowPattern = regexp.MustCompile(`(?s)\(((?:\\.|[^\\)])*)\)\s*Tj`)
	// [(Hel) -20 (lo)] TJ
	arrayShowPattern = regexp.MustCompile(`(?s)\[((?:\\.|[^\\\]])*)\]\s*TJ`)
	// literal strings inside a TJ array
	arrayLiteralPattern = regexp.MustCompile(`(?s)\(((?:\\.|[^\\)])*)\)`)
	// <48656c6c6f> Tj
	hexShowPattern = regexp.MustCompile(`<([0-9A-Fa-f\s]+)>\s*Tj`)
	// any (..) run, regardless of operator
	parenRunPattern = regexp.MustCompile(`\(([^()]{2,})\)`)

	streamBodyPattern = regexp.MustCompile(`(?s)stream\r?\n?(.*?)endstream`)
	printableRun      = regexp.MustCompile(`[\x20-\x7E]{10,}`)
	threeLetters      = regexp.MustCompile(`[A-Za-z]{3}`)

	alnumPattern      = regexp.MustCompile(`[A-Za-z0-9]`)
	whitespaceRun     = regexp.MustCompile(`\s+`)
	hyphenWrapPattern = regexp.MustCompile(`([A-Za-z])-\s+([A-Za-z])`)
	// isolated font resource names such as F1, TT2
	fontTokenPattern = regexp.MustCompile(`\b[A-Z]{1,3}\d{1,3}\b`)
)

// Extractor is one text recovery strategy over a raw PDF byte string.
type Extractor interface {
	Name() string
	Extract(raw string) []string
}

// LiteralShowText recovers literal strings drawn with the Tj operator.
type LiteralShowText struct{}

func (LiteralShowText) Name() string { return "literal_tj" }

func (LiteralShowText) Extract(raw string) []string {
	var out []string
	for _, m := range literalShowPattern.FindAllStringSubmatch(raw, -1) {
		out = append(out, unescapeLiteral(m[1]))
	}
	return out
}

// ArrayShowText recovers the literal members of TJ arrays.
type ArrayShowText struct{}

func (ArrayShowText) Name() string { return "array_tj" }

func (ArrayShowText) Extract(raw string) []string {
	var out []string
	for _, m := range arrayShowPattern.FindAllStringSubmatch(raw, -1) {
		var b strings.Builder
		for _, lit := range arrayLiteralPattern.FindAllStringSubmatch(m[1], -1) {
			b.WriteString(unescapeLiteral(lit[1]))
		}
		out = append(out, b.String())
	}
	return out
}

// HexShowText recovers hex strings drawn with Tj, keeping printable ASCII only.
type HexShowText struct{}

func (HexShowText) Name() string { return "hex_tj" }

func (HexShowText) Extract(raw string) []string {
	var out []string
	for _, m := range hexShowPattern.FindAllStringSubmatch(raw, -1) {
		out = append(out, decodePrintableHex(m[1]))
	}
	return out
}

// ParenthesizedRuns takes every parenthesized run of two or more characters.
// It over-matches on purpose and picks up text the operator-aware passes miss.
type ParenthesizedRuns struct{}

func (ParenthesizedRuns) Name() string { return "paren_runs" }

func (ParenthesizedRuns) Extract(raw string) []string {
	var out []string
	for _, m := range parenRunPattern.FindAllStringSubmatch(raw, -1) {
		if alnumPattern.MatchString(m[1]) {
			out = append(out, unescapeLiteral(m[1]))
		}
	}
	return out
}

// DefaultExtractors returns the recovery passes in priority order.
func DefaultExtractors() []Extractor {
	return []Extractor{LiteralShowText{}, ArrayShowText{}, HexShowText{}, ParenthesizedRuns{}}
}

// PDFScraper runs every extractor over the raw content and joins the union of
// their fragments. It is not a PDF parser: compressed content streams yield little.
type PDFScraper struct {
	Extractors []Extractor
}

// Scrape returns the recovered text, falling back to printable runs inside
// stream bodies when the extractors produce too little.
func (s PDFScraper) Scrape(raw string) string {
	extractors := s.Extractors
	if len(extractors) == 0 {
		extractors = DefaultExtractors()
	}

	var kept []string
	for _, ex := range extractors {
		for _, frag := range ex.Extract(raw) {
			if alnumPattern.MatchString(frag) {
				kept = append(kept, frag)
			}
		}
	}

	text := postProcess(strings.Join(kept, " "))
	if len(text) >= minRecoveredChars {
		return text
	}
	if fallback := scanStreams(raw); len(fallback) > len(text) {
		return fallback
	}
	return text
}

func postProcess(text string) string {
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = hyphenWrapPattern.ReplaceAllString(text, "$1$2")
	text = fontTokenPattern.ReplaceAllString(text, "")
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func scanStreams(raw string) string {
	var runs []string
	for _, m := range streamBodyPattern.FindAllStringSubmatch(raw, -1) {
		for _, run := range printableRun.FindAllString(m[1], -1) {
			if threeLetters.MatchString(run) {
				runs = append(runs, run)
			}
		}
	}
	return postProcess(strings.Join(runs, " "))
}

// unescapeLiteral resolves backslash escapes in a PDF literal string,
// including one to three digit octal codes.
func unescapeLiteral(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		next := s[i]
		switch {
		case next == 'n':
			b.WriteByte('\n')
		case next == 'r':
			b.WriteByte('\r')
		case next == 't':
			b.WriteByte('\t')
		case next == 'b', next == 'f':
			b.WriteByte(' ')
		case next == '\r' || next == '\n':
			// line continuation
			if next == '\r' && i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case next >= '0' && next <= '7':
			end := i + 1
			for end < len(s) && end < i+3 && s[end] >= '0' && s[end] <= '7' {
				end++
			}
			code, _ := strconv.ParseUint(s[i:end], 8, 16)
			b.WriteRune(rune(code & 0xFF))
			i = end - 1
		default:
			b.WriteByte(next)
		}
	}
	return b.String()
}

// decodePrintableHex decodes hex pairs, dropping malformed or non-printable ones.
func decodePrintableHex(h string) string {
	h = whitespaceRun.ReplaceAllString(h, "")
	var b strings.Builder
	for i := 0; i+1 < len(h); i += 2 {
		v, err := strconv.ParseUint(h[i:i+2], 16, 8)
		if err != nil {
			continue
		}
		if v >= 32 && v <= 126 {
			b.WriteByte(byte(v))
		}
	}
	return b.String()
}
