package extract

import (
	"strings"
	"testing"
)

func TestCleanIsIdempotent(t *testing.T) {
	inputs := []string{
		"Name: Jane Doe\\nSummary:\\tGo engineer\\r\\nEXPERIENCE",
		"  lots   of\t\tspace \r\n\r\n\r\n\r\nand lines  ",
		"control\x01chars\x7f here\x00",
		"already clean text",
		"trailing backslash \\",
		"\\\\n double escaped",
		"",
	}
	for _, in := range inputs {
		once := Clean(in)
		if twice := Clean(once); twice != once {
			t.Fatalf("Clean not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestCleanConvertsLiteralEscapes(t *testing.T) {
	got := Clean(`Name: Jane Doe\nSummary:\tGo engineer`)
	want := "Name: Jane Doe\nSummary: Go engineer"
	if got != want {
		t.Fatalf("Clean = %q, want %q", got, want)
	}
}

func TestIsPDFLike(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{raw: "%PDF-1.7\n...", want: true},
		{raw: "garbage 12 0 obj << >> endobj %%EOF", want: true},
		{raw: "12 0 obj without trailer", want: false},
		{raw: "%%EOF only", want: false},
		{raw: "Jane Doe resume", want: false},
	}
	for _, tt := range tests {
		if got := IsPDFLike(tt.raw); got != tt.want {
			t.Fatalf("IsPDFLike(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestLiteralShowTextUnescapes(t *testing.T) {
	raw := `BT (Jane \(JD\) Doe) Tj (C:\\path) Tj (caf\351) Tj ET`
	got := LiteralShowText{}.Extract(raw)
	want := []string{"Jane (JD) Doe", `C:\path`, "caf\u00e9"}
	if len(got) != len(want) {
		t.Fatalf("got %d fragments (%q), want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fragment %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestArrayShowTextJoinsLiteralMembers(t *testing.T) {
	raw := `BT [(Soft) -15 (ware) 120 (Engineer)] TJ ET`
	got := ArrayShowText{}.Extract(raw)
	if len(got) != 1 || got[0] != "SoftwareEngineer" {
		t.Fatalf("unexpected fragments: %q", got)
	}
}

func TestHexShowTextDropsNonPrintable(t *testing.T) {
	raw := `BT <4A616E6501 4420> Tj <ZZ> Tj ET`
	got := HexShowText{}.Extract(raw)
	if len(got) != 1 || got[0] != "JaneD " {
		t.Fatalf("unexpected fragments: %q", got)
	}
}

func TestParenthesizedRunsRequireAlnum(t *testing.T) {
	raw := `(--) (ok) (a) << /Title (Resume 2024) >>`
	got := ParenthesizedRuns{}.Extract(raw)
	want := []string{"ok", "Resume 2024"}
	if len(got) != len(want) {
		t.Fatalf("unexpected fragments: %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fragment %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPostProcessMergesHyphenWrapsAndStripsFontTokens(t *testing.T) {
	got := postProcess("deve-  \n  lopment   F1 TT2 experience   with Go")
	want := "development experience with Go"
	if got != want {
		t.Fatalf("postProcess = %q, want %q", got, want)
	}
}

func TestRecoverTextDegradesWithoutShowOperators(t *testing.T) {
	raw := "%PDF-1.5\n1 0 obj\n<< /Filter /FlateDecode /Length 12 >>\nstream\n\x78\x9c\x01\x02\x03\x04\nendstream\nendobj\n%%EOF"
	text := RecoverText(raw, true)
	if len(text) >= minRecoveredChars {
		t.Fatalf("expected short text, got %d chars: %q", len(text), text)
	}
	if !IsDegraded(text) {
		t.Fatalf("expected degraded text")
	}
}

func TestRecoverTextFallsBackToStreamRuns(t *testing.T) {
	raw := "%PDF-1.4\n1 0 obj\nstream\n\x01\x02Experienced platform engineer with Kubernetes\x03\x04 and Terraform background\x05\nendstream\nendobj\n%%EOF"
	text := RecoverText(raw, true)
	if !strings.Contains(text, "Experienced platform engineer with Kubernetes") {
		t.Fatalf("expected stream fallback text, got %q", text)
	}
	if !strings.Contains(text, "Terraform background") {
		t.Fatalf("expected second run, got %q", text)
	}
}

func TestRecoverTextNonPDFOnlyCleans(t *testing.T) {
	raw := "Plain (text) Tj content\\nsecond line"
	got := RecoverText(raw, false)
	want := "Plain (text) Tj content\nsecond line"
	if got != want {
		t.Fatalf("RecoverText = %q, want %q", got, want)
	}
}

type panicExtractor struct{}

func (panicExtractor) Name() string           { return "panic" }
func (panicExtractor) Extract(string) []string { panic("boom") }

func TestRecoverTextReturnsSentinelOnPanic(t *testing.T) {
	prev := defaultScraper
	defaultScraper = PDFScraper{Extractors: []Extractor{panicExtractor{}}}
	t.Cleanup(func() { defaultScraper = prev })

	got := RecoverText("%PDF-1.4 (x) Tj", true)
	if got != ExtractionFailedText {
		t.Fatalf("expected sentinel, got %q", got)
	}
	if !strings.Contains(got, "failed to extract") {
		t.Fatalf("sentinel should mention failure")
	}
	if !IsDegraded(got) {
		t.Fatalf("sentinel must count as degraded")
	}
}

type fixedExtractor []string

func (fixedExtractor) Name() string              { return "fixed" }
func (f fixedExtractor) Extract(string) []string { return f }

func TestScraperUnionsExtractorsInOrder(t *testing.T) {
	s := PDFScraper{Extractors: []Extractor{
		fixedExtractor{"first pass text about Go services and APIs", "---"},
		fixedExtractor{"second pass text about Postgres"},
	}}
	got := s.Scrape("")
	want := "first pass text about Go services and APIs second pass text about Postgres"
	if got != want {
		t.Fatalf("Scrape = %q, want %q", got, want)
	}
}
