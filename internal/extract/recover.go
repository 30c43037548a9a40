package extract

import (
	"regexp"
	"strings"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/telemetry"
)

// ExtractionFailedText is returned in place of text when recovery blows up.
const ExtractionFailedText = "Error: failed to extract text from this PDF. Please try a different file format."

var (
	pdfObjPattern   = regexp.MustCompile(`\d+\s+\d+\s+obj\b`)
	horizontalSpace = regexp.MustCompile(`[ \t\f\v]+`)
	spaceAroundNL   = regexp.MustCompile(` ?\n ?`)
	blankLineRun    = regexp.MustCompile(`\n{3,}`)

	escapeReplacer = strings.NewReplacer(`\r\n`, "\n", `\n`, "\n", `\t`, "\t", `\r`, "\n")
)

var defaultScraper = PDFScraper{}

// IsPDFLike reports whether raw content looks like a PDF byte stream.
func IsPDFLike(raw string) bool {
	if strings.HasPrefix(raw, "%PDF") {
		return true
	}
	return strings.Contains(raw, "%%EOF") && pdfObjPattern.MatchString(raw)
}

// RecoverText returns the best plain-text rendering of raw file content.
// PDF-like input goes through the heuristic scraper; everything is cleaned.
// It never fails: a panic during scraping yields ExtractionFailedText.
func RecoverText(raw string, isPDFLike bool) (text string) {
	if !isPDFLike && !IsPDFLike(raw) {
		return Clean(raw)
	}
	defer func() {
		if rec := recover(); rec != nil {
			telemetry.Error("extract.pdf.panic", map[string]any{
				"error":     rec,
				"raw_bytes": len(raw),
			})
			text = ExtractionFailedText
		}
	}()
	return Clean(defaultScraper.Scrape(raw))
}

// Clean converts literal escape sequences to whitespace, strips control
// characters, collapses whitespace runs and normalizes line endings.
// Clean(Clean(t)) == Clean(t).
func Clean(text string) string {
	text = strings.ToValidUTF8(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7F {
			return -1
		}
		return r
	}, text)
	text = escapeReplacer.Replace(text)
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = spaceAroundNL.ReplaceAllString(text, "\n")
	text = blankLineRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// IsDegraded reports whether recovered text is too thin to analyze with confidence.
func IsDegraded(text string) bool {
	trimmed := strings.TrimSpace(text)
	return trimmed == ExtractionFailedText || len(trimmed) < minRecoveredChars
}
