package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/storage/object"
)

const (
	KindPDF  = "pdf"
	KindDOCX = "docx"
	KindDOC  = "doc"
	KindText = "txt"

	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeDOC  = "application/msword"
)

// ErrUnsupportedType is returned for uploads outside .pdf, .doc, .docx and .txt.
var ErrUnsupportedType = errors.New("unsupported file type")

// Document is the text recovered from one uploaded file.
type Document struct {
	Text     string
	Kind     string
	Method   string
	Degraded bool
}

// Kind resolves the document kind from the file extension, the declared MIME
// type and finally the sniffed content.
func Kind(data []byte, mimeType, fileName string) (string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return KindPDF, nil
	case ".docx":
		return KindDOCX, nil
	case ".doc":
		return KindDOC, nil
	case ".txt":
		return KindText, nil
	}

	declared := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if kind := kindForMime(declared); kind != "" {
		return kind, nil
	}

	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if kind := kindForMime(m.String()); kind != "" {
			return kind, nil
		}
	}
	if declared == "" {
		declared = detected.String()
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedType, declared)
}

func kindForMime(m string) string {
	m = strings.ToLower(strings.TrimSpace(strings.Split(m, ";")[0]))
	switch m {
	case mimePDF:
		return KindPDF
	case mimeDOCX:
		return KindDOCX
	case mimeDOC:
		return KindDOC
	case "text/plain":
		return KindText
	default:
		return ""
	}
}

// FromBytes recovers text from an in-memory upload.
func FromBytes(ctx context.Context, data []byte, mimeType, fileName string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	kind, err := Kind(data, mimeType, fileName)
	if err != nil {
		return Document{}, err
	}

	var doc Document
	switch kind {
	case KindPDF:
		doc = fromPDF(data)
	case KindDOCX:
		doc = fromDOCX(data)
	case KindText:
		text := string(data)
		if !utf8.ValidString(text) {
			text = strings.ToValidUTF8(text, "")
		}
		doc = Document{Text: Clean(text), Method: "text"}
	default:
		doc = Document{Text: RecoverText(string(data), false), Method: "raw"}
	}
	doc.Kind = kind
	doc.Degraded = IsDegraded(doc.Text)
	return doc, nil
}

// ExtractText pulls text from a stored object and persists a derived .extracted.txt copy.
func ExtractText(ctx context.Context, store object.ObjectStore, fileKey, mimeType, fileName string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	body, err := store.Open(ctx, fileKey)
	if err != nil {
		return Document{}, fmt.Errorf("extract text key=%s mime=%s: %w", fileKey, mimeType, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return Document{}, fmt.Errorf("extract text key=%s mime=%s: read: %w", fileKey, mimeType, err)
	}

	doc, err := FromBytes(ctx, raw, mimeType, fileName)
	if err != nil {
		return Document{}, fmt.Errorf("extract text key=%s mime=%s: %w", fileKey, mimeType, err)
	}

	extractedKey := fileKey + ".extracted.txt"
	if _, err := store.SaveWithKey(ctx, extractedKey, "text/plain; charset=utf-8", strings.NewReader(doc.Text)); err != nil {
		return Document{}, fmt.Errorf("extract text key=%s mime=%s: save: %w", fileKey, mimeType, err)
	}
	return doc, nil
}

// fromPDF runs the heuristic scraper and, when it comes back thin, the
// structural decoder, keeping whichever recovered more text.
func fromPDF(data []byte) Document {
	text := RecoverText(string(data), true)
	if !IsDegraded(text) {
		return Document{Text: text, Method: "heuristic"}
	}
	decoded, err := decodePDF(data)
	if err == nil {
		decoded = Clean(decoded)
		if len(decoded) > len(text) || text == ExtractionFailedText && decoded != "" {
			return Document{Text: decoded, Method: "decoder"}
		}
	}
	return Document{Text: text, Method: "heuristic"}
}

func decodePDF(data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf decoder panic: %v", rec)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func fromDOCX(data []byte) Document {
	if len(data) > 0 {
		if doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data))); err == nil {
			content := doc.Editable().GetContent()
			_ = doc.Close()
			if text := Clean(stripDocxXML(content)); text != "" {
				return Document{Text: text, Method: "docx"}
			}
		}
	}
	return Document{Text: RecoverText(string(data), false), Method: "raw"}
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return buf.String()
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				buf.WriteString("\n")
			}
		}
	}
	return buf.String()
}
