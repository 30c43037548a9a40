package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/analyses"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/extract"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/queue"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/storage/object"
)

// maxObjectBytes bounds how much of a stored upload is read.
const maxObjectBytes = 10 << 20

// ErrSampleResult is returned when the model quota forced a sample result.
// Samples are never saved, so the job must be redelivered.
var ErrSampleResult = errors.New("model quota exhausted; sample result not saved")

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode or payload validation failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrProcess indicates processing failed after successful parsing.
// Permanent failures will not succeed on redelivery.
type ErrProcess struct {
	StorageKey string
	RequestID  string
	Permanent  bool
	Err        error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process analysis"
	}
	return "process analysis: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}
	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	return msg, meta, nil
}

// Analyzer runs the analysis pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, in analyses.AnalyzeInput) (analyses.Outcome, error)
}

// Processor turns a queued upload into a saved analysis.
type Processor struct {
	Store    object.ObjectStore
	Analyzer Analyzer
}

// Process reads the stored upload, extracts its text and analyzes it with
// saving enabled. A sample result is reported as a retryable failure.
func (p *Processor) Process(ctx context.Context, msg queue.Message) (analyses.Outcome, error) {
	if p == nil || p.Store == nil || p.Analyzer == nil {
		return analyses.Outcome{}, errors.New("analysis processor not configured")
	}
	fail := func(permanent bool, err error) (analyses.Outcome, error) {
		return analyses.Outcome{}, ErrProcess{StorageKey: msg.StorageKey, RequestID: msg.RequestID, Permanent: permanent, Err: err}
	}

	rc, err := p.Store.Open(ctx, msg.StorageKey)
	if err != nil {
		return fail(errors.Is(err, object.ErrNotFound), fmt.Errorf("open upload: %w", err))
	}
	data, err := io.ReadAll(io.LimitReader(rc, maxObjectBytes+1))
	rc.Close()
	if err != nil {
		return fail(false, fmt.Errorf("read upload: %w", err))
	}
	if len(data) > maxObjectBytes {
		return fail(true, fmt.Errorf("upload exceeds %d bytes", maxObjectBytes))
	}

	name := msg.FileName
	if strings.TrimSpace(name) == "" {
		name = msg.StorageKey
	}
	doc, err := extract.FromBytes(ctx, data, msg.MimeType, name)
	if err != nil {
		return fail(errors.Is(err, extract.ErrUnsupportedType), fmt.Errorf("extract text: %w", err))
	}

	ctx = analyses.WithRequestID(ctx, msg.RequestID)
	outcome, err := p.Analyzer.Analyze(ctx, analyses.AnalyzeInput{
		Text:     doc.Text,
		Filename: name,
		Save:     true,
	})
	if err != nil {
		return fail(isPermanent(err), err)
	}
	if outcome.IsSample {
		return fail(false, ErrSampleResult)
	}
	return outcome, nil
}

// isPermanent reports analysis failures that retrying the same upload cannot fix.
func isPermanent(err error) bool {
	switch analyses.ErrorCode(err) {
	case analyses.ErrorCodeExtraction, analyses.ErrorCodeValidation:
		return true
	default:
		return false
	}
}
