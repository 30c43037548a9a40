package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/analyses"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/bootstrap"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/queue"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/config"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/metrics"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/storage/db"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/telemetry"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/workerproc"
)

type processor interface {
	Process(ctx context.Context, msg queue.Message) (analyses.Outcome, error)
}

var (
	initOnce sync.Once
	initErr  error
	proc     processor
)

func initApp() {
	cfg := config.Load()
	dbOpts := db.DefaultWorkerOptions()
	app, err := bootstrap.Build(context.Background(), cfg, bootstrap.Options{DBOptions: &dbOpts, SharedDB: true, SkipRouter: true})
	if err != nil {
		initErr = err
		return
	}
	proc = &workerproc.Processor{Store: app.Store, Analyzer: app.AnalysesService}
}

func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		log.Printf("bootstrap error: %v", initErr)
		failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
		for _, record := range event.Records {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
		return events.SQSEventResponse{BatchItemFailures: failures}, initErr
	}
	return processBatch(ctx, proc, event), nil
}

// processBatch reports only retryable failures so SQS redelivers them;
// undecodable and permanently failing records are dropped.
func processBatch(ctx context.Context, p processor, event events.SQSEvent) events.SQSEventResponse {
	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		metrics.IncJobsReceived()
		msg, meta, err := workerproc.ParseMessage(record.Body)
		if err != nil {
			telemetry.Error("worker.analysis.decode_failed", map[string]any{
				"sqs_message_id": record.MessageId,
				"body_len":       meta.BodyLen,
				"error":          err.Error(),
			})
			metrics.IncJobsDropped()
			continue
		}
		fields := map[string]any{
			"sqs_message_id": record.MessageId,
			"storage_key":    msg.StorageKey,
			"request_id":     msg.RequestID,
		}
		outcome, err := p.Process(ctx, msg)
		if err != nil {
			fields["error"] = err.Error()
			telemetry.Error("worker.analysis.failed", fields)
			metrics.IncJobsFailed()
			var procErr workerproc.ErrProcess
			if errors.As(err, &procErr) && procErr.Permanent {
				metrics.IncJobsDropped()
				continue
			}
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
			continue
		}
		fields["saved_id"] = outcome.SavedID
		telemetry.Info("worker.analysis.completed", fields)
		metrics.IncJobsCompleted()
	}
	return events.SQSEventResponse{BatchItemFailures: failures}
}

func main() {
	lambda.Start(handler)
}
