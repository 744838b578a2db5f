package async

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// ErrQueueClosed is returned by Enqueue after Shutdown started.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document waiting for extraction.
type Job struct {
	Path        string
	SubmittedAt time.Time
	RequestID   string
}

// Outcome reports a finished job to the WithOnDone callback.
type Outcome struct {
	Job     Job
	Status  constants.JobStatus
	Record  *entity.ExtractionRecord
	Err     error
	Elapsed time.Duration
}

// FileProcessor turns a document path into a stored (or transient) record.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) (*entity.ExtractionRecord, error)
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
