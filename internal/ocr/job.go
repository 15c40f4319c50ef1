package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/infradyn/docextract/constants"
	"github.com/infradyn/docextract/internal/common"
)

// Config bounds the poll loop. The defaults give a ~2 minute wall-clock budget.
type Config struct {
	PollInterval time.Duration // default 2s
	MaxAttempts  int           // default 60
}

// Job is the local view of one async OCR job. It is created by SubmitJob and
// mutated only by poll responses; once terminal it never changes again.
type Job struct {
	ID     string
	Status constants.JobStatus
	Blocks []Block

	cursor string
}

// Service drives the submit/poll/collect protocol against an API.
type Service struct {
	api    API
	cfg    Config
	logger *slog.Logger
}

func NewService(api API, cfg Config, logger *slog.Logger) *Service {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 60
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, cfg: cfg, logger: logger}
}

// SubmitJob starts a new detection job. Jobs are never resubmitted: retrying a
// failed or timed-out extraction means submitting a fresh job.
func (s *Service) SubmitJob(ctx context.Context, bucket, key string) (*Job, error) {
	id, err := s.api.Submit(ctx, bucket, key)
	if err != nil {
		s.logger.Error("ocr.job.submit_error", "bucket", bucket, "key", key, "error", err)
		return nil, common.NewTransportError("submit ocr job", err)
	}
	s.logger.Info("ocr.job.submitted", "job_id", id, "bucket", bucket, "key", key)
	return &Job{ID: id, Status: constants.JobStatusSubmitted}, nil
}

// PollOnce advances a job by one poll. Polling a terminal job is a no-op that
// reports the same terminal status. On SUCCEEDED it follows the continuation
// cursor until exhausted so the job holds every result block.
func (s *Service) PollOnce(ctx context.Context, job *Job) error {
	if job.Status.Terminal() {
		return nil
	}

	resp, err := s.api.Poll(ctx, job.ID, "")
	if err != nil {
		return common.NewTransportError("poll ocr job", err)
	}

	switch resp.Status {
	case constants.JobStatusSucceeded:
		job.Blocks = append(job.Blocks, resp.Blocks...)
		job.cursor = resp.NextCursor
		for job.cursor != "" {
			page, err := s.api.Poll(ctx, job.ID, job.cursor)
			if err != nil {
				return common.NewTransportError("page ocr results", err)
			}
			job.Blocks = append(job.Blocks, page.Blocks...)
			job.cursor = page.NextCursor
		}
		job.Status = constants.JobStatusSucceeded
	case constants.JobStatusFailed:
		job.Status = constants.JobStatusFailed
	default:
		job.Status = constants.JobStatusRunning
	}
	return nil
}

// Wait polls the job on the configured interval until it reaches a terminal
// state or the attempt budget is spent. The wait is timer-driven against ctx,
// so a caller deadline cancels between polls; the remote job itself is then
// simply abandoned.
func (s *Service) Wait(ctx context.Context, job *Job) error {
	start := time.Now()
	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		timer := time.NewTimer(s.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return common.NewTransportError("ocr wait cancelled", ctx.Err())
		case <-timer.C:
		}

		if err := s.PollOnce(ctx, job); err != nil {
			return err
		}
		if job.Status.Terminal() {
			break
		}
		if attempt%10 == 0 {
			s.logger.Info("ocr.job.still_running", "job_id", job.ID, "elapsed_ms", time.Since(start).Milliseconds())
		}
	}

	switch job.Status {
	case constants.JobStatusSucceeded:
		s.logger.Info("ocr.job.succeeded",
			"job_id", job.ID, "blocks", len(job.Blocks), "elapsed_ms", time.Since(start).Milliseconds())
		return nil
	case constants.JobStatusFailed:
		s.logger.Error("ocr.job.failed", "job_id", job.ID)
		return common.NewUnreadableDocument("Could not extract text from document", fmt.Errorf("ocr job %s failed", job.ID))
	default:
		job.Status = constants.JobStatusTimedOut
		s.logger.Error("ocr.job.timed_out", "job_id", job.ID, "attempts", s.cfg.MaxAttempts)
		return common.NewUnreadableDocument("Could not extract text from document", fmt.Errorf("ocr job %s timed out", job.ID))
	}
}

// Lines joins the job's LINE blocks with newlines in the order returned.
// Word/cell/form blocks are ignored.
func (j *Job) Lines() string {
	var lines []string
	for _, b := range j.Blocks {
		if b.Type == BlockLine {
			lines = append(lines, b.Text)
		}
	}
	return strings.Join(lines, "\n")
}

// ExtractTextAsync runs the full submit/wait/collect protocol and returns the
// detected line text.
func (s *Service) ExtractTextAsync(ctx context.Context, bucket, key string) (string, error) {
	job, err := s.SubmitJob(ctx, bucket, key)
	if err != nil {
		return "", err
	}
	if err := s.Wait(ctx, job); err != nil {
		return "", err
	}
	return job.Lines(), nil
}

// DetectText runs single-shot detection for raster images.
func (s *Service) DetectText(ctx context.Context, bucket, key string) (string, error) {
	blocks, err := s.api.Detect(ctx, bucket, key)
	if err != nil {
		return "", common.NewTransportError("detect document text", err)
	}
	job := Job{Blocks: blocks}
	return job.Lines(), nil
}
