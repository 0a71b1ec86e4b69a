package pipeline

import (
	"context"
	"fmt"
	"log/slog"
)

// Worker runs batch outline jobs.
type Worker struct {
	svc *Service
	log *slog.Logger
}

func NewWorker(svc *Service, log *slog.Logger) *Worker {
	return &Worker{svc: svc, log: log}
}

// Process extracts the outline of every file in the job. A file that
// fails is recorded and skipped; the job ends partial when some files
// succeeded and failed when none did.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)
	defer job.releaseFiles()

	files := job.Files()
	job.SetStatus(StatusExtracting, "extracting")
	log.Info("batch outline started", "files", len(files))

	succeeded, failed := 0, 0
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			log.Warn("batch outline canceled", "processed", i)
			job.AddError(fmt.Sprintf("%s: %s", f.Name, err))
			job.SetStatus(StatusFailed, "canceled")
			return
		}

		res, err := w.svc.ExtractOutline(ctx, f)
		if err != nil {
			log.Warn("outline failed", "document", f.Name, "error", err)
			job.AddError(err.Error())
			failed++
			continue
		}
		job.AddResult(FileOutline{
			Filename:    f.Name,
			ContentHash: ContentHashHex(f.Data),
			Result:      res,
		})
		succeeded++
	}

	log.Info("batch outline complete", "succeeded", succeeded, "failed", failed)
	switch {
	case failed == 0:
		job.SetStatus(StatusCompleted, "done")
	case succeeded > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusFailed, "extracting")
	}
}
