package runs

import (
	"time"

	"github.com/rs/zerolog"
)

// CleanupJob prunes run rows past the retention window. It satisfies the
// scheduler's Job interface.
type CleanupJob struct {
	repo      *Repository
	retention time.Duration
	log       zerolog.Logger
}

// NewCleanupJob creates a retention job keeping runs for retentionDays.
func NewCleanupJob(repo *Repository, retentionDays int, log zerolog.Logger) *CleanupJob {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &CleanupJob{
		repo:      repo,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		log:       log.With().Str("job", "runs_cleanup").Logger(),
	}
}

// Name returns the job name for scheduler logs.
func (j *CleanupJob) Name() string {
	return "runs_cleanup"
}

// Run deletes runs older than the retention window.
func (j *CleanupJob) Run() error {
	cutoff := time.Now().Add(-j.retention)
	deleted, err := j.repo.DeleteOlderThan(cutoff)
	if err != nil {
		return err
	}
	j.log.Debug().Int64("deleted", deleted).Msg("Run history cleanup finished")
	return nil
}
