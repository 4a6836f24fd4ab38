package jobs

import (
	"context"
	"log"
	"time"

	"kingscanvas/internal/services"
)

// RetentionCleanupJob purges dismissed opportunities that have aged past the
// retention window. Runs nightly.
type RetentionCleanupJob struct {
	opportunityService *services.OpportunityService
	retentionDays      int
}

// NewRetentionCleanupJob creates a new retention cleanup job
func NewRetentionCleanupJob(opportunityService *services.OpportunityService, retentionDays int) *RetentionCleanupJob {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &RetentionCleanupJob{
		opportunityService: opportunityService,
		retentionDays:      retentionDays,
	}
}

// Run executes the retention cleanup
func (j *RetentionCleanupJob) Run(ctx context.Context) error {
	if j.opportunityService == nil {
		log.Println("[RETENTION] Retention cleanup disabled (requires MongoDB)")
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -j.retentionDays)
	log.Printf("[RETENTION] Purging dismissed opportunities older than %d days...", j.retentionDays)

	deleted, err := j.opportunityService.PurgeDismissedBefore(ctx, cutoff)
	if err != nil {
		log.Printf("[RETENTION] Cleanup failed: %v", err)
		return err
	}

	log.Printf("[RETENTION] Cleanup complete: deleted %d dismissed opportunities", deleted)
	return nil
}

// GetNextRunTime schedules the job for 3 AM UTC daily
func (j *RetentionCleanupJob) GetNextRunTime() time.Time {
	now := time.Now().UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), 3, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
