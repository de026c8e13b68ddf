package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Sync run statuses.
const (
	SyncStatusRunning = "running"
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)

// Pipeline names recorded on sync_logs.pipeline.
const (
	PipelineSeed          = "seed_movies"
	PipelineMigrateImages = "migrate_images"
)

// SyncError is one failed item within a run, with enough context to re-run
// just that item.
type SyncError struct {
	TMDBID  int    `json:"tmdb_id,omitempty"`
	Message string `json:"message"`
}

// SyncLog brackets one pipeline invocation: opened with status running at
// start, closed with final status and counts at the end, never touched
// outside that run.
type SyncLog struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	RunID         string     `gorm:"uniqueIndex;size:36" json:"run_id"`
	Pipeline      string     `gorm:"index" json:"pipeline"`
	Status        string     `gorm:"index" json:"status"`
	MoviesAdded   int        `json:"movies_added"`
	MoviesSkipped int        `json:"movies_skipped"`
	MoviesFailed  int        `json:"movies_failed"`
	Errors        string     `gorm:"type:jsonb;default:'[]'" json:"errors"`
	StartedAt     time.Time  `gorm:"index" json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (SyncLog) TableName() string {
	return "sync_logs"
}

// NewSyncLog opens a run record for the given pipeline.
func NewSyncLog(pipeline string) *SyncLog {
	return &SyncLog{
		RunID:     uuid.New().String(),
		Pipeline:  pipeline,
		Status:    SyncStatusRunning,
		Errors:    "[]",
		StartedAt: time.Now().UTC(),
	}
}

// Close stamps the final status, counts and completion time onto the log.
func (l *SyncLog) Close(added, skipped, failed int, errs []SyncError) {
	l.MoviesAdded = added
	l.MoviesSkipped = skipped
	l.MoviesFailed = failed
	l.Status = SyncStatusSuccess
	if failed > 0 {
		l.Status = SyncStatusFailed
	}
	if len(errs) > 0 {
		if raw, err := json.Marshal(errs); err == nil {
			l.Errors = string(raw)
		}
	}
	now := time.Now().UTC()
	l.CompletedAt = &now
}
