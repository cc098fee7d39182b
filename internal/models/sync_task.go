package models

import "time"

// Sync task statuses.
const (
	SyncStatusPending = "pending"
	SyncStatusRetry   = "retry"
	SyncStatusDone    = "done"
	SyncStatusFailed  = "failed"
)

// SyncTask is a persisted unit of export work (Google Sheets sync).
type SyncTask struct {
	ID          int64      `json:"id"`
	TaskType    string     `json:"task_type"`
	RequestID   string     `json:"request_id"`
	Payload     string     `json:"payload"`
	Status      string     `json:"status"`
	RetryCount  int        `json:"retry_count"`
	LastError   string     `json:"last_error"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`
}
