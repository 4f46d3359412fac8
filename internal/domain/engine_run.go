package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type RunKind string

const (
	RunKindFull      RunKind = "full"
	RunKindReminders RunKind = "reminders"
	RunKindSweep     RunKind = "sweep"
)

type RunStatus string

const (
	RunStatusOK      RunStatus = "ok"
	RunStatusPartial RunStatus = "partial"
	RunStatusFailed  RunStatus = "failed"
)

// EngineRun is one audited engine pass. Summary holds the pass summary as
// returned by the API.
type EngineRun struct {
	ID         uuid.UUID       `json:"id" db:"run_id"`
	Kind       RunKind         `json:"kind" db:"kind"`
	Status     RunStatus       `json:"status" db:"status"`
	Summary    json.RawMessage `json:"summary,omitempty" db:"summary"`
	Error      *string         `json:"error,omitempty" db:"error"`
	StartedAt  time.Time       `json:"started_at" db:"started_at"`
	FinishedAt time.Time       `json:"finished_at" db:"finished_at"`
}

type RecordRunInput struct {
	Kind      RunKind
	Status    RunStatus
	StartedAt time.Time
	Summary   interface{}
	Err       error
}
