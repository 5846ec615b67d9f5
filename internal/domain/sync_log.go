package domain

import (
	"time"

	"github.com/google/uuid"
)

// SyncOperation — тип пакетного запуска.
type SyncOperation string

const (
	SyncOperationImport SyncOperation = "import"
	SyncOperationSync   SyncOperation = "sync"
)

// SyncOutcome — итог запуска.
type SyncOutcome string

const (
	SyncOutcomeSuccess SyncOutcome = "success"
	SyncOutcomePartial SyncOutcome = "partial"
	SyncOutcomeError   SyncOutcome = "error"
)

// ClassifyOutcome: без ошибок success, если упали не все элементы partial, иначе error.
func ClassifyOutcome(total, failed int) SyncOutcome {
	switch {
	case failed == 0:
		return SyncOutcomeSuccess
	case failed < total:
		return SyncOutcomePartial
	default:
		return SyncOutcomeError
	}
}

// SyncErrorDetail — структурированная ошибка одного элемента запуска.
type SyncErrorDetail struct {
	ExternalID string `json:"external_id,omitempty"`
	Stage      string `json:"stage"`
	Message    string `json:"message"`
}

// SyncLogEntry — неизменяемая запись аудита одного запуска импорта или сверки.
// Инвариант: Updated + Failed <= Processed.
type SyncLogEntry struct {
	ID          uuid.UUID
	Operation   SyncOperation
	Provider    Provider
	Outcome     SyncOutcome
	Processed   int
	Updated     int
	Failed      int
	Errors      []SyncErrorDetail
	SnapshotKey string
	StartedAt   time.Time
	FinishedAt  time.Time
}
