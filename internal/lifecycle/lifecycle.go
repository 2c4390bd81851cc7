package lifecycle

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nymkash-gerel/temuulel-app-sub002/internal/workflow"
)

var (
	ErrNotFound = errors.New("entity not found")
	// ErrStatusConflict means the stored status changed between read and write.
	ErrStatusConflict = errors.New("status changed concurrently")
	ErrInvalidRequest = errors.New("invalid status change request")
)

// ChangeRequest asks to move one entity of a store to a new status.
type ChangeRequest struct {
	Entity  workflow.EntityType
	StoreID uuid.UUID
	ID      uuid.UUID
	Status  workflow.State
}

// Change is an applied status change. From equals To for a same-status request.
type Change struct {
	Entity    workflow.EntityType
	StoreID   uuid.UUID
	ID        uuid.UUID
	From      workflow.State
	To        workflow.State
	ChangedAt time.Time
}
