package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nymkash-gerel/temuulel-app-sub002/internal/workflow"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=lifecycle
type Repository interface {
	CurrentStatus(ctx context.Context, entity workflow.EntityType, storeID, id uuid.UUID) (workflow.State, error)
	// SetStatus writes to only if the stored status is still from, returning
	// ErrStatusConflict otherwise.
	SetStatus(ctx context.Context, entity workflow.EntityType, storeID, id uuid.UUID, from, to workflow.State) error
}

type Service struct {
	repo     Repository
	registry *workflow.Registry
	now      func() time.Time
}

func NewService(repo Repository, registry *workflow.Registry) *Service {
	return &Service{repo: repo, registry: registry, now: time.Now}
}

// Registry returns the transition tables the service validates against.
func (s *Service) Registry() *workflow.Registry {
	return s.registry
}

// Transition validates req against the entity's transition table and persists it.
// A rejected transition is returned as a *workflow.TransitionError and nothing is written.
func (s *Service) Transition(ctx context.Context, req ChangeRequest) (*Change, error) {
	if req.StoreID == uuid.Nil || req.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: store and entity id are required", ErrInvalidRequest)
	}

	if req.Status == "" {
		return nil, fmt.Errorf("%w: status is required", ErrInvalidRequest)
	}

	wf, err := s.registry.Get(req.Entity)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.CurrentStatus(ctx, req.Entity, req.StoreID, req.ID)
	if err != nil {
		return nil, fmt.Errorf("loading current status: %w", err)
	}

	if err := wf.Check(current, req.Status); err != nil {
		var terr *workflow.TransitionError
		if errors.As(err, &terr) {
			slog.Info("status change rejected",
				"entity", req.Entity, "id", req.ID, "from", terr.From, "to", terr.To, "reason", terr.Reason)
		}

		return nil, err
	}

	if err := s.repo.SetStatus(ctx, req.Entity, req.StoreID, req.ID, current, req.Status); err != nil {
		return nil, fmt.Errorf("updating status: %w", err)
	}

	return &Change{
		Entity:    req.Entity,
		StoreID:   req.StoreID,
		ID:        req.ID,
		From:      current,
		To:        req.Status,
		ChangedAt: s.now(),
	}, nil
}
