package lifecycle

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nymkash-gerel/temuulel-app-sub002/internal/http/respond"
	workflowHandler "github.com/nymkash-gerel/temuulel-app-sub002/internal/http/workflow"
	"github.com/nymkash-gerel/temuulel-app-sub002/internal/lifecycle"
	"github.com/nymkash-gerel/temuulel-app-sub002/internal/workflow"
)

type Handler struct {
	svc    *lifecycle.Service
	labels workflow.Labels
}

func NewHandler(svc *lifecycle.Service, labels workflow.Labels) *Handler {
	return &Handler{svc: svc, labels: labels}
}

// Routes expects to be mounted under a router that carries the {storeID} parameter.
func (h *Handler) Routes(r chi.Router) {
	r.Patch("/entities/{entity}/{id}/status", h.updateStatus)
}

type updateStatusRequest struct {
	Status workflow.State `json:"status"`
}

type changeResponse struct {
	Entity    workflow.EntityType              `json:"entity"`
	ID        uuid.UUID                        `json:"id"`
	From      workflow.State                   `json:"from"`
	Status    workflow.State                   `json:"status"`
	ChangedAt time.Time                        `json:"changed_at"`
	Actions   []workflowHandler.ActionResponse `json:"actions"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "storeID"))
	if err != nil {
		respond.FieldError(w, http.StatusBadRequest, respond.CodeValidation, "store_id", "invalid store id")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.FieldError(w, http.StatusBadRequest, respond.CodeValidation, "id", "invalid id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidBody, err.Error())
		return
	}

	change, err := h.svc.Transition(r.Context(), lifecycle.ChangeRequest{
		Entity:  workflow.EntityType(chi.URLParam(r, "entity")),
		StoreID: storeID,
		ID:      id,
		Status:  req.Status,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// Transition succeeded, so the entity type is registered.
	wf, _ := h.svc.Registry().Get(change.Entity)

	respond.JSON(w, http.StatusOK, changeResponse{
		Entity:    change.Entity,
		ID:        change.ID,
		From:      change.From,
		Status:    change.To,
		ChangedAt: change.ChangedAt,
		Actions:   workflowHandler.ToActionResponses(workflow.NextActions(wf, change.To, h.labels)),
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var terr *workflow.TransitionError

	switch {
	case errors.As(err, &terr):
		respond.Error(w, http.StatusUnprocessableEntity, respond.CodeInvalidTransition, terr.Error())
	case errors.Is(err, lifecycle.ErrInvalidRequest):
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, err.Error())
	case errors.Is(err, workflow.ErrUnknownEntity):
		respond.Error(w, http.StatusNotFound, respond.CodeUnknownEntity, err.Error())
	case errors.Is(err, lifecycle.ErrNotFound):
		respond.Error(w, http.StatusNotFound, respond.CodeNotFound, "entity not found")
	case errors.Is(err, lifecycle.ErrStatusConflict):
		respond.Error(w, http.StatusConflict, respond.CodeConflict, "status was changed by another request, reload and retry")
	default:
		respond.Internal(w, r, err)
	}
}
