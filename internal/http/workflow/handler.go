package workflow

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nymkash-gerel/temuulel-app-sub002/internal/http/respond"
	"github.com/nymkash-gerel/temuulel-app-sub002/internal/workflow"
)

type Handler struct {
	registry *workflow.Registry
	labels   workflow.Labels
}

func NewHandler(registry *workflow.Registry, labels workflow.Labels) *Handler {
	return &Handler{registry: registry, labels: labels}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{entity}", h.get)
	r.Get("/{entity}/actions", h.actions)
	r.Post("/{entity}/validate", h.validate)
}

// lookup resolves the {entity} URL parameter, answering 404 itself when it is unknown.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*workflow.Workflow, bool) {
	wf, err := h.registry.Get(workflow.EntityType(chi.URLParam(r, "entity")))
	if err != nil {
		if errors.Is(err, workflow.ErrUnknownEntity) {
			respond.Error(w, http.StatusNotFound, respond.CodeUnknownEntity, err.Error())
			return nil, false
		}

		respond.Internal(w, r, err)

		return nil, false
	}

	return wf, true
}

func (h *Handler) list(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, entitiesResponse{Entities: h.registry.Entities()})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.lookup(w, r)
	if !ok {
		return
	}

	respond.JSON(w, http.StatusOK, toWorkflowResponse(wf))
}

func (h *Handler) actions(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.lookup(w, r)
	if !ok {
		return
	}

	status := workflow.State(r.URL.Query().Get("status"))
	if status == "" {
		respond.FieldError(w, http.StatusBadRequest, respond.CodeValidation, "status", "status query parameter is required")
		return
	}

	respond.JSON(w, http.StatusOK, actionsResponse{
		Entity:  wf.Entity(),
		Status:  status,
		Actions: ToActionResponses(workflow.NextActions(wf, status, h.labels)),
	})
}

type validateRequest struct {
	From workflow.State `json:"from"`
	To   workflow.State `json:"to"`
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidBody, err.Error())
		return
	}

	if req.From == "" || req.To == "" {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, "from and to are required")
		return
	}

	result := workflow.Validate(wf, req.From, req.To)

	resp := validateResponse{Valid: result.Valid}
	if result.Err != nil {
		resp.Error = &transitionErrorResponse{
			Message: result.Err.Error(),
			Code:    respond.CodeInvalidTransition,
			Reason:  result.Err.Reason,
		}
	}

	respond.JSON(w, http.StatusOK, resp)
}
