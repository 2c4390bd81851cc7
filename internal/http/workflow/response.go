package workflow

import (
	"github.com/nymkash-gerel/temuulel-app-sub002/internal/workflow"
)

type entitiesResponse struct {
	Entities []workflow.EntityType `json:"entities"`
}

type stateResponse struct {
	State    workflow.State   `json:"state"`
	Terminal bool             `json:"terminal"`
	Next     []workflow.State `json:"next"`
}

type workflowResponse struct {
	Entity workflow.EntityType `json:"entity"`
	States []stateResponse     `json:"states"`
}

func toWorkflowResponse(wf *workflow.Workflow) workflowResponse {
	states := wf.States()

	resp := workflowResponse{
		Entity: wf.Entity(),
		States: make([]stateResponse, len(states)),
	}

	for i, s := range states {
		next := wf.Successors(s)
		if next == nil {
			next = []workflow.State{}
		}

		resp.States[i] = stateResponse{State: s, Terminal: wf.IsTerminal(s), Next: next}
	}

	return resp
}

// ActionResponse is the JSON form of a workflow.Action, shared with the entity status handler.
type ActionResponse struct {
	Status      workflow.State `json:"status"`
	Label       string         `json:"label"`
	Displayable bool           `json:"displayable"`
}

func ToActionResponses(actions []workflow.Action) []ActionResponse {
	resp := make([]ActionResponse, len(actions))
	for i, a := range actions {
		resp[i] = ActionResponse{Status: a.State, Label: a.Label, Displayable: a.Displayable}
	}

	return resp
}

type actionsResponse struct {
	Entity  workflow.EntityType `json:"entity"`
	Status  workflow.State      `json:"status"`
	Actions []ActionResponse    `json:"actions"`
}

type transitionErrorResponse struct {
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Reason  workflow.Reason `json:"reason"`
}

type validateResponse struct {
	Valid bool                     `json:"valid"`
	Error *transitionErrorResponse `json:"error,omitempty"`
}
