package workflow

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nymkash-gerel/temuulel-app-sub002/internal/encoding"
)

// Labels maps states to human-readable button captions.
type Labels map[State]string

// Action is one next state a caller may offer for an entity.
type Action struct {
	State State
	Label string
	// Displayable is true when the caller supplied a label for State.
	Displayable bool
}

// NextActions lists the states reachable from current, annotated with labels.
// It reads the same table Validate does, so every returned state is accepted by it.
func NextActions(w *Workflow, current State, labels Labels) []Action {
	successors := w.Successors(current)
	if len(successors) == 0 {
		return []Action{}
	}

	caser := cases.Title(language.English)
	actions := make([]Action, 0, len(successors))

	for _, s := range successors {
		a := Action{State: s}

		if l, ok := labels[s]; ok && l != "" {
			a.Label = l
			a.Displayable = true
		} else {
			a.Label = caser.String(strings.ReplaceAll(string(s), "_", " "))
		}

		actions = append(actions, a)
	}

	return actions
}

// LoadLabels reads a "state;label" CSV. The file may come from a spreadsheet export in
// any common encoding; a leading "state" header row is skipped.
func LoadLabels(r io.Reader) (Labels, error) {
	utf8Reader, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detecting label file encoding: %w", err)
	}

	reader := csv.NewReader(utf8Reader)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading label csv: %w", err)
	}

	labels := make(Labels, len(rows))

	for i, row := range rows {
		if len(row) < 2 {
			continue
		}

		state := strings.TrimSpace(row[0])
		label := strings.TrimSpace(row[1])

		if i == 0 && strings.EqualFold(state, "state") {
			continue
		}

		if state == "" || label == "" {
			continue
		}

		labels[State(state)] = label
	}

	return labels, nil
}
