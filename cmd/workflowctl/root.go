package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/nymkash-gerel/temuulel-app-sub002/internal/workflow"
)

type app struct {
	out        io.Writer
	registry   *workflow.Registry
	labelsFile string
	styles     styles
}

type styles struct {
	title    lipgloss.Style
	ok       lipgloss.Style
	fail     lipgloss.Style
	terminal lipgloss.Style
	faint    lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)

	return styles{
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		ok:       r.NewStyle().Foreground(lipgloss.Color("42")),
		fail:     r.NewStyle().Foreground(lipgloss.Color("205")),
		terminal: r.NewStyle().Foreground(lipgloss.Color("240")),
		faint:    r.NewStyle().Faint(true),
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{
		out:      out,
		registry: workflow.DefaultRegistry(),
		styles:   newStyles(out),
	}

	root := &cobra.Command{
		Use:   "workflowctl",
		Short: "Inspect and check entity status workflows",
		Long: `workflowctl reads the same transition tables the API enforces.

Use it to list entity types, print a workflow, check whether a status change
would be accepted, or see which actions an entity in a given status offers.`,
		SilenceUsage: true,
	}

	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVar(&a.labelsFile, "labels", os.Getenv("WORKFLOW_LABELS_FILE"),
		`"state;label" CSV with display labels`)

	root.AddCommand(
		a.entitiesCmd(),
		a.showCmd(),
		a.validateCmd(),
		a.actionsCmd(),
	)

	return root
}

func (a *app) workflow(name string) (*workflow.Workflow, error) {
	return a.registry.Get(workflow.EntityType(name))
}

func (a *app) labels() (workflow.Labels, error) {
	if a.labelsFile == "" {
		return workflow.Labels{}, nil
	}

	f, err := os.Open(a.labelsFile)
	if err != nil {
		return nil, fmt.Errorf("opening labels: %w", err)
	}
	defer f.Close()

	return workflow.LoadLabels(f)
}
