package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nymkash-gerel/temuulel-app-sub002/internal/workflow"
)

var errRejected = errors.New("transition rejected")

func (a *app) entitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List entity types with a workflow",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			for _, e := range a.registry.Entities() {
				fmt.Fprintln(a.out, e)
			}
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show <entity>",
		Short:   "Print the transition table of an entity type",
		Example: "  workflowctl show repair_order",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			wf, err := a.workflow(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(a.out, a.styles.title.Render(string(wf.Entity())))

			for _, s := range wf.States() {
				if wf.IsTerminal(s) {
					fmt.Fprintf(a.out, "  %s %s\n", s, a.styles.terminal.Render("(terminal)"))
					continue
				}

				successors := wf.Successors(s)

				next := make([]string, len(successors))
				for i, n := range successors {
					next[i] = string(n)
				}

				fmt.Fprintf(a.out, "  %s -> %s\n", s, strings.Join(next, ", "))
			}

			return nil
		},
	}
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "validate <entity> <from> <to>",
		Short:   "Check whether a status change is allowed",
		Example: "  workflowctl validate reservation confirmed checked_in",
		Args:    cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			wf, err := a.workflow(args[0])
			if err != nil {
				return err
			}

			result := workflow.Validate(wf, workflow.State(args[1]), workflow.State(args[2]))
			if !result.Valid {
				fmt.Fprintf(a.out, "%s %s %s\n",
					a.styles.fail.Render("✗"), result.Err.Error(), a.styles.faint.Render("("+string(result.Err.Reason)+")"))

				return errRejected
			}

			fmt.Fprintf(a.out, "%s %s -> %s\n", a.styles.ok.Render("✓"), args[1], args[2])

			return nil
		},
	}
}

func (a *app) actionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "actions <entity> <status>",
		Short:   "List the actions available from a status",
		Example: "  workflowctl actions laundry_order drying --labels labels.csv",
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			wf, err := a.workflow(args[0])
			if err != nil {
				return err
			}

			labels, err := a.labels()
			if err != nil {
				return err
			}

			actions := workflow.NextActions(wf, workflow.State(args[1]), labels)
			if len(actions) == 0 {
				fmt.Fprintln(a.out, a.styles.faint.Render("no actions available"))
				return nil
			}

			for _, act := range actions {
				fmt.Fprintf(a.out, "%s\t%s\n", act.State, act.Label)
			}

			return nil
		},
	}
}
