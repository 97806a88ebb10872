package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/reviser/internal/tracker"
)

var (
	flagFailOnChange bool
	flagJSON         bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check tracked components once and record their commits",
	Long: "Check resolves the current commit of the base component and the application " +
		"component, notifies for each one that changed since the last run, and records it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newHost()
		if err != nil {
			fail(err)
			return nil
		}

		fired, err := h.tracker(h.sinks()).Run(cmd.Context())
		if werr := writeTransitions(os.Stdout, fired, flagJSON); werr != nil {
			fail(werr)
			return nil
		}
		if err != nil {
			fail(err)
			return nil
		}
		if flagFailOnChange && len(fired) > 0 {
			exitCode = ExitChanged
		}
		return nil
	},
}

type transitionView struct {
	Component string    `json:"component"`
	Commit    string    `json:"commit"`
	Previous  *string   `json:"previous"`
	At        time.Time `json:"at"`
}

func writeTransitions(w io.Writer, fired []tracker.Transition, asJSON bool) error {
	if asJSON {
		views := make([]transitionView, 0, len(fired))
		for _, t := range fired {
			v := transitionView{Component: t.Component, Commit: t.Current.String(), At: t.At}
			if t.HadPrevious {
				prev := t.Previous.String()
				v.Previous = &prev
			}
			views = append(views, v)
		}
		data, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	if len(fired) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("No changes."))
		return err
	}
	for _, t := range fired {
		if _, err := fmt.Fprintf(w, "%s %s\n", warningStyle.Render("revised"), t); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	checkCmd.Flags().BoolVar(&flagFailOnChange, "fail-on-change", false, "Exit 1 when any component changed")
	checkCmd.Flags().BoolVar(&flagJSON, "json", false, "Write transitions as JSON")
}
