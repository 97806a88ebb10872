package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/reviser/internal/config"
	"github.com/dshills/reviser/internal/store"
	"github.com/dshills/reviser/internal/tracker"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Manage persisted component commits",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show persisted commits and state statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			fail(err)
			return nil
		}
		entries, err := st.Entries()
		if err != nil {
			fail(fmt.Errorf("reading state: %w", err))
			return nil
		}
		stats, err := st.GetStats()
		if err != nil {
			fail(fmt.Errorf("reading state stats: %w", err))
			return nil
		}
		if entries == nil {
			entries = []store.Entry{}
		}
		data, err := json.MarshalIndent(struct {
			Stats   store.Stats   `json:"stats"`
			Entries []store.Entry `json:"entries"`
		}{stats, entries}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	},
}

var stateClearCmd = &cobra.Command{
	Use:   "clear [component...]",
	Short: "Forget persisted commits so the next check notifies again",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			fail(err)
			return nil
		}
		if len(args) == 0 {
			if err := st.Clear(); err != nil {
				fail(fmt.Errorf("clearing state: %w", err))
				return nil
			}
			fmt.Fprintln(os.Stdout, "State cleared.")
			return nil
		}
		for _, name := range args {
			if err := st.Delete(tracker.Key(name)); err != nil {
				fail(err)
				return nil
			}
			fmt.Fprintf(os.Stdout, "Cleared %s.\n", name)
		}
		return nil
	},
}

// openStore opens the state store without loading the manifest.
func openStore() (*store.Store, error) {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return nil, err
	}
	st, err := store.New(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("opening state: %w", err)
	}
	return st, nil
}

func init() {
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateClearCmd)
}
