package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zoobzio/capitan"
)

const version = "0.1.0"

// Exit codes
const (
	ExitSuccess      = 0
	ExitChanged      = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitRuntimeError = 4
)

// Global flags
var (
	flagManifest    string
	flagDevelopment bool
	flagNoPatch     bool
	flagCacheFile   string
	flagStateDir    string
	flagLogLevel    string
	flagOnRevised   string
)

var rootCmd = &cobra.Command{
	Use:   "reviser",
	Short: "Detect commit revisions of tracked components",
	Long: "Reviser resolves the current commit of each tracked component, compares it " +
		"against the last recorded value, and notifies once per change.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	// Drain pending signal deliveries before the process exits
	defer capitan.Shutdown()

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print reviser version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "reviser version %s\n", version)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagManifest, "manifest", "m", "", "Component manifest (yaml, toml or json)")
	pf.BoolVar(&flagDevelopment, "dev", false, "Development mode: probe cache files and git for the observed commit")
	pf.BoolVar(&flagNoPatch, "no-patch", false, "Do not rewrite declaration files in development mode")
	pf.StringVar(&flagCacheFile, "cache-file", "", "Commit-cache file name inside each component root")
	pf.StringVar(&flagStateDir, "state-dir", "", "Directory for persisted commits")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flagOnRevised, "on-revised", "", "Shell command to run for each revised component")
}

// buildOverrides returns config overrides for the flags that were set.
func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagManifest != "" {
		m["manifest"] = flagManifest
	}
	if flagDevelopment {
		m["development"] = "true"
	}
	if flagNoPatch {
		m["patchSource"] = "false"
	}
	if flagCacheFile != "" {
		m["cacheFile"] = flagCacheFile
	}
	if flagStateDir != "" {
		m["stateDir"] = flagStateDir
	}
	if flagLogLevel != "" {
		m["logLevel"] = flagLogLevel
	}
	if flagOnRevised != "" {
		m["onRevised"] = flagOnRevised
	}
	return m
}
