package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/reviser/internal/component"
)

const hookName = "post-commit"

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage the git post-commit hook that refreshes commit-cache files",
}

var hookInstallCmd = &cobra.Command{
	Use:   "install [component...]",
	Short: "Install a post-commit hook writing each component's commit-cache file",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newHost()
		if err != nil {
			fail(err)
			return nil
		}
		names, err := hookTargets(h, args)
		if err != nil {
			fail(err)
			return nil
		}

		for _, name := range names {
			hookPath, err := h.hookPath(cmd, name)
			if err != nil {
				fail(err)
				return nil
			}
			cachePath, _ := h.src.RootFile(name, h.src.CacheFile())
			section := generateHookScript(name, cachePath)

			existing, err := os.ReadFile(hookPath)
			if err != nil && !os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "Error reading hook file: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}

			var content string
			if os.IsNotExist(err) || len(existing) == 0 {
				content = "#!/bin/sh\n" + section
			} else {
				content = replaceHookSection(string(existing), name, section)
			}

			if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
				fmt.Fprintf(os.Stderr, "Error creating hooks directory: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing hook file: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			fmt.Fprintf(os.Stdout, "Installed %s hook for %s at %s\n", hookName, name, hookPath)
		}
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall [component...]",
	Short: "Remove reviser sections from post-commit hooks",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newHost()
		if err != nil {
			fail(err)
			return nil
		}
		names, err := hookTargets(h, args)
		if err != nil {
			fail(err)
			return nil
		}

		for _, name := range names {
			hookPath, err := h.hookPath(cmd, name)
			if err != nil {
				fail(err)
				return nil
			}

			existing, err := os.ReadFile(hookPath)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Fprintf(os.Stdout, "No %s hook found for %s.\n", hookName, name)
					continue
				}
				fmt.Fprintf(os.Stderr, "Error reading hook file: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}

			content := removeHookSection(string(existing), name)

			// If only shebang (and whitespace) remains, delete the file entirely
			trimmed := strings.TrimSpace(content)
			if trimmed == "" || trimmed == "#!/bin/sh" || trimmed == "#!/bin/bash" {
				if err := os.Remove(hookPath); err != nil {
					fmt.Fprintf(os.Stderr, "Error removing hook file: %v\n", err)
					exitCode = ExitRuntimeError
					return nil
				}
				fmt.Fprintf(os.Stdout, "Removed %s hook at %s\n", hookName, hookPath)
				continue
			}

			if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing hook file: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			fmt.Fprintf(os.Stdout, "Removed reviser section for %s from %s\n", name, hookPath)
		}
		return nil
	},
}

// hookTargets returns the named components, or every tracked one when none
// are named. Only trackable components have a commit-cache file.
func hookTargets(h *host, args []string) ([]string, error) {
	if len(args) == 0 {
		return h.reg.Tracked(), nil
	}
	for _, name := range args {
		if !h.reg.IsTrackable(name) {
			return nil, fmt.Errorf("%w: %s is not tracked", component.ErrUnknownComponent, name)
		}
	}
	return args, nil
}

func (h *host) hookPath(cmd *cobra.Command, name string) (string, error) {
	root, _ := h.reg.RootDir(name)
	dir, err := h.git.HooksDir(cmd.Context(), root)
	if err != nil {
		return "", fmt.Errorf("%s: not a git repository: %w", name, err)
	}
	return filepath.Join(dir, hookName), nil
}

func hookMarkers(name string) (start, end string) {
	return "# >>> reviser post-commit hook (" + name + ") >>>",
		"# <<< reviser post-commit hook (" + name + ") <<<"
}

func generateHookScript(name, cachePath string) string {
	start, end := hookMarkers(name)
	var b strings.Builder
	b.WriteString(start + "\n")
	b.WriteString(fmt.Sprintf("git log -1 --format=%%h --abbrev=7 > %s || true\n", shellQuote(cachePath)))
	b.WriteString(end + "\n")
	return b.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func replaceHookSection(existing, name, section string) string {
	start, end := hookMarkers(name)
	startIdx := strings.Index(existing, start)
	endIdx := strings.Index(existing, end)

	if startIdx == -1 || endIdx == -1 {
		// No existing section for this component, append
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(end):]
	// Trim leading newline from after to avoid double newlines
	after = strings.TrimPrefix(after, "\n")
	return before + section + after
}

func removeHookSection(existing, name string) string {
	start, end := hookMarkers(name)
	startIdx := strings.Index(existing, start)
	endIdx := strings.Index(existing, end)

	if startIdx == -1 || endIdx == -1 {
		return existing
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(end):]
	after = strings.TrimPrefix(after, "\n")

	return before + after
}

func init() {
	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
}
