package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/reviser/internal/commit"
	"github.com/dshills/reviser/internal/reconcile"
	"github.com/dshills/reviser/internal/tracker"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show declared, observed and recorded commits without changing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newHost()
		if err != nil {
			fail(err)
			return nil
		}
		rows := h.statusRows(cmd.Context())
		writeStatus(os.Stdout, h, rows)
		return nil
	},
}

type statusRow struct {
	name     string
	role     string
	declared string
	observed string
	current  string
	recorded string
	repo     string
	changed  bool
}

// statusRows resolves every registered component. It uses a reconciler with
// patching disabled so status never writes.
func (h *host) statusRows(ctx context.Context) []statusRow {
	readOnly := reconcile.New(h.src, nil, reconcile.Options{Development: h.cfg.Development})
	app, _ := h.reg.App()

	var rows []statusRow
	for _, name := range h.orderedNames() {
		r := statusRow{name: name, role: "component"}
		switch {
		case name == h.reg.Base():
			r.role = "base"
		case name == app:
			r.role = "application"
		}

		rec, _ := h.reg.Lookup(name)
		if meta, err := h.git.GetRepoMeta(ctx, rec.RootDir); err == nil {
			r.repo = meta.Branch + "@" + meta.Head
		} else {
			r.repo = "-"
		}

		if !h.reg.IsTrackable(name) {
			r.declared, r.observed, r.current, r.recorded = "-", "-", "-", "-"
			rows = append(rows, r)
			continue
		}

		decl := h.src.Declared(name)
		if decl.Defined {
			r.declared = decl.ID.Display()
		} else {
			r.declared = "(none)"
		}
		r.observed = h.src.Observed(ctx, name).Display()

		current := readOnly.Current(ctx, name)
		r.current = current.Display()

		prev, had, err := h.store.Get(tracker.Key(name))
		switch {
		case err != nil:
			r.recorded = "(unreadable)"
		case !had:
			r.recorded = "(none)"
		default:
			r.recorded = commit.ID(prev).Display()
		}
		r.changed = current.Known() && (!had || commit.ID(prev) != current)
		rows = append(rows, r)
	}
	return rows
}

// orderedNames lists tracked components first, then the rest by name.
func (h *host) orderedNames() []string {
	names := h.reg.Tracked()
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, n := range h.reg.Names() {
		if !seen[n] {
			names = append(names, n)
		}
	}
	return names
}

func writeStatus(w io.Writer, h *host, rows []statusRow) {
	mode := "production"
	if h.cfg.Development {
		mode = "development"
	}
	fmt.Fprintf(w, "%s %s\n\n", titleStyle.Render("reviser status"), mutedStyle.Render("("+mode+")"))

	headers := []string{"COMPONENT", "ROLE", "DECLARED", "OBSERVED", "CURRENT", "RECORDED", "REPO"}
	widths := make([]int, len(headers))
	for i, hd := range headers {
		widths[i] = len(hd)
	}
	for _, r := range rows {
		for i, v := range r.cells() {
			if len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
	}

	var b strings.Builder
	for i, hd := range headers {
		b.WriteString(cell(headerStyle, hd, widths[i]+2))
	}
	fmt.Fprintln(w, strings.TrimRight(b.String(), " "))

	for _, r := range rows {
		b.Reset()
		for i, v := range r.cells() {
			style := mutedStyle
			switch {
			case i == 0:
				style = nameStyle
			case i == 4 && r.changed:
				style = warningStyle
			case i == 4:
				style = successStyle
			}
			b.WriteString(cell(style, v, widths[i]+2))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

func (r statusRow) cells() []string {
	return []string{r.name, r.role, r.declared, r.observed, r.current, r.recorded, r.repo}
}
