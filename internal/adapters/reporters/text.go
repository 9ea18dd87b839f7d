package reporters

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/corey/lintpipe/internal/ports"
)

// Colors follow the CLI palette.
const (
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
	colorSuccess = lipgloss.Color("#10B981")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPath    = lipgloss.Color("#3B82F6")
)

// palette is the set of styles one reporter renders with. Styles come from a
// renderer bound to the output writer, so a non-terminal writer gets plain
// text.
type palette struct {
	err, warn, ok, muted, path lipgloss.Style
}

func newPalette(out io.Writer) palette {
	r := lipgloss.NewRenderer(out)
	return palette{
		err:   r.NewStyle().Bold(true).Foreground(colorError),
		warn:  r.NewStyle().Foreground(colorWarning),
		ok:    r.NewStyle().Foreground(colorSuccess),
		muted: r.NewStyle().Foreground(colorMuted),
		path:  r.NewStyle().Underline(true).Foreground(colorPath),
	}
}

func (p palette) level(l ports.Level) lipgloss.Style {
	if l == ports.LevelError {
		return p.err
	}
	return p.warn
}

// Default prints one block per path followed by a one-line summary:
//
//	  ✗ src/app.coffee
//	     ✗ #3: Line contains tab indentation.
//	     ⚡ #7: Line exceeds maximum allowed length Length is 95, max is 80.
//
//	✗ Lint! 1 error and 1 warning in 1 file
type Default struct {
	out io.Writer
	p   palette
}

// NewDefault creates a Default reporter writing to out.
func NewDefault(out io.Writer) *Default {
	return &Default{out: out, p: newPalette(out)}
}

// Publish implements ports.Reporter.
func (d *Default) Publish(r *ports.Report) error {
	var sb strings.Builder
	for _, path := range r.SortedPaths() {
		diags := r.Paths[path]
		mark := d.p.ok.Render("✓")
		if r.HasError(path) {
			mark = d.p.err.Render("✗")
		} else if len(diags) > 0 {
			mark = d.p.warn.Render("⚡")
		}
		fmt.Fprintf(&sb, "  %s %s\n", mark, path)

		for _, diag := range diags {
			sym := "⚡"
			if diag.Level == ports.LevelError {
				sym = "✗"
			}
			line := fmt.Sprintf("#%d", diag.LineNumber)
			if diag.LineNumberEnd > diag.LineNumber {
				line = fmt.Sprintf("#%d-%d", diag.LineNumber, diag.LineNumberEnd)
			}
			msg := diag.Message
			if diag.Context != "" {
				msg += " " + diag.Context
			}
			fmt.Fprintf(&sb, "     %s %s: %s.\n", d.p.level(diag.Level).Render(sym), line, msg)
		}
	}

	errs, warns, files := counts(r)
	summary := fmt.Sprintf("%d %s and %d %s in %d %s",
		errs, plural(errs, "error"), warns, plural(warns, "warning"), files, plural(files, "file"))
	switch {
	case errs > 0:
		fmt.Fprintf(&sb, "\n%s %s\n", d.p.err.Render("✗ Lint!"), summary)
	case warns > 0:
		fmt.Fprintf(&sb, "\n%s %s\n", d.p.warn.Render("⚡ Warning!"), summary)
	default:
		fmt.Fprintf(&sb, "\n%s %s\n", d.p.ok.Render("✓ Ok!"), summary)
	}

	_, err := io.WriteString(d.out, sb.String())
	return err
}

// Stylish prints a compact table per path, then totals:
//
//	src/app.coffee
//	  line 3  ✖  Line contains tab indentation  no_tabs
//
//	 ✖ 1 error
type Stylish struct {
	out io.Writer
	p   palette
}

// NewStylish creates a Stylish reporter writing to out.
func NewStylish(out io.Writer) *Stylish {
	return &Stylish{out: out, p: newPalette(out)}
}

// Publish implements ports.Reporter.
func (s *Stylish) Publish(r *ports.Report) error {
	var sb strings.Builder
	for _, path := range r.SortedPaths() {
		diags := r.Paths[path]
		if len(diags) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n%s\n", s.p.path.Render(path))

		width := 0
		for _, d := range diags {
			if n := len(fmt.Sprint(d.LineNumber)); n > width {
				width = n
			}
		}
		for _, d := range diags {
			sym := "⚠"
			if d.Level == ports.LevelError {
				sym = "✖"
			}
			msg := d.Message
			if d.Context != "" {
				msg += " " + d.Context
			}
			fmt.Fprintf(&sb, "  %s  %s  %s  %s\n",
				s.p.muted.Render(fmt.Sprintf("line %-*d", width, d.LineNumber)),
				s.p.level(d.Level).Render(sym),
				msg,
				s.p.muted.Render(d.Rule))
		}
	}

	errs, warns, _ := counts(r)
	if errs+warns > 0 {
		sb.WriteString("\n")
	}
	if errs > 0 {
		fmt.Fprintf(&sb, " %s %d %s\n", s.p.err.Render("✖"), errs, plural(errs, "error"))
	}
	if warns > 0 {
		fmt.Fprintf(&sb, " %s %d %s\n", s.p.warn.Render("⚠"), warns, plural(warns, "warning"))
	}

	_, err := io.WriteString(s.out, sb.String())
	return err
}
