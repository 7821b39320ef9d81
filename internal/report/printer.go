package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/vk/originci/internal/build"
	"github.com/vk/originci/internal/retry"
	"github.com/vk/originci/internal/scheduler"
)

// Printer writes human readable tables.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter returns a printer writing to w. Colors are used only when
// useColor is set.
func NewPrinter(w io.Writer, useColor bool) *Printer {
	return &Printer{w: w, color: useColor}
}

func (p *Printer) style(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (p *Printer) table(headers ...interface{}) table.Table {
	headerFmt := p.style(color.FgGreen, color.Bold).SprintfFunc()
	columnFmt := p.style(color.FgYellow).SprintfFunc()

	tbl := table.New(headers...).WithWriter(p.w)
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)
	return tbl
}

func (p *Printer) title(s string) {
	fmt.Fprintf(p.w, "\n%s\n", p.style(color.Bold).Sprint(s))
}

// Plan prints the build phases and prerequisites of plan.
func (p *Printer) Plan(plan *scheduler.Plan) {
	p.title("Build phases")
	tbl := p.table("Phase", "Packages")
	for i, phase := range plan.Phases {
		tbl.AddRow(i+1, strings.Join(phase.Names(), ", "))
	}
	tbl.Print()

	p.list("Installing prerequisites", plan.ExternalPrereqs)
	p.list("Excluded RPM prerequisites", plan.ExcludedPrereqs)
	p.list("Packages that are prereqs for later phases", plan.LaterPhasePrereqs)
}

func (p *Printer) list(title string, items []string) {
	if len(items) == 0 {
		return
	}
	p.title(title)
	for _, item := range items {
		fmt.Fprintf(p.w, "  %s\n", item)
	}
}

// Build prints one row per package result.
func (p *Printer) Build(results *build.Results) {
	p.title("Build results")
	tbl := p.table("Package", "Phase", "Status", "Attempts", "Installed", "Error")
	for _, res := range results.Packages {
		errText := ""
		if res.Err != nil {
			errText = firstLine(res.Err.Error())
		}
		tbl.AddRow(res.Package.Name, res.Phase, p.status(res.Status), res.Attempts, res.Installed, errText)
	}
	tbl.Print()
}

func (p *Printer) status(s build.Status) string {
	switch s {
	case build.StatusBuilt, build.StatusRetagged:
		return p.style(color.FgGreen).Sprint(string(s))
	case build.StatusDepsInstalled:
		return p.style(color.FgYellow).Sprint(string(s))
	default:
		return p.style(color.FgRed).Sprint(string(s))
	}
}

// Tests prints the run summary, the retry passes and any unresolved
// failures with the command that reproduces each.
func (p *Printer) Tests(r *retry.Report) {
	p.title("Test run " + r.RunID)
	summary := p.table("Units", "Threshold", "Initial failures", "Retry passes", "Unresolved", "Duration")
	summary.AddRow(r.Units, r.Threshold, len(r.Initial), len(r.Passes), len(r.Unresolved), r.Duration.Round(time.Second))
	summary.Print()

	if len(r.Passes) > 0 {
		p.title("Retry passes")
		passes := p.table("Pass", "Ran", "Failures", "Duration")
		for _, pass := range r.Passes {
			passes.AddRow(pass.Number, pass.Ran, len(pass.Failures), pass.Duration.Round(time.Second))
		}
		passes.Print()
	}

	if !r.Failed() {
		fmt.Fprintln(p.w, p.style(color.FgGreen, color.Bold).Sprint("\nAll tests passed"))
		return
	}
	fmt.Fprintln(p.w, p.style(color.FgRed, color.Bold).Sprint("\nUnresolved failures"))
	tbl := p.table("Title", "Command")
	for _, f := range r.Unresolved {
		tbl.AddRow(f.Title, f.Command)
	}
	tbl.Print()
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
