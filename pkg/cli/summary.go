package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func stepMark(status model.StepStatus) string {
	switch status {
	case model.StepSucceeded:
		return green("done")
	case model.StepFailed:
		return yellow("warn")
	default:
		return gray("skip")
	}
}

// printSummary writes the outcome of a publication. Failed best-effort steps
// are listed as warnings.
func printSummary(w io.Writer, result *model.PublishResult) {
	fmt.Fprintf(w, "%s %s %s\n", bold("Released"), result.Repository.FullName(), bold(result.Version.TagName()))
	if result.Release != nil && result.Release.HTMLURL != "" {
		fmt.Fprintf(w, "  %s\n", result.Release.HTMLURL)
	}

	fmt.Fprintln(w)
	for _, s := range result.Steps {
		line := fmt.Sprintf("  [%s] %s", stepMark(s.Status), s.Name)
		if s.Detail != "" {
			line += " " + gray(s.Detail)
		}
		fmt.Fprintln(w, line)
	}

	if len(result.Artifacts) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, bold("Artifacts"))
		for _, a := range result.Artifacts {
			fmt.Fprintf(w, "  %s %s\n", a.Name, gray(fmt.Sprintf("(%d bytes, sha256:%s)", a.Size, a.SHA256)))
		}
	}

	if warnings := result.Warnings(); len(warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, yellow(fmt.Sprintf("%d best-effort step(s) failed; the release itself succeeded", len(warnings))))
	}

	if d := result.FinishedAt.Sub(result.StartedAt); !result.StartedAt.IsZero() && d > 0 {
		fmt.Fprintf(w, "%s\n", gray(fmt.Sprintf("finished in %s", d.Round(100*time.Millisecond))))
	}
}
