package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// ProgressBar shows how many test cases have been exported.
type ProgressBar struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func NewProgressBar(w io.Writer) *ProgressBar {
	return &ProgressBar{w: w}
}

// Start creates the bar once the total is known.
func (p *ProgressBar) Start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.CyanString("Exporting test cases")),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(p.w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func (p *ProgressBar) Increment() {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *ProgressBar) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Summary prints the closing line of a run.
func Summary(w io.Writer, project string, exported, rows int, ignored []string) {
	fmt.Fprintf(w, "%s Project %s. Total test cases exported: %d\n",
		color.GreenString("Success!"), project, exported)
	fmt.Fprintf(w, "  rows written: %d\n", rows)
	if len(ignored) > 0 {
		fmt.Fprintf(w, "  %s %v\n", color.YellowString("custom fields ignored:"), ignored)
	}
}
