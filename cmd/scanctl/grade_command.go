package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/recognition"
)

func newGradeCommand(ctx *commandContext) *cobra.Command {
	var back string
	var mode string

	cmd := &cobra.Command{
		Use:   "grade <front-image>",
		Short: "Grade a card from its front (and optional back) image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			front, err := loadImage(args[0])
			if err != nil {
				return err
			}
			var backImg *recognition.Image
			if strings.TrimSpace(back) != "" {
				img, err := loadImage(back)
				if err != nil {
					return err
				}
				backImg = &img
			}

			res, err := ctx.newResolver()
			if err != nil {
				return err
			}

			runCtx, cancel := ctx.commandCtx(cmd)
			defer cancel()

			report, err := res.Grade(runCtx, front, backImg, domain.ConditionMode(strings.ToLower(strings.TrimSpace(mode))))
			if err != nil {
				return err
			}
			if ctx.jsonOutput {
				return writeJSON(cmd, report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&back, "back", "", "Back image file or URL")
	cmd.Flags().StringVar(&mode, "mode", string(domain.ConditionEbay), "Condition scale (ebay, psa, bgs, sgc, cgc)")
	return cmd
}

func printReport(w io.Writer, r *domain.GradingReport) {
	var rows [][]string
	add := func(section, metric, value string) {
		if value != "" {
			rows = append(rows, []string{section, metric, value})
		}
	}
	if g := r.Grade; g != nil {
		add("grade", "corners", score(g.Corners))
		add("grade", "edges", score(g.Edges))
		add("grade", "surface", score(g.Surface))
		add("grade", "centering", score(g.Centering))
		add("grade", "final", score(g.Final))
		add("grade", "condition", g.Condition)
	}
	if c := r.Condition; c != nil {
		add("condition", "label", c.Label)
		if c.ScaleValue != nil && c.MaxScaleValue != nil {
			add("condition", "scale", score(c.ScaleValue)+"/"+score(c.MaxScaleValue))
		} else {
			add("condition", "scale", score(c.ScaleValue))
		}
		add("condition", "mode", c.Mode)
	}
	if c := r.Centering; c != nil {
		add("centering", "score", score(c.Centering))
		add("centering", "left/right", c.LeftRight)
		add("centering", "top/bottom", c.TopBottom)
	}
	if len(rows) > 0 {
		fmt.Fprintln(w, renderTable([]string{"Section", "Metric", "Value"}, rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight}))
	}

	sections := make([]string, 0, len(r.Errors))
	for s := range r.Errors {
		sections = append(sections, s)
	}
	sort.Strings(sections)
	for _, s := range sections {
		fmt.Fprintf(w, "%s failed: %s\n", s, r.Errors[s])
	}
}

func score(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
