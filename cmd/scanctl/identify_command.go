package main

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/resolver"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "identify <image-file|image-url>",
		Short: "Identify a card image against the recognition service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := loadImage(args[0])
			if err != nil {
				return err
			}
			res, err := ctx.newResolver()
			if err != nil {
				return err
			}

			runCtx, cancel := ctx.commandCtx(cmd)
			defer cancel()

			outcome, err := res.Identify(runCtx, img)
			if err != nil {
				return err
			}
			if save && outcome.Identified() {
				outcome.Card.ImageURI = args[0]
				var saved domain.Card
				if _, _, err := ctx.api().do(runCtx, http.MethodPost, "/api/cards", outcome.Card, &saved); err != nil {
					return fmt.Errorf("save card: %w", err)
				}
				outcome.Card = &saved
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved card %s\n", saved.ID)
			}
			if ctx.jsonOutput {
				return writeJSON(cmd, identifyOutput{
					Identified: outcome.Identified(),
					Card:       outcome.Card,
					Strategy:   string(outcome.Strategy),
					Steps:      outcome.Steps,
				})
			}
			printOutcome(cmd.OutOrStdout(), outcome, ctx.verbose)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Add an identified card to the server's collection")
	return cmd
}

type identifyOutput struct {
	Identified bool                 `json:"identified"`
	Card       *domain.Card         `json:"card,omitempty"`
	Strategy   string               `json:"strategy,omitempty"`
	Steps      []resolver.StepTrace `json:"steps"`
}

func printOutcome(w io.Writer, outcome *resolver.Outcome, verboseSteps bool) {
	if !outcome.Identified() {
		fmt.Fprintln(w, "No card identified")
		fmt.Fprintln(w, stepsTable(outcome.Steps))
		return
	}

	c := outcome.Card
	fmt.Fprintf(w, "Card:      %s\n", c.Name)
	printField(w, "Year", c.Year)
	printField(w, "Set", c.Set)
	printField(w, "Number", c.CardNumber)
	printField(w, "Category", c.Subcategory)
	printField(w, "Team", c.Team)
	printField(w, "Rarity", c.Rarity)
	if c.Price != nil {
		printField(w, "Price", "$"+strconv.FormatFloat(*c.Price, 'f', 2, 64))
	}
	printField(w, "Grade", c.Grade)
	printField(w, "Strategy", string(outcome.Strategy))
	if verboseSteps {
		fmt.Fprintln(w, stepsTable(outcome.Steps))
	}
}

func printField(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "%-10s %s\n", label+":", value)
}

func stepsTable(steps []resolver.StepTrace) string {
	rows := make([][]string, 0, len(steps))
	for _, s := range steps {
		status := "skipped"
		if s.Called {
			status = strconv.Itoa(s.Candidates) + " candidates"
		}
		if s.Error != "" {
			status = "error: " + s.Error
		}
		rows = append(rows, []string{s.Step, string(s.Endpoint), status, s.Duration.Round(time.Millisecond).String()})
	}
	return renderTable([]string{"Step", "Endpoint", "Result", "Took"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight})
}
