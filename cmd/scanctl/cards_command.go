package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/export"
)

type cardsPage struct {
	Cards []*domain.Card `json:"cards"`
	Total int            `json:"total"`
}

func newCardsCommand(ctx *commandContext) *cobra.Command {
	var query string
	var folder string

	cmd := &cobra.Command{
		Use:   "cards",
		Short: "List the cards stored on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, cancel := ctx.commandCtx(cmd)
			defer cancel()

			params := url.Values{}
			if query != "" {
				params.Set("q", query)
			}
			if folder != "" {
				params.Set("folder", folder)
			}
			path := "/api/cards"
			if len(params) > 0 {
				path += "?" + params.Encode()
			}

			var page cardsPage
			if _, _, err := ctx.api().do(runCtx, http.MethodGet, path, nil, &page); err != nil {
				return err
			}
			if ctx.jsonOutput {
				return writeJSON(cmd, page)
			}

			rows := make([][]string, 0, len(page.Cards))
			for _, c := range page.Cards {
				price := ""
				if c.Price != nil {
					price = strconv.FormatFloat(*c.Price, 'f', 2, 64)
				}
				added := ""
				if !c.DateAdded.IsZero() {
					added = c.DateAdded.Format(export.DateLayout)
				}
				rows = append(rows, []string{c.Name, c.Year, c.Set, c.CardNumber, price, added})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Year", "Set", "Number", "Price", "Added"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d cards\n", page.Total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Case-insensitive search over name, set and team")
	cmd.Flags().StringVar(&folder, "folder", "", "Only cards in this folder id")
	return cmd
}
