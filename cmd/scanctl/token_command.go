package main

import (
	"bufio"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

type tokenStatus struct {
	Configured bool   `json:"configured"`
	Source     string `json:"source"`
	Masked     string `json:"masked,omitempty"`
}

func newTokenCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the server's runtime recognition token",
	}
	cmd.AddCommand(newTokenShowCommand(ctx))
	cmd.AddCommand(newTokenSetCommand(ctx))
	cmd.AddCommand(newTokenClearCommand(ctx))
	return cmd
}

func newTokenShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show which recognition token the server uses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, cancel := ctx.commandCtx(cmd)
			defer cancel()

			var status tokenStatus
			if _, _, err := ctx.api().do(runCtx, http.MethodGet, "/api/settings/token", nil, &status); err != nil {
				return err
			}
			return printTokenStatus(cmd, ctx, status)
		},
	}
}

func newTokenSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set [token]",
		Short: "Store a runtime token (reads stdin when no argument is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read token from stdin: %w", err)
				}
				token = line
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return fmt.Errorf("token must not be empty")
			}

			runCtx, cancel := ctx.commandCtx(cmd)
			defer cancel()

			var status tokenStatus
			if _, _, err := ctx.api().do(runCtx, http.MethodPut, "/api/settings/token", map[string]string{"token": token}, &status); err != nil {
				return err
			}
			return printTokenStatus(cmd, ctx, status)
		},
	}
}

func newTokenClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the runtime token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, cancel := ctx.commandCtx(cmd)
			defer cancel()

			if _, _, err := ctx.api().do(runCtx, http.MethodDelete, "/api/settings/token", nil, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Runtime token cleared")
			return nil
		},
	}
}

func printTokenStatus(cmd *cobra.Command, ctx *commandContext, status tokenStatus) error {
	if ctx.jsonOutput {
		return writeJSON(cmd, status)
	}
	out := cmd.OutOrStdout()
	if !status.Configured {
		fmt.Fprintln(out, "No recognition token configured")
		return nil
	}
	if status.Masked != "" {
		fmt.Fprintf(out, "Token: %s (source: %s)\n", status.Masked, status.Source)
		return nil
	}
	fmt.Fprintf(out, "Token configured (source: %s)\n", status.Source)
	return nil
}
