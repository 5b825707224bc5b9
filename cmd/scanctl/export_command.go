package main

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/scanvault/internal/export"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the collection as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, cancel := ctx.commandCtx(cmd)
			defer cancel()

			data, header, err := ctx.api().do(runCtx, http.MethodGet, "/api/export.csv", nil, nil)
			if err != nil {
				return err
			}

			switch output {
			case "-":
				_, err := cmd.OutOrStdout().Write(data)
				return err
			case "":
				output = attachmentName(header.Get("Content-Disposition"))
			default:
				if info, err := os.Stat(output); err == nil && info.IsDir() {
					output = filepath.Join(output, attachmentName(header.Get("Content-Disposition")))
				}
			}

			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported collection to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory (\"-\" for stdout, default: server provided name)")
	return cmd
}

// attachmentName reads the filename the server suggested, falling back to a
// locally generated one.
func attachmentName(disposition string) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := filepath.Base(params["filename"]); name != "." && name != "/" && name != "" {
			return name
		}
	}
	return export.FileName(timeNow())
}
