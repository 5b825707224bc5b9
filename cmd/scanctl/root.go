package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/scanvault/internal/version"
)

func newRootCommand() *cobra.Command {
	ctx := newCommandContext()

	rootCmd := &cobra.Command{
		Use:           "scanctl",
		Short:         "ScanVault operator CLI",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Same .env the service reads; real environment variables win.
			_ = godotenv.Load()
			ctx.applyEnvDefaults(cmd)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&ctx.server, "server", "", "ScanVault server URL (env SCANVAULT_SERVER, default http://localhost:8080)")
	flags.StringVar(&ctx.recognitionURL, "recognition-url", "", "Recognition service base URL (env SCANVAULT_RECOGNITION_URL)")
	flags.StringVar(&ctx.token, "token", "", "Recognition token (env SCANVAULT_RECOGNITION_TOKEN)")
	flags.StringVar(&ctx.lang, "lang", "", "Language hint sent to the recognition service (env SCANVAULT_LANG)")
	flags.DurationVar(&ctx.timeout, "timeout", defaultTimeout, "Timeout for the whole command")
	flags.BoolVarP(&ctx.verbose, "verbose", "v", false, "Log every resolver step")
	flags.BoolVar(&ctx.jsonOutput, "json", false, "Print raw JSON instead of a summary")

	rootCmd.AddCommand(newIdentifyCommand(ctx))
	rootCmd.AddCommand(newGradeCommand(ctx))
	rootCmd.AddCommand(newCardsCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newTokenCommand(ctx))

	return rootCmd
}
