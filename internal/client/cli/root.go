package cli

import (
	"github.com/dmitrijs2005/notesum/internal/client/config"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the notesum client command. Flags override the
// defaults and the JSON file already loaded into cfg.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	var jsonConfig string

	cmd := &cobra.Command{
		Use:           "notesum",
		Short:         "Terminal client for the notesum note summary service",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := NewApp(cfg)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.ServerURL, "server", "s", cfg.ServerURL, "base URL of the notesum API")
	f.DurationVarP(&cfg.RequestTimeout, "timeout", "t", cfg.RequestTimeout, "timeout of a single API call")
	f.DurationVar(&cfg.OnlineCheckInterval, "online-check", cfg.OnlineCheckInterval, "server probe interval, 0 disables it")
	f.StringVar(&cfg.StateFile, "state", cfg.StateFile, "SQLite file keeping the session and the draft")
	f.StringVar(&cfg.ExportDir, "export-dir", cfg.ExportDir, "directory for exported summaries")
	// read by config.LoadConfig before cobra runs; declared so it parses
	f.StringVarP(&jsonConfig, "config", "c", "", "JSON config file")

	return cmd
}
