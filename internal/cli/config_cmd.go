package cli

import (
	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := app.cfg
			return writeOut(cmd, app, map[string]any{
				"configFile":   c.Path,
				"baseUrl":      c.BaseURL,
				"timeout":      c.Timeout.String(),
				"refetchDelay": c.RefetchDelay.String(),
				"logFile":      c.LogFile,
				"format":       c.Format,
				"theme":        c.Theme,
				"glyphs":       c.Glyphs,
				"debug":        c.Debug,
				"serve": map[string]any{
					"addr": c.Serve.Addr,
					"db":   c.Serve.DB,
				},
			})
		},
	}
}
