package cli

import (
	"os"

	"github.com/spf13/cobra"
)

type App struct {
	Dir string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "mirador",
		Short:        "Mirador outliner TUI with mirror edges and mouse drag-and-drop",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("MIRADOR_DIR", ""), "Workspace directory (default: discovered from the working directory)")

	cmd.AddCommand(newDocCmd(app))
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
