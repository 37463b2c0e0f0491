package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mirador/internal/outline"
)

func newDocCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Inspect the stored outline",
	}
	cmd.AddCommand(newDocDumpCmd(app))
	return cmd
}

func newDocDumpCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the stored outline as an indented tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := resolveStore(app)
			if !ok {
				return errors.New("no workspace found; pass --dir or run inside one")
			}
			doc, err := s.LoadDoc(context.Background())
			if err != nil {
				return err
			}
			dumpDoc(cmd.OutOrStdout(), doc)
			return nil
		},
	}
}

func dumpDoc(w io.Writer, doc *outline.Doc) {
	for _, row := range doc.BuildRows("", nil) {
		marker := "-"
		if row.SourceEdgeID != row.CanonicalEdgeID {
			marker = "~" // mirror edge
		}
		fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", row.Depth), marker, row.Text)
	}
}
