package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShaneMarusczak/budgetui/internal/service"
)

func newExportCommand(ctx context.Context, d Deps) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Export transactions to CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runExport(ctx, d, cmd.OutOrStdout(), path, month)
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to export as YYYY-MM (default: current)")

	return cmd
}

func runExport(ctx context.Context, d Deps, out io.Writer, path, month string) error {
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	if path == "" {
		path = service.DefaultExportPath(month)
	} else {
		path = service.ExpandPath(path)
	}
	n, err := d.Export.Export(ctx, path, month)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintf(out, "No transactions for %s\n", month)
		return nil
	}
	fmt.Fprintf(out, "Exported %d transactions to %s\n", n, path)
	return nil
}
