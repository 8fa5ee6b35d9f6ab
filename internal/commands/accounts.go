package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newAccountsCommand(ctx context.Context, d Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAccounts(ctx, d, cmd.OutOrStdout())
		},
	}
}

func runAccounts(ctx context.Context, d Deps, out io.Writer) error {
	accounts, err := d.Accounts.List(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Fprintln(out, "No accounts")
		return nil
	}
	fmt.Fprintf(out, "%-4s %-20s %-15s Institution\n", "ID", "Name", "Type")
	fmt.Fprintln(out, strings.Repeat("─", 55))
	for _, a := range accounts {
		fmt.Fprintf(out, "%-4d %-20s %-15s %s\n", a.ID, a.Name, a.AccountType, a.Institution)
	}
	return nil
}
