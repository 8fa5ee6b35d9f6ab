package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newSummaryCommand(ctx context.Context, d Deps) *cobra.Command {
	return &cobra.Command{
		Use:     "summary [YYYY-MM]",
		Aliases: []string{"s"},
		Short:   "Print a monthly financial summary",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month := ""
			if len(args) > 0 {
				month = args[0]
			}
			return runSummary(ctx, d, cmd.OutOrStdout(), month)
		},
	}
}

func runSummary(ctx context.Context, d Deps, out io.Writer, month string) error {
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	income, expenses, err := d.Analytics.MonthlyTotals(ctx, month)
	if err != nil {
		return err
	}
	net := income.Add(expenses)
	netWorth, err := d.Analytics.NetWorth(ctx)
	if err != nil {
		return err
	}
	spending, err := d.Analytics.SpendingByCategory(ctx, month)
	if err != nil {
		return err
	}
	count, err := d.Transactions.Count(ctx)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	netColor := green
	if net.IsNegative() {
		netColor = red
	}

	fmt.Fprintf(out, "BudgeTUI - %s\n", month)
	fmt.Fprintln(out, strings.Repeat("─", 40))
	fmt.Fprintf(out, "  Income:     %s\n", green.Sprintf("$%s", income.StringFixed(2)))
	fmt.Fprintf(out, "  Expenses:   %s\n", red.Sprintf("$%s", expenses.Abs().StringFixed(2)))
	fmt.Fprintf(out, "  Net:        %s\n", netColor.Sprintf("$%s", net.StringFixed(2)))
	fmt.Fprintf(out, "  Net Worth:  $%s\n", netWorth.StringFixed(2))
	fmt.Fprintf(out, "  Total Txns: %d\n", count)

	if len(spending) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Spending by Category:")
		for _, cs := range spending {
			fmt.Fprintf(out, "  %-24s $%s\n", cs.Category, cs.Total.Abs().StringFixed(2))
		}
	}
	return nil
}
