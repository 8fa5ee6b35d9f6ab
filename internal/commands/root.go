// Package commands is the headless CLI surface. Every subcommand runs on
// the same repositories and services as the TUI, so imports and exports
// behave identically whichever way they are invoked.
package commands

import (
	"context"
	"database/sql"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ShaneMarusczak/budgetui/internal/config"
	"github.com/ShaneMarusczak/budgetui/internal/database/repository"
	"github.com/ShaneMarusczak/budgetui/internal/service"
	"github.com/ShaneMarusczak/budgetui/internal/tui"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Deps carries the wired repositories and services into the command tree.
type Deps struct {
	Cfg config.Config
	DB  *sql.DB

	Accounts     *repository.AccountRepo
	Categories   *repository.CategoryRepo
	Transactions *repository.TransactionRepo
	Rules        *repository.RuleRepo
	Budgets      *repository.BudgetRepo
	Runs         *repository.ImportRunRepo
	Analytics    *repository.AnalyticsRepo

	Import      *service.ImportService
	Export      *service.ExportService
	Maintenance *service.MaintenanceService

	Log zerolog.Logger
}

// NewRootCommand builds the budgetui command tree. Running the root with no
// subcommand launches the interactive TUI.
func NewRootCommand(ctx context.Context, d Deps) *cobra.Command {
	root := &cobra.Command{
		Use:     "budgetui",
		Short:   "Local-only personal finance tracker",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(ctx, d)
		},
	}

	root.AddCommand(newImportCommand(ctx, d))
	root.AddCommand(newExportCommand(ctx, d))
	root.AddCommand(newSummaryCommand(ctx, d))
	root.AddCommand(newAccountsCommand(ctx, d))

	return root
}

func runTUI(ctx context.Context, d Deps) error {
	app := tui.New(ctx, d.Cfg, tui.Repos{
		Accounts:     d.Accounts,
		Categories:   d.Categories,
		Transactions: d.Transactions,
		Rules:        d.Rules,
		Budgets:      d.Budgets,
		Runs:         d.Runs,
		Analytics:    d.Analytics,
	}, tui.Services{
		Import:      d.Import,
		Export:      d.Export,
		Maintenance: d.Maintenance,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
