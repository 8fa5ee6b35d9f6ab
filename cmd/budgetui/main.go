package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/ShaneMarusczak/budgetui/internal/commands"
	"github.com/ShaneMarusczak/budgetui/internal/config"
	"github.com/ShaneMarusczak/budgetui/internal/database"
	"github.com/ShaneMarusczak/budgetui/internal/database/repository"
	"github.com/ShaneMarusczak/budgetui/internal/logging"
	"github.com/ShaneMarusczak/budgetui/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// First run: write a starter config file for users to edit.
	if _, statErr := os.Stat(config.Path()); os.IsNotExist(statErr) {
		_ = config.Save(cfg)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	if err := database.SeedDefaults(db); err != nil {
		log.Fatalf("seed defaults: %v", err)
	}

	// The TUI owns the terminal, so application logs go to a file.
	logger, logFile, err := logging.New(cfg.Log.Path)
	if err != nil {
		log.Fatalf("open log: %v", err)
	}
	defer logFile.Close()

	// repositories
	acctRepo := repository.NewAccountRepo(db)
	catRepo := repository.NewCategoryRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	ruleRepo := repository.NewRuleRepo(db)
	budgetRepo := repository.NewBudgetRepo(db)
	runRepo := repository.NewImportRunRepo(db)

	deps := commands.Deps{
		Cfg:          cfg,
		DB:           db,
		Accounts:     acctRepo,
		Categories:   catRepo,
		Transactions: txRepo,
		Rules:        ruleRepo,
		Budgets:      budgetRepo,
		Runs:         runRepo,
		Analytics:    repository.NewAnalyticsRepo(db),
		Import:       &service.ImportService{Transactions: txRepo, Rules: ruleRepo, Runs: runRepo, Log: logger},
		Export:       &service.ExportService{Transactions: txRepo, Accounts: acctRepo, Categories: catRepo, Log: logger},
		Maintenance:  &service.MaintenanceService{DB: db},
		Log:          logger,
	}

	if err := commands.NewRootCommand(ctx, deps).Execute(); err != nil {
		os.Exit(1)
	}
}
