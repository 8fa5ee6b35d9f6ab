package tui

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/ShaneMarusczak/budgetui/internal/database/repository"
)

func TestUnknownCommandSuggestsClosest(t *testing.T) {
	a := newTestApp(t)
	run(t, a, "exprot")
	require.Equal(t, "Unknown command: :exprot. Did you mean :export?", a.status)
}

func TestCommandModeTyping(t *testing.T) {
	a := newTestApp(t)
	press(t, a, ":")
	require.Equal(t, modeCommand, a.mode)
	typeString(t, a, "month")
	require.Equal(t, "month", a.commandInput)

	press(t, a, "backspace")
	require.Equal(t, "mont", a.commandInput)
	for i := 0; i < 4; i++ {
		press(t, a, "backspace")
	}
	require.Equal(t, modeNormal, a.mode)

	press(t, a, ":")
	typeString(t, a, "month")
	press(t, a, "enter")
	require.Equal(t, modeNormal, a.mode)
	require.Empty(t, a.commandInput)
	require.Equal(t, "Showing all time", a.status)
	require.Empty(t, a.currentMonth)
}

func TestMonthCommand(t *testing.T) {
	a := newTestApp(t)

	run(t, a, "month 2024-01")
	require.Equal(t, "2024-01", a.currentMonth)
	require.Equal(t, "Switched to month: 2024-01", a.status)

	run(t, a, "month 3")
	require.Equal(t, time.Now().Format("2006")+"-03", a.currentMonth)

	run(t, a, "month 13")
	require.Equal(t, "Invalid month format. Use YYYY-MM (e.g. 2024-01)", a.status)
	require.Equal(t, time.Now().Format("2006")+"-03", a.currentMonth)

	run(t, a, "month banana")
	require.Equal(t, "Invalid month format. Use YYYY-MM (e.g. 2024-01)", a.status)

	run(t, a, "month")
	require.Empty(t, a.currentMonth)
	require.Equal(t, "Showing all time", a.status)
}

func TestShiftMonth(t *testing.T) {
	a := newTestApp(t)
	a.currentMonth = "2024-03"

	run(t, a, "prev-month")
	require.Equal(t, "2024-02", a.currentMonth)
	require.Equal(t, "Month: 2024-02", a.status)

	run(t, a, "next-month")
	require.Equal(t, "2024-03", a.currentMonth)

	// H/L are bound to the same commands
	press(t, a, "H")
	require.Equal(t, "2024-02", a.currentMonth)
	press(t, a, "L")
	require.Equal(t, "2024-03", a.currentMonth)

	// December rolls into the next year
	a.currentMonth = "2024-12"
	run(t, a, "next-month")
	require.Equal(t, "2025-01", a.currentMonth)
}

func TestAccountCommand(t *testing.T) {
	a := newTestApp(t)

	run(t, a, "account")
	require.Equal(t, "Usage: :account <name> [type]. Types: checking, savings, credit, investment, cash, loan", a.status)

	run(t, a, "account Chase Sapphire credit")
	require.Equal(t, "Created account: Chase Sapphire", a.status)
	require.Len(t, a.accounts, 1)
	require.Equal(t, "Chase Sapphire", a.accounts[0].Name)
	require.Equal(t, repository.AccountCreditCard, a.accounts[0].AccountType)

	// no trailing type word means the whole string is the name
	run(t, a, "account Emergency Fund")
	require.Equal(t, "Created account: Emergency Fund", a.status)
	acct := a.accounts[0]
	if acct.Name != "Emergency Fund" {
		acct = a.accounts[1]
	}
	require.Equal(t, "Emergency Fund", acct.Name)
	require.Equal(t, repository.AccountChecking, acct.AccountType)
}

func TestRuleCommand(t *testing.T) {
	a := newTestApp(t)
	pump(t, a, a.Init())

	run(t, a, "rule amazon")
	require.Equal(t, "Usage: :rule <pattern> <category> (e.g. :rule amazon Shopping)", a.status)

	run(t, a, "rule AMAZON shopping")
	require.Equal(t, "Added rule: 'amazon' -> Shopping", a.status)
	require.Len(t, a.rules, 1)
	require.Equal(t, "amazon", a.rules[0].Pattern)
	require.False(t, a.rules[0].IsRegex)

	run(t, a, "rule target Nonexistent")
	require.Equal(t, "Category 'Nonexistent' not found", a.status)
	require.Len(t, a.rules, 1)
}

func TestRegexRuleCommand(t *testing.T) {
	a := newTestApp(t)
	pump(t, a, a.Init())

	run(t, a, "regex-rule [ Shopping")
	require.Equal(t, "Invalid regex: [", a.status)

	run(t, a, "regex-rule ^AMZ.* Shopping")
	require.Equal(t, "Added regex rule: /^AMZ.*/ -> Shopping", a.status)
	require.Len(t, a.rules, 1)
	require.True(t, a.rules[0].IsRegex)
	require.Equal(t, "^AMZ.*", a.rules[0].Pattern)
}

func TestDeleteRuleCommand(t *testing.T) {
	a := newTestApp(t)
	pump(t, a, a.Init())

	run(t, a, "delete-rule")
	require.Equal(t, "No rules to delete", a.status)

	run(t, a, "rule amazon Shopping")
	run(t, a, "delete-rule")
	require.Equal(t, modeConfirm, a.mode)
	require.Equal(t, "Delete rule 'amazon'?", a.confirmMessage)

	press(t, a, "y")
	require.Equal(t, "Deleted rule: 'amazon'", a.status)
	require.Empty(t, a.rules)
}

func TestBudgetCommand(t *testing.T) {
	a := newTestApp(t)
	pump(t, a, a.Init())
	month := a.effMonth()

	run(t, a, "budget Groceries")
	require.Equal(t, "Usage: :budget <category> <amount> (e.g. :budget Food & Dining 500)", a.status)

	run(t, a, "budget Groceries abc")
	require.Equal(t, "Invalid amount: abc", a.status)

	run(t, a, "budget Groceries 500")
	require.Equal(t, screenBudgets, a.screen)
	require.Equal(t, "Budget set: Groceries = $500 for "+month, a.status)
	require.Len(t, a.budgets, 1)

	run(t, a, "budget Food & Dining 250.50")
	require.Equal(t, "Budget set: Food & Dining = $250.50 for "+month, a.status)
	require.Len(t, a.budgets, 2)
}

func TestDeleteBudgetCommand(t *testing.T) {
	a := newTestApp(t)
	pump(t, a, a.Init())

	run(t, a, "delete-budget")
	require.Equal(t, "No budgets to delete", a.status)

	run(t, a, "budget Groceries 500")
	run(t, a, "delete-budget")
	require.Equal(t, modeConfirm, a.mode)
	require.Equal(t, "Delete budget for 'Groceries'?", a.confirmMessage)

	press(t, a, "y")
	require.Equal(t, "Deleted budget: Groceries", a.status)
	require.Empty(t, a.budgets)
}

func TestCategoryCommand(t *testing.T) {
	a := newTestApp(t)
	pump(t, a, a.Init())

	run(t, a, "category")
	require.Equal(t, "Usage: :category <name>. Creates a new top-level category", a.status)

	run(t, a, "category Side Projects")
	require.Equal(t, "Created category: Side Projects", a.status)
	require.NotNil(t, repository.FindCategoryByName(a.categories, "Side Projects"))
}

func TestRenameCommand(t *testing.T) {
	a := newTestApp(t)
	seedLedger(t, a, 1)
	pump(t, a, a.Init())

	run(t, a, "rename New Name")
	require.Equal(t, "Navigate to Transactions and select one first", a.status)

	press(t, a, "3")
	run(t, a, "rename Coffee Run")
	require.Equal(t, "Renamed transaction to: Coffee Run", a.status)
	require.Equal(t, "Coffee Run", a.transactions[0].Description)
}

func TestRenameEditingMode(t *testing.T) {
	a := newTestApp(t)
	seedLedger(t, a, 1)
	pump(t, a, a.Init())
	press(t, a, "3")

	run(t, a, "rename")
	require.Equal(t, modeEditing, a.mode)
	require.Equal(t, "Merchant 00", a.commandInput)
	require.Equal(t, "Type new name, press Enter to confirm", a.status)

	typeString(t, a, " Cafe")
	press(t, a, "enter")
	require.Equal(t, modeNormal, a.mode)
	require.Equal(t, "Renamed transaction to: Merchant 00 Cafe", a.status)
	require.Equal(t, "Merchant 00 Cafe", a.transactions[0].Description)
}

func TestRenameEditingEscape(t *testing.T) {
	a := newTestApp(t)
	seedLedger(t, a, 1)
	pump(t, a, a.Init())
	press(t, a, "3")

	run(t, a, "rename")
	press(t, a, "esc")
	require.Equal(t, modeNormal, a.mode)
	require.Equal(t, "Edit cancelled", a.status)
	require.Equal(t, "Merchant 00", a.transactions[0].Description)
}

func TestRecatCommand(t *testing.T) {
	a := newTestApp(t)
	seedLedger(t, a, 1)
	pump(t, a, a.Init())

	run(t, a, "recat Groceries")
	require.Equal(t, "Navigate to Transactions and select one first", a.status)

	press(t, a, "3")
	run(t, a, "recat")
	require.Equal(t, "Usage: :recat <category_name>", a.status)

	run(t, a, "recat Zzz")
	require.Equal(t, "Category 'Zzz' not found", a.status)

	run(t, a, "recat groceries")
	require.Equal(t, "Categorized as: Groceries", a.status)
	require.NotNil(t, a.transactions[0].CategoryID)

	cat := repository.FindCategoryByName(a.categories, "Travel")
	require.NotNil(t, cat)
	run(t, a, "recat "+strconv.FormatInt(cat.ID, 10))
	require.Equal(t, "Categorized as: Travel", a.status)
}

func TestAddTxnCommand(t *testing.T) {
	a := newTestApp(t)
	pump(t, a, a.Init())

	run(t, a, "add-txn")
	require.Equal(t, addTxnUsage, a.status)

	run(t, a, "add-txn 2024-13-40 Coffee -4.50")
	require.Equal(t, addTxnUsage, a.status)

	run(t, a, "add-txn 2024-01-15 Coffee abc")
	require.Equal(t, "Invalid amount: abc", a.status)

	run(t, a, "add-txn 2024-01-15 Coffee -4.50")
	require.Equal(t, "No account found. Create one with :account <name>", a.status)

	run(t, a, "account Wallet cash")
	run(t, a, "add-txn 2024-01-15 Coffee Beans -4.50")
	require.Equal(t, "Added transaction: Coffee Beans $-4.50 to Wallet", a.status)

	txns, err := a.repos.Transactions.List(context.Background(), repository.TransactionFilters{Limit: 10})
	require.NoError(t, err)
	require.Len(t, txns, 1)
	require.Equal(t, "Coffee Beans", txns[0].Description)
	require.Equal(t, "manual-2024-01-15-Coffee Beans--4.50", txns[0].ImportHash)
	require.Equal(t, "-4.5", txns[0].Amount.String())
}

func TestSearchCommand(t *testing.T) {
	a := newTestApp(t)
	seedLedger(t, a, 2)
	pump(t, a, a.Init())

	run(t, a, "search merchant 01")
	require.Equal(t, screenTransactions, a.screen)
	require.Equal(t, "Searching: merchant 01", a.status)
	require.Len(t, a.transactions, 1)

	run(t, a, "search")
	require.Equal(t, "Search cleared", a.status)
	require.Len(t, a.transactions, 2)
}

func TestFilterAccountCommand(t *testing.T) {
	a := newTestApp(t)
	seedLedger(t, a, 2)
	pump(t, a, a.Init())

	run(t, a, "filter-account chase checking")
	require.Equal(t, screenTransactions, a.screen)
	require.Equal(t, "Filtering by account: Chase Checking", a.status)
	require.NotNil(t, a.filterAccount)

	run(t, a, "filter-account Nope")
	require.Equal(t, "Account not found. Available: Chase Checking", a.status)

	run(t, a, "filter-account")
	require.Nil(t, a.filterAccount)
	require.Equal(t, "Account filter cleared - showing all transactions", a.status)
}

func TestDeleteSelectedGuards(t *testing.T) {
	a := newTestApp(t)
	pump(t, a, a.Init())

	run(t, a, "delete-selected")
	require.Equal(t, "Navigate to Transactions first", a.status)

	press(t, a, "3")
	run(t, a, "delete-selected")
	require.Equal(t, "No transactions selected. Use Space to select", a.status)
}

func TestExportCommand(t *testing.T) {
	a := newTestApp(t)
	seedLedger(t, a, 2)
	pump(t, a, a.Init())

	path := filepath.Join(t.TempDir(), "out.csv")
	run(t, a, "export "+path)
	require.Equal(t, "Exported 2 transactions to "+path, a.status)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "Date,Description,Amount,Category,Account,Notes")
	require.Contains(t, string(data), "Merchant 00")
}

func TestExportNothingWritesNoFile(t *testing.T) {
	a := newTestApp(t)
	pump(t, a, a.Init())

	path := filepath.Join(t.TempDir(), "empty.csv")
	run(t, a, "export "+path)
	require.Equal(t, "No transactions to export", a.status)
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestNavCommand(t *testing.T) {
	a := newTestApp(t)
	run(t, a, "nav")
	require.True(t, a.showNav)
	require.Equal(t, 0, a.navCursor)

	press(t, a, "j")
	press(t, a, "j")
	press(t, a, "enter")
	require.False(t, a.showNav)
	require.Equal(t, screenTransactions, a.screen)

	run(t, a, "nav")
	require.Equal(t, 2, a.navCursor)
	press(t, a, "5")
	require.Equal(t, screenCategories, a.screen)
	require.False(t, a.showNav)
}

func TestHelpCommand(t *testing.T) {
	a := newTestApp(t)
	run(t, a, "help")
	require.True(t, a.showHelp)
}

func TestQuitCommand(t *testing.T) {
	a := newTestApp(t)
	cmd := a.dispatchCommand("q")
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestResetCommand(t *testing.T) {
	a := newTestApp(t)
	seedLedger(t, a, 3)
	pump(t, a, a.Init())
	require.EqualValues(t, 3, a.txnCount)

	run(t, a, "reset")
	require.Equal(t, modeConfirm, a.mode)
	require.Equal(t, "Reset all data? This cannot be undone", a.confirmMessage)

	press(t, a, "y")
	require.Equal(t, "All data wiped - default categories restored", a.status)
	require.EqualValues(t, 0, a.txnCount)
	require.Empty(t, a.accounts)
	require.NotNil(t, repository.FindCategoryByName(a.categories, "Groceries"))
}
