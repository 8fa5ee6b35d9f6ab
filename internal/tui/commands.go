package tui

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/ShaneMarusczak/budgetui/internal/database/repository"
	"github.com/ShaneMarusczak/budgetui/internal/service"
)

// command is one entry in the : command table. run may return nil when the
// handler only mutates app state.
type command struct {
	description string
	run         func(a *App, args string) tea.Cmd
}

var commandTable = map[string]command{
	"q":    {"Quit BudgeTUI", func(a *App, _ string) tea.Cmd { return tea.Quit }},
	"quit": {"Quit BudgeTUI", func(a *App, _ string) tea.Cmd { return tea.Quit }},
	"d":    {"Go to Dashboard", func(a *App, _ string) tea.Cmd { return a.switchScreen(screenDashboard) }},
	"dashboard": {"Go to Dashboard", func(a *App, _ string) tea.Cmd {
		return a.switchScreen(screenDashboard)
	}},
	"t": {"Go to Transactions", func(a *App, _ string) tea.Cmd { return a.switchScreen(screenTransactions) }},
	"transactions": {"Go to Transactions", func(a *App, _ string) tea.Cmd {
		return a.switchScreen(screenTransactions)
	}},
	"i":      {"Import CSV file", func(a *App, _ string) tea.Cmd { return a.switchScreen(screenImport) }},
	"import": {"Import CSV file", func(a *App, _ string) tea.Cmd { return a.switchScreen(screenImport) }},
	"c":      {"Go to Categories", func(a *App, _ string) tea.Cmd { return a.switchScreen(screenCategories) }},
	"categories": {"Go to Categories", func(a *App, _ string) tea.Cmd {
		return a.switchScreen(screenCategories)
	}},
	"b":        {"Go to Budgets", func(a *App, _ string) tea.Cmd { return a.switchScreen(screenBudgets) }},
	"budgets":  {"Go to Budgets", func(a *App, _ string) tea.Cmd { return a.switchScreen(screenBudgets) }},
	"accounts": {"Go to Accounts", func(a *App, _ string) tea.Cmd { return a.switchScreen(screenAccounts) }},
	"help":     {"Show available commands", func(a *App, _ string) tea.Cmd { a.showHelp = true; return nil }},
	"h":        {"Show available commands", func(a *App, _ string) tea.Cmd { a.showHelp = true; return nil }},
	"nav":      {"Open screen navigator", func(a *App, _ string) tea.Cmd { return a.cmdNav() }},

	"month": {"Set month (e.g. :month 2024-01)", (*App).cmdMonth},
	"m":     {"Set month (e.g. :m 2024-01)", (*App).cmdMonth},
	"next-month": {"Go to next month", func(a *App, _ string) tea.Cmd {
		return a.shiftMonth(1)
	}},
	"prev-month": {"Go to previous month", func(a *App, _ string) tea.Cmd {
		return a.shiftMonth(-1)
	}},

	"account": {"Create account (e.g. :account Chase Checking)", (*App).cmdAccount},
	"a":       {"Create account (e.g. :a Chase Checking)", (*App).cmdAccount},
	"filter-account": {"Filter transactions by account (e.g. :filter-account Chase)",
		(*App).cmdFilterAccount},
	"fa": {"Filter transactions by account", (*App).cmdFilterAccount},

	"rule":        {"Add categorization rule (e.g. :rule amazon Shopping)", (*App).cmdRule},
	"r":           {"Add categorization rule (e.g. :rule amazon Shopping)", (*App).cmdRule},
	"regex-rule":  {"Add regex rule (e.g. :regex-rule ^AMZ.* Shopping)", (*App).cmdRegexRule},
	"delete-rule": {"Delete selected import rule", (*App).cmdDeleteRule},

	"search": {"Search transactions (e.g. :search coffee)", (*App).cmdSearch},
	"s":      {"Search transactions (e.g. :s coffee)", (*App).cmdSearch},

	"budget":        {"Set budget (e.g. :budget Food & Dining 500)", (*App).cmdBudget},
	"delete-budget": {"Delete selected budget", (*App).cmdDeleteBudget},

	"category": {"Create category (e.g. :category Subscriptions)", (*App).cmdCategory},

	"rename": {"Rename selected transaction", (*App).cmdRename},
	"recat":  {"Re-categorize selected transaction", (*App).cmdRecat},

	"add-txn":         {"Add manual transaction (e.g. :add-txn 2024-01-15 Coffee -4.50)", (*App).cmdAddTxn},
	"delete-txn":      {"Delete selected transaction", (*App).cmdDeleteTxn},
	"delete-selected": {"Delete all selected transactions", (*App).cmdDeleteSelected},

	"export": {"Export transactions to CSV (e.g. :export ~/budget.csv)", (*App).cmdExport},

	"reset": {"Wipe all data and restore default categories", (*App).cmdReset},
}

// dispatchCommand parses and runs one : command line. Unknown names get a
// closest-match suggestion.
func (a *App) dispatchCommand(input string) tea.Cmd {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	name, args := input, ""
	if i := strings.Index(input, " "); i >= 0 {
		name, args = input[:i], strings.TrimSpace(input[i+1:])
	}
	if cmd, ok := commandTable[name]; ok {
		return cmd.run(a, args)
	}
	a.status = fmt.Sprintf("Unknown command: :%s. Did you mean :%s?", name, closestCommand(name))
	return nil
}

// closestCommand picks the known command with the smallest edit distance,
// ignoring the one-letter aliases.
func closestCommand(name string) string {
	names := make([]string, 0, len(commandTable))
	for n := range commandTable {
		if len(n) > 1 {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	best, bestDist := "help", -1
	for _, n := range names {
		d := levenshtein.ComputeDistance(name, n)
		if bestDist < 0 || d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

func (a *App) cmdNav() tea.Cmd {
	a.showNav = true
	a.navCursor = 0
	for i, s := range allScreens() {
		if s == a.screen {
			a.navCursor = i
			break
		}
	}
	return nil
}

func (a *App) cmdMonth(args string) tea.Cmd {
	if args == "" {
		a.currentMonth = ""
		a.status = "Showing all time"
		a.clearSelections()
		return a.monthRefresh()
	}
	month := args
	// A bare month number means that month of the current year.
	if n, err := strconv.Atoi(args); err == nil && len(args) <= 2 && n >= 1 && n <= 12 {
		month = fmt.Sprintf("%s-%02d", time.Now().Format("2006"), n)
	}
	if _, err := time.Parse("2006-01-02", month+"-01"); err != nil {
		a.status = "Invalid month format. Use YYYY-MM (e.g. 2024-01)"
		return nil
	}
	a.currentMonth = month
	a.status = "Switched to month: " + month
	a.clearSelections()
	return a.monthRefresh()
}

func (a *App) shiftMonth(delta int) tea.Cmd {
	base := time.Now()
	if a.currentMonth != "" {
		if t, err := time.Parse("2006-01-02", a.currentMonth+"-01"); err == nil {
			base = t
		}
	}
	month := base.AddDate(0, delta, 0).Format("2006-01")
	a.currentMonth = month
	a.status = "Month: " + month
	a.clearSelections()
	return a.monthRefresh()
}

func (a *App) cmdAccount(args string) tea.Cmd {
	if args == "" {
		a.status = "Usage: :account <name> [type]. Types: checking, savings, credit, investment, cash, loan"
		return nil
	}
	name, accountType := splitAccountArgs(args)
	return tea.Batch(func() tea.Msg {
		acct := repository.NewAccount(name, accountType, "")
		if _, err := a.repos.Accounts.Insert(a.ctx, acct); err != nil {
			return errMsg{err}
		}
		return statusMsg("Created account: " + name)
	}, a.loadAccounts(), a.loadSnapshots())
}

// splitAccountArgs peels a trailing account-type word off the name, so
// ":account Chase Sapphire credit" names the account "Chase Sapphire".
func splitAccountArgs(args string) (string, repository.AccountType) {
	fields := strings.Fields(args)
	if len(fields) >= 2 {
		switch strings.ToLower(fields[len(fields)-1]) {
		case "checking", "savings", "credit", "credit-card", "creditcard",
			"investment", "cash", "loan", "other":
			name := strings.Join(fields[:len(fields)-1], " ")
			return name, repository.ParseAccountType(fields[len(fields)-1])
		}
	}
	return args, repository.AccountChecking
}

func (a *App) cmdFilterAccount(args string) tea.Cmd {
	if args == "" {
		a.filterAccount = nil
		a.status = "Account filter cleared - showing all transactions"
		return a.loadTransactions()
	}
	for _, acct := range a.accounts {
		if strings.EqualFold(acct.Name, args) {
			id := acct.ID
			a.filterAccount = &id
			a.screen = screenTransactions
			a.txCursor, a.txScroll = 0, 0
			a.status = "Filtering by account: " + acct.Name
			return a.loadTransactions()
		}
	}
	names := make([]string, len(a.accounts))
	for i, acct := range a.accounts {
		names[i] = acct.Name
	}
	a.status = "Account not found. Available: " + strings.Join(names, ", ")
	return nil
}

func (a *App) cmdRule(args string) tea.Cmd {
	pattern, catName := splitFirstWord(args)
	if pattern == "" || catName == "" {
		a.status = "Usage: :rule <pattern> <category> (e.g. :rule amazon Shopping)"
		return nil
	}
	pattern = strings.ToLower(pattern)
	cat := repository.FindCategoryByName(a.categories, catName)
	if cat == nil {
		a.status = fmt.Sprintf("Category '%s' not found", catName)
		return nil
	}
	catID, name := cat.ID, cat.Name
	return tea.Batch(func() tea.Msg {
		if _, err := a.repos.Rules.Insert(a.ctx, repository.NewContainsRule(pattern, catID)); err != nil {
			return errMsg{err}
		}
		return statusMsg(fmt.Sprintf("Added rule: '%s' -> %s", pattern, name))
	}, a.loadCategories())
}

func (a *App) cmdRegexRule(args string) tea.Cmd {
	pattern, catName := splitFirstWord(args)
	if pattern == "" || catName == "" {
		a.status = "Usage: :regex-rule <pattern> <category> (e.g. :regex-rule ^AMZ.* Shopping)"
		return nil
	}
	if _, err := regexp.Compile(pattern); err != nil {
		a.status = "Invalid regex: " + pattern
		return nil
	}
	cat := repository.FindCategoryByName(a.categories, catName)
	if cat == nil {
		a.status = fmt.Sprintf("Category '%s' not found", catName)
		return nil
	}
	catID, name := cat.ID, cat.Name
	return tea.Batch(func() tea.Msg {
		if _, err := a.repos.Rules.Insert(a.ctx, repository.NewRegexRule(pattern, catID)); err != nil {
			return errMsg{err}
		}
		return statusMsg(fmt.Sprintf("Added regex rule: /%s/ -> %s", pattern, name))
	}, a.loadCategories())
}

func splitFirstWord(args string) (string, string) {
	if i := strings.Index(args, " "); i >= 0 {
		return args[:i], strings.TrimSpace(args[i+1:])
	}
	return args, ""
}

func (a *App) cmdSearch(args string) tea.Cmd {
	if args == "" {
		a.searchInput = ""
		a.status = "Search cleared"
	} else {
		a.searchInput = args
		a.status = "Searching: " + args
	}
	a.screen = screenTransactions
	a.txCursor, a.txScroll = 0, 0
	return a.loadTransactions()
}

func (a *App) cmdBudget(args string) tea.Cmd {
	i := strings.LastIndex(args, " ")
	if i < 0 {
		a.status = "Usage: :budget <category> <amount> (e.g. :budget Food & Dining 500)"
		return nil
	}
	catName, amountStr := strings.TrimSpace(args[:i]), strings.TrimSpace(args[i+1:])
	cat := repository.FindCategoryByName(a.categories, catName)
	if cat == nil {
		a.status = fmt.Sprintf("Category '%s' not found", catName)
		return nil
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		a.status = "Invalid amount: " + amountStr
		return nil
	}
	month := a.effMonth()
	budget := repository.NewBudget(cat.ID, month, amount)
	name := cat.Name
	a.screen = screenBudgets
	return tea.Batch(func() tea.Msg {
		if _, err := a.repos.Budgets.Upsert(a.ctx, budget); err != nil {
			return errMsg{err}
		}
		return statusMsg(fmt.Sprintf("Budget set: %s = $%s for %s", name, amountStr, month))
	}, a.loadBudgets(), a.loadDashboard())
}

func (a *App) cmdDeleteBudget(_ string) tea.Cmd {
	if len(a.budgets) == 0 {
		a.status = "No budgets to delete"
		return nil
	}
	b := a.budgets[a.budgetCursor]
	name := "Unknown"
	if cat := repository.FindCategoryByID(a.categories, b.CategoryID); cat != nil {
		name = cat.Name
	}
	a.confirm(fmt.Sprintf("Delete budget for '%s'?", name), deleteBudgetAction{id: b.ID, name: name})
	return nil
}

func (a *App) cmdCategory(args string) tea.Cmd {
	if args == "" {
		a.status = "Usage: :category <name>. Creates a new top-level category"
		return nil
	}
	return tea.Batch(func() tea.Msg {
		if _, err := a.repos.Categories.Insert(a.ctx, repository.Category{Name: args}); err != nil {
			return errMsg{err}
		}
		return statusMsg("Created category: " + args)
	}, a.loadCategories())
}

func (a *App) cmdDeleteRule(_ string) tea.Cmd {
	if len(a.rules) == 0 {
		a.status = "No rules to delete"
		return nil
	}
	r := a.rules[a.ruleCursor]
	a.confirm(fmt.Sprintf("Delete rule '%s'?", r.Pattern), deleteRuleAction{id: r.ID, pattern: r.Pattern})
	return nil
}

func (a *App) cmdRename(args string) tea.Cmd {
	if a.screen != screenTransactions || a.txCursor >= len(a.transactions) {
		a.status = "Navigate to Transactions and select one first"
		return nil
	}
	tx := a.transactions[a.txCursor]
	if args == "" {
		a.mode = modeEditing
		a.commandInput = tx.Description
		a.status = "Type new name, press Enter to confirm"
		return nil
	}
	return tea.Batch(func() tea.Msg {
		if err := a.repos.Transactions.UpdateDescription(a.ctx, tx.ID, args); err != nil {
			return errMsg{err}
		}
		return statusMsg("Renamed transaction to: " + args)
	}, a.loadTransactions())
}

func (a *App) cmdRecat(args string) tea.Cmd {
	if a.screen != screenTransactions || a.txCursor >= len(a.transactions) {
		a.status = "Navigate to Transactions and select one first"
		return nil
	}
	if args == "" {
		a.status = "Usage: :recat <category_name>"
		return nil
	}
	tx := a.transactions[a.txCursor]
	cat := repository.FindCategoryByName(a.categories, args)
	if cat == nil {
		if id, err := strconv.ParseInt(args, 10, 64); err == nil {
			cat = repository.FindCategoryByID(a.categories, id)
		}
	}
	if cat == nil {
		a.status = fmt.Sprintf("Category '%s' not found", args)
		return nil
	}
	catID, name := cat.ID, cat.Name
	return tea.Batch(func() tea.Msg {
		if err := a.repos.Transactions.UpdateCategory(a.ctx, tx.ID, &catID); err != nil {
			return errMsg{err}
		}
		return statusMsg("Categorized as: " + name)
	}, a.loadTransactions(), a.loadDashboard())
}

const addTxnUsage = "Usage: :add-txn <date> <description> <amount> (e.g. :add-txn 2024-01-15 Coffee -4.50)"

func (a *App) cmdAddTxn(args string) tea.Cmd {
	dateStr, rest := splitFirstWord(args)
	if dateStr == "" || rest == "" {
		a.status = addTxnUsage
		return nil
	}
	if _, err := time.Parse("2006-01-02", dateStr); err != nil {
		a.status = addTxnUsage
		return nil
	}
	i := strings.LastIndex(rest, " ")
	if i < 0 {
		a.status = addTxnUsage
		return nil
	}
	desc, amountStr := strings.TrimSpace(rest[:i]), strings.TrimSpace(rest[i+1:])
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		a.status = "Invalid amount: " + amountStr
		return nil
	}
	if len(a.accounts) == 0 {
		a.status = "No account found. Create one with :account <name>"
		return nil
	}
	acct := a.accounts[a.accountCursor]
	tx := repository.Transaction{
		AccountID:           acct.ID,
		Date:                dateStr,
		Description:         desc,
		OriginalDescription: desc,
		Amount:              amount,
		ImportHash:          fmt.Sprintf("manual-%s-%s-%s", dateStr, desc, amountStr),
		CreatedAt:           time.Now().UTC().Format(time.RFC3339),
	}
	return tea.Batch(func() tea.Msg {
		if _, err := a.repos.Transactions.Insert(a.ctx, tx); err != nil {
			return errMsg{err}
		}
		return statusMsg(fmt.Sprintf("Added transaction: %s $%s to %s", desc, amountStr, acct.Name))
	}, a.loadTransactions(), a.loadDashboard())
}

func (a *App) cmdDeleteTxn(_ string) tea.Cmd {
	if a.screen != screenTransactions || a.txCursor >= len(a.transactions) {
		a.status = "Navigate to Transactions and select one first"
		return nil
	}
	tx := a.transactions[a.txCursor]
	a.confirm(fmt.Sprintf("Delete '%s'?", tx.Description),
		deleteTransactionAction{id: tx.ID, description: tx.Description})
	return nil
}

func (a *App) cmdDeleteSelected(_ string) tea.Cmd {
	if a.screen != screenTransactions {
		a.status = "Navigate to Transactions first"
		return nil
	}
	if len(a.selected) == 0 {
		a.status = "No transactions selected. Use Space to select"
		return nil
	}
	ids := a.selectedIDs()
	a.confirm(fmt.Sprintf("Delete %d selected transactions?", len(ids)),
		deleteTransactionsAction{ids: ids})
	return nil
}

func (a *App) cmdExport(args string) tea.Cmd {
	month := a.currentMonth
	path := service.DefaultExportPath(month)
	if args != "" {
		path = service.ExpandPath(args)
	}
	return func() tea.Msg {
		n, err := a.services.Export.Export(a.ctx, path, month)
		if err != nil {
			return errMsg{err}
		}
		return exportDoneMsg{count: n, path: path}
	}
}

func (a *App) cmdReset(_ string) tea.Cmd {
	a.confirm("Reset all data? This cannot be undone", resetAction{})
	return nil
}
