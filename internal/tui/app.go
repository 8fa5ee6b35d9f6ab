// Package tui implements the interactive terminal interface: a tabbed
// ledger browser with a vim-style command bar, live search, and a
// step-by-step CSV import flow.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/ShaneMarusczak/budgetui/internal/categorize"
	"github.com/ShaneMarusczak/budgetui/internal/config"
	"github.com/ShaneMarusczak/budgetui/internal/database/repository"
	"github.com/ShaneMarusczak/budgetui/internal/importer"
	"github.com/ShaneMarusczak/budgetui/internal/service"
)

// Repos bundles the repositories the TUI reads and writes.
type Repos struct {
	Accounts     *repository.AccountRepo
	Categories   *repository.CategoryRepo
	Transactions *repository.TransactionRepo
	Rules        *repository.RuleRepo
	Budgets      *repository.BudgetRepo
	Runs         *repository.ImportRunRepo
	Analytics    *repository.AnalyticsRepo
}

// Services bundles the flow services shared with the headless CLI.
type Services struct {
	Import      *service.ImportService
	Export      *service.ExportService
	Maintenance *service.MaintenanceService
}

type screen string

const (
	screenDashboard    screen = "Dashboard"
	screenAccounts     screen = "Accounts"
	screenTransactions screen = "Transactions"
	screenImport       screen = "Import"
	screenCategories   screen = "Categories"
	screenBudgets      screen = "Budgets"
)

// allScreens lists the tabs in display order; the 1-6 keys map onto it.
func allScreens() []screen {
	return []screen{
		screenDashboard, screenAccounts, screenTransactions,
		screenImport, screenCategories, screenBudgets,
	}
}

type inputMode string

const (
	modeNormal  inputMode = "NORMAL"
	modeCommand inputMode = "COMMAND"
	modeSearch  inputMode = "SEARCH"
	modeEditing inputMode = "EDITING"
	modeConfirm inputMode = "CONFIRM"
)

type importStep string

const (
	stepSelectFile    importStep = "Select File"
	stepMapColumns    importStep = "Map Columns"
	stepSelectAccount importStep = "Select Account"
	stepPreview       importStep = "Preview"
	stepCategorize    importStep = "Categorize"
	stepComplete      importStep = "Complete"
)

// accountSnapshot is one card on the Accounts screen: the account plus its
// month totals and all-time balance.
type accountSnapshot struct {
	Account  repository.Account
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Balance  decimal.Decimal
}

type browserEntry struct {
	name string
	path string
	dir  bool
}

// pendingAction is a destructive operation parked behind the y/N prompt.
type pendingAction interface{ confirmable() }

type deleteTransactionAction struct {
	id          int64
	description string
}
type deleteTransactionsAction struct{ ids []int64 }
type deleteBudgetAction struct {
	id   int64
	name string
}
type deleteRuleAction struct {
	id      int64
	pattern string
}
type importCommitAction struct{}
type resetAction struct{}

func (deleteTransactionAction) confirmable()  {}
func (deleteTransactionsAction) confirmable() {}
func (deleteBudgetAction) confirmable()       {}
func (deleteRuleAction) confirmable()         {}
func (importCommitAction) confirmable()       {}
func (resetAction) confirmable()              {}

// App is the bubbletea model for the whole interface.
type App struct {
	ctx      context.Context
	cfg      config.Config
	repos    Repos
	services Services

	screen screen
	mode   inputMode

	width       int
	height      int
	visibleRows int

	status string

	// dashboard
	monthIncome   decimal.Decimal
	monthExpenses decimal.Decimal
	netWorth      decimal.Decimal
	spending      []repository.CategorySpend
	trend         []repository.MonthTotals
	txnCount      int64
	currentMonth  string // "" means all time
	accounts      []repository.Account
	accountCursor int // active account for n/p cycling and :add-txn

	// transactions
	transactions  []repository.Transaction
	txCursor      int
	txScroll      int
	searchInput   string
	filterAccount *int64
	selected      map[int64]bool

	// accounts screen
	snapshots  []accountSnapshot
	acctCursor int
	acctScroll int

	// categories
	categories []repository.Category
	rules      []repository.ImportRule
	catCursor  int
	catScroll  int
	ruleCursor int
	ruleScroll int
	showRules  bool

	// budgets
	budgets      []repository.Budget
	budgetCursor int
	budgetScroll int

	// import: file browser
	step           importStep
	browserPath    string
	browserEntries []browserEntry
	browserCursor  int
	browserScroll  int
	browserFilter  string
	filterFocused  bool
	showHidden     bool

	// import: column mapping
	importPath    string
	importHeaders []string
	importRows    [][]string
	profile       *importer.Profile
	detectedBank  string
	mapField      int
	packProfiles  []*importer.Profile
	packIndex     int

	// import: account selection
	importAccountID  int64
	importAcctCursor int
	importAcctScroll int
	creatingAccount  bool
	newAccountName   string
	newAccountType   int

	// import: preview and categorization
	batch           []repository.Transaction
	wizard          categorize.Wizard
	wizardScroll    int
	newCategoryName string

	// command bar and overlays
	commandInput   string
	confirmMessage string
	pending        pendingAction
	showHelp       bool
	showNav        bool
	navCursor      int
}

// New builds the app rooted at the user's home directory for file browsing.
// Custom CSV profiles are loaded best-effort; a missing pack is not an error.
func New(ctx context.Context, cfg config.Config, repos Repos, services Services) *App {
	home, err := os.UserHomeDir()
	if err != nil {
		if home, err = os.Getwd(); err != nil {
			home = "/"
		}
	}
	a := &App{
		ctx:          ctx,
		cfg:          cfg,
		repos:        repos,
		services:     services,
		screen:       screenDashboard,
		mode:         modeNormal,
		visibleRows:  20,
		currentMonth: time.Now().Format("2006-01"),
		selected:     make(map[int64]bool),
		step:         stepSelectFile,
		browserPath:  home,
	}
	if cfg.Profiles.Path != "" {
		if packs, err := importer.LoadProfiles(cfg.Profiles.Path); err == nil {
			a.packProfiles = packs
		}
	}
	return a
}

func (a *App) Init() tea.Cmd {
	return a.reloadAll()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.visibleRows = max(m.Height-3, 1)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(m)

	case dashboardMsg:
		a.monthIncome, a.monthExpenses = m.income, m.expenses
		a.netWorth = m.netWorth
		a.spending = m.spending
		a.trend = m.trend
		a.txnCount = m.txnCount
		return a, nil

	case transactionsMsg:
		a.transactions = m
		clampCursor(&a.txCursor, &a.txScroll, len(a.transactions))
		return a, nil

	case categoriesMsg:
		a.categories, a.rules = m.categories, m.rules
		clampCursor(&a.catCursor, &a.catScroll, len(a.categories))
		clampCursor(&a.ruleCursor, &a.ruleScroll, len(a.rules))
		return a, nil

	case budgetsMsg:
		a.budgets = m
		clampCursor(&a.budgetCursor, &a.budgetScroll, len(a.budgets))
		return a, nil

	case accountsMsg:
		a.accounts = m
		if a.accountCursor >= len(a.accounts) {
			a.accountCursor = 0
		}
		return a, nil

	case snapshotsMsg:
		a.snapshots = m
		clampCursor(&a.acctCursor, &a.acctScroll, len(a.snapshots))
		return a, nil

	case fileLoadedMsg:
		a.importPath = m.path
		a.importHeaders = m.preview.File.Headers
		a.importRows = m.preview.File.Rows
		if m.preview.Profile != nil {
			a.profile = m.preview.Profile
			a.detectedBank = m.preview.Profile.Name
			a.status = "Detected format: " + a.detectedBank
		} else {
			a.profile = importer.DefaultProfile()
			a.profile.HasHeader = m.preview.File.HasHeader
			a.detectedBank = ""
			a.status = "Custom CSV - map columns manually"
		}
		a.mapField = 0
		a.packIndex = 0
		a.step = stepMapColumns
		return a, nil

	case importAccountsMsg:
		a.accounts = m
		a.importAcctCursor, a.importAcctScroll = 0, 0
		a.creatingAccount = false
		a.newAccountName = ""
		for i, acct := range a.accounts {
			if a.detectedBank != "" && strings.EqualFold(acct.Name, a.detectedBank) {
				a.importAcctCursor = i
				break
			}
		}
		a.newAccountType = 0
		if a.profile != nil && a.profile.IsCreditAccount {
			for i, t := range repository.AllAccountTypes() {
				if t == repository.AccountCreditCard {
					a.newAccountType = i
					break
				}
			}
		}
		a.step = stepSelectAccount
		return a, nil

	case importAccountCreatedMsg:
		a.accounts = m.accounts
		a.importAccountID = m.account.ID
		a.creatingAccount = false
		a.newAccountName = ""
		if a.profile != nil {
			service.ApplyAccount(a.profile, m.account, a.detectedBank != "")
		}
		a.status = "Created account: " + m.account.Name
		return a, a.previewCmd()

	case previewReadyMsg:
		a.batch = m.batch
		a.step = stepPreview
		a.status = fmt.Sprintf("%d transactions ready to import", len(m.batch))
		return a, nil

	case categorizePlanMsg:
		a.wizard = m.wizard
		a.wizardScroll = 0
		a.newCategoryName = ""
		a.step = stepCategorize
		n := len(m.wizard.Queue)
		a.status = fmt.Sprintf("%d unique description%s to categorize", n, plural(n))
		return a, nil

	case wizardStepMsg:
		a.wizard = m.wizard
		if m.status != "" {
			a.status = m.status
		}
		a.clampWizardScroll()
		if m.refreshCats {
			return a, a.loadCategories()
		}
		return a, nil

	case importDoneMsg:
		a.step = stepComplete
		a.status = m.status
		return a, a.reloadAll()

	case exportDoneMsg:
		if m.count == 0 {
			a.status = "No transactions to export"
		} else {
			a.status = fmt.Sprintf("Exported %d transactions to %s", m.count, m.path)
		}
		return a, nil

	case statusMsg:
		a.status = string(m)
		return a, nil

	case errMsg:
		a.status = "error: " + m.Error()
		return a, nil
	}
	return a, nil
}

// handleKey routes a key press: overlays first, then the active input mode,
// then the import-step handlers that own their own key maps, then the
// normal-mode keys.
func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}
	if a.showNav {
		return a.handleNavKey(m)
	}
	switch a.mode {
	case modeCommand:
		return a.handleCommandKey(m)
	case modeSearch:
		return a.handleSearchKey(m)
	case modeEditing:
		return a.handleEditKey(m)
	case modeConfirm:
		return a.handleConfirmKey(m)
	}
	if a.screen == screenImport {
		switch {
		case a.step == stepSelectFile && a.filterFocused:
			return a.handleBrowserFilterKey(m)
		case a.step == stepCategorize:
			return a.handleCategorizeKey(m)
		case a.step == stepSelectAccount:
			return a.handleSelectAccountKey(m)
		}
	}
	return a.handleNormalKey(m)
}

func (a *App) handleNormalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch s := m.String(); s {
	case ":":
		a.mode = modeCommand
		a.commandInput = ""
	case "/":
		a.mode = modeSearch
		a.searchInput = ""
	case "ctrl+q", "ctrl+c":
		return a, tea.Quit
	case "j", "down":
		a.moveDown()
	case "k", "up":
		a.moveUp()
	case "1", "2", "3", "4", "5", "6":
		return a, a.switchScreen(allScreens()[s[0]-'1'])
	case "tab":
		if a.screen == screenImport && a.step == stepSelectFile {
			a.filterFocused = true
			return a, nil
		}
		return a, a.cycleScreen(1)
	case "shift+tab":
		return a, a.cycleScreen(-1)
	case "enter":
		return a, a.handleEnter()
	case "esc":
		return a, a.handleEscape()
	case "+", "=":
		a.adjustField(1)
	case "-":
		a.adjustField(-1)
	case ".":
		if a.screen == screenImport && a.step == stepSelectFile {
			a.showHidden = !a.showHidden
			a.refreshBrowser()
		}
	case "g":
		a.gotoTop()
	case "G":
		a.gotoBottom()
	case "?":
		a.showHelp = true
	case "r":
		if a.screen == screenCategories {
			a.showRules = !a.showRules
		}
	case "n":
		if a.screen == screenDashboard && len(a.accounts) > 0 {
			a.accountCursor = (a.accountCursor + 1) % len(a.accounts)
			a.status = "Active account: " + a.accounts[a.accountCursor].Name
		}
	case "p":
		if a.screen == screenDashboard && len(a.accounts) > 0 {
			a.accountCursor = (a.accountCursor - 1 + len(a.accounts)) % len(a.accounts)
			a.status = "Active account: " + a.accounts[a.accountCursor].Name
		} else if a.screen == screenImport && a.step == stepMapColumns {
			a.applyPackProfile()
		}
	case "H":
		return a, a.dispatchCommand("prev-month")
	case "L":
		return a, a.dispatchCommand("next-month")
	case "ctrl+d":
		for i := 0; i < a.visibleRows/2; i++ {
			a.moveDown()
		}
	case "ctrl+u":
		for i := 0; i < a.visibleRows/2; i++ {
			a.moveUp()
		}
	case "D":
		if a.screen != screenTransactions {
			break
		}
		if len(a.selected) == 0 {
			return a, a.dispatchCommand("delete-txn")
		}
		ids := a.selectedIDs()
		a.confirm(fmt.Sprintf("Delete %d transaction%s?", len(ids), plural(len(ids))), deleteTransactionsAction{ids: ids})
	case " ":
		if a.screen == screenTransactions && a.txCursor < len(a.transactions) {
			id := a.transactions[a.txCursor].ID
			if a.selected[id] {
				delete(a.selected, id)
			} else {
				a.selected[id] = true
			}
			a.moveDown()
		}
	case "i":
		if a.screen == screenImport && a.step == stepComplete {
			a.step = stepSelectFile
			a.refreshBrowser()
		}
	}
	return a, nil
}

func (a *App) handleCommandKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEnter:
		input := a.commandInput
		a.commandInput = ""
		a.mode = modeNormal
		return a, a.dispatchCommand(input)
	case tea.KeyEsc:
		a.commandInput = ""
		a.mode = modeNormal
	case tea.KeyBackspace, tea.KeyCtrlH:
		a.commandInput = trimLastRune(a.commandInput)
		if a.commandInput == "" {
			a.mode = modeNormal
		}
	case tea.KeySpace:
		a.commandInput += " "
	case tea.KeyRunes:
		a.commandInput += string(m.Runes)
	}
	return a, nil
}

// handleSearchKey filters the transaction list live on every keystroke.
func (a *App) handleSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEnter:
		a.mode = modeNormal
		a.screen = screenTransactions
		return a, a.loadTransactions()
	case tea.KeyEsc:
		a.mode = modeNormal
		a.searchInput = ""
		return a, a.loadTransactions()
	case tea.KeyBackspace, tea.KeyCtrlH:
		a.searchInput = trimLastRune(a.searchInput)
	case tea.KeySpace:
		a.searchInput += " "
	case tea.KeyRunes:
		a.searchInput += string(m.Runes)
	default:
		return a, nil
	}
	a.screen = screenTransactions
	a.txCursor, a.txScroll = 0, 0
	return a, a.loadTransactions()
}

func (a *App) handleEditKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEnter:
		name := strings.TrimSpace(a.commandInput)
		a.commandInput = ""
		a.mode = modeNormal
		if name == "" || a.txCursor >= len(a.transactions) {
			return a, nil
		}
		tx := a.transactions[a.txCursor]
		return a, tea.Batch(func() tea.Msg {
			if err := a.repos.Transactions.UpdateDescription(a.ctx, tx.ID, name); err != nil {
				return errMsg{err}
			}
			return statusMsg("Renamed transaction to: " + name)
		}, a.loadTransactions())
	case tea.KeyEsc:
		a.commandInput = ""
		a.mode = modeNormal
		a.status = "Edit cancelled"
	case tea.KeyBackspace, tea.KeyCtrlH:
		a.commandInput = trimLastRune(a.commandInput)
	case tea.KeySpace:
		a.commandInput += " "
	case tea.KeyRunes:
		a.commandInput += string(m.Runes)
	}
	return a, nil
}

func (a *App) handleConfirmKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "y", "Y":
		act := a.pending
		a.pending = nil
		a.confirmMessage = ""
		a.mode = modeNormal
		return a, a.performAction(act)
	case "n", "N", "esc":
		a.pending = nil
		a.confirmMessage = ""
		a.mode = modeNormal
		a.status = "Cancelled"
	}
	return a, nil
}

func (a *App) handleNavKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	screens := allScreens()
	switch s := m.String(); s {
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(s[0] - '1')
		if idx < len(screens) {
			a.showNav = false
			return a, a.switchScreen(screens[idx])
		}
	case "j", "down":
		if a.navCursor < len(screens)-1 {
			a.navCursor++
		}
	case "k", "up":
		if a.navCursor > 0 {
			a.navCursor--
		}
	case "enter":
		a.showNav = false
		return a, a.switchScreen(screens[a.navCursor])
	default:
		a.showNav = false
	}
	return a, nil
}

func (a *App) performAction(action pendingAction) tea.Cmd {
	switch act := action.(type) {
	case deleteTransactionAction:
		return tea.Batch(func() tea.Msg {
			if err := a.repos.Transactions.Delete(a.ctx, act.id); err != nil {
				return errMsg{err}
			}
			return statusMsg("Deleted: " + act.description)
		}, a.loadTransactions(), a.loadDashboard())
	case deleteTransactionsAction:
		a.clearSelections()
		return tea.Batch(func() tea.Msg {
			n, err := a.repos.Transactions.DeleteBatch(a.ctx, act.ids)
			if err != nil {
				return errMsg{err}
			}
			return statusMsg(fmt.Sprintf("Deleted %d transactions", n))
		}, a.loadTransactions(), a.loadDashboard())
	case deleteBudgetAction:
		return tea.Batch(func() tea.Msg {
			if err := a.repos.Budgets.Delete(a.ctx, act.id); err != nil {
				return errMsg{err}
			}
			return statusMsg("Deleted budget: " + act.name)
		}, a.loadBudgets())
	case deleteRuleAction:
		return tea.Batch(func() tea.Msg {
			if err := a.repos.Rules.Delete(a.ctx, act.id); err != nil {
				return errMsg{err}
			}
			return statusMsg(fmt.Sprintf("Deleted rule: '%s'", act.pattern))
		}, a.loadCategories())
	case importCommitAction:
		return a.categorizePlanCmd()
	case resetAction:
		return tea.Batch(func() tea.Msg {
			if err := a.services.Maintenance.Reset(a.ctx); err != nil {
				return errMsg{err}
			}
			return statusMsg("All data wiped - default categories restored")
		}, a.reloadAll())
	}
	return nil
}

func (a *App) handleEnter() tea.Cmd {
	switch a.screen {
	case screenAccounts:
		if a.acctCursor < len(a.snapshots) {
			snap := a.snapshots[a.acctCursor]
			id := snap.Account.ID
			a.filterAccount = &id
			a.txCursor, a.txScroll = 0, 0
			a.screen = screenTransactions
			a.status = "Filtered by: " + snap.Account.Name
			return a.loadTransactions()
		}
	case screenImport:
		switch a.step {
		case stepSelectFile:
			entries := a.filteredEntries()
			if a.browserCursor < len(entries) {
				e := entries[a.browserCursor]
				if e.dir {
					a.browserPath = e.path
					a.refreshBrowser()
					return nil
				}
				return a.loadFileCmd(e.path)
			}
		case stepMapColumns:
			return a.importAccountsCmd()
		case stepPreview:
			a.confirm(fmt.Sprintf("Import %d transactions?", len(a.batch)), importCommitAction{})
		case stepComplete:
			a.screen = screenTransactions
			return a.loadTransactions()
		}
	}
	return nil
}

func (a *App) handleEscape() tea.Cmd {
	if a.screen == screenImport {
		switch a.step {
		case stepSelectFile:
			if a.browserFilter != "" {
				a.browserFilter = ""
				a.browserCursor, a.browserScroll = 0, 0
				return nil
			}
			a.screen = screenDashboard
			return tea.Batch(a.loadDashboard(), a.loadTransactions())
		case stepMapColumns:
			a.step = stepSelectFile
		case stepPreview:
			a.step = stepSelectAccount
		case stepComplete:
			a.screen = screenDashboard
			return tea.Batch(a.loadDashboard(), a.loadTransactions())
		}
		return nil
	}
	if a.screen == screenTransactions && len(a.selected) > 0 {
		a.clearSelections()
		a.status = "Selection cleared"
		return nil
	}
	if a.screen == screenTransactions && a.filterAccount != nil {
		a.filterAccount = nil
		a.status = "Account filter cleared"
		return a.loadTransactions()
	}
	a.status = ""
	a.searchInput = ""
	return nil
}

func (a *App) moveDown() {
	switch a.screen {
	case screenAccounts:
		scrollDown(&a.acctCursor, &a.acctScroll, len(a.snapshots), a.cardsPerPage())
	case screenTransactions:
		scrollDown(&a.txCursor, &a.txScroll, len(a.transactions), a.page())
	case screenCategories:
		if a.showRules {
			scrollDown(&a.ruleCursor, &a.ruleScroll, len(a.rules), a.page())
		} else {
			scrollDown(&a.catCursor, &a.catScroll, len(a.categories), a.page())
		}
	case screenBudgets:
		scrollDown(&a.budgetCursor, &a.budgetScroll, len(a.budgets), a.page())
	case screenImport:
		switch a.step {
		case stepSelectFile:
			scrollDown(&a.browserCursor, &a.browserScroll, len(a.filteredEntries()), a.page())
		case stepMapColumns:
			if a.mapField < mapFieldCount-1 {
				a.mapField++
			}
		}
	}
}

func (a *App) moveUp() {
	switch a.screen {
	case screenAccounts:
		scrollUp(&a.acctCursor, &a.acctScroll)
	case screenTransactions:
		scrollUp(&a.txCursor, &a.txScroll)
	case screenCategories:
		if a.showRules {
			scrollUp(&a.ruleCursor, &a.ruleScroll)
		} else {
			scrollUp(&a.catCursor, &a.catScroll)
		}
	case screenBudgets:
		scrollUp(&a.budgetCursor, &a.budgetScroll)
	case screenImport:
		switch a.step {
		case stepSelectFile:
			if a.browserCursor == 0 {
				a.filterFocused = true
				return
			}
			scrollUp(&a.browserCursor, &a.browserScroll)
		case stepMapColumns:
			if a.mapField > 0 {
				a.mapField--
			}
		}
	}
}

func (a *App) gotoTop() {
	switch a.screen {
	case screenAccounts:
		scrollTop(&a.acctCursor, &a.acctScroll)
	case screenTransactions:
		scrollTop(&a.txCursor, &a.txScroll)
	case screenCategories:
		if a.showRules {
			scrollTop(&a.ruleCursor, &a.ruleScroll)
		} else {
			scrollTop(&a.catCursor, &a.catScroll)
		}
	case screenBudgets:
		scrollTop(&a.budgetCursor, &a.budgetScroll)
	case screenImport:
		if a.step == stepSelectFile {
			scrollTop(&a.browserCursor, &a.browserScroll)
		}
	}
}

func (a *App) gotoBottom() {
	switch a.screen {
	case screenAccounts:
		scrollBottom(&a.acctCursor, &a.acctScroll, len(a.snapshots), a.cardsPerPage())
	case screenTransactions:
		scrollBottom(&a.txCursor, &a.txScroll, len(a.transactions), a.page())
	case screenCategories:
		if a.showRules {
			scrollBottom(&a.ruleCursor, &a.ruleScroll, len(a.rules), a.page())
		} else {
			scrollBottom(&a.catCursor, &a.catScroll, len(a.categories), a.page())
		}
	case screenBudgets:
		scrollBottom(&a.budgetCursor, &a.budgetScroll, len(a.budgets), a.page())
	case screenImport:
		if a.step == stepSelectFile {
			scrollBottom(&a.browserCursor, &a.browserScroll, len(a.filteredEntries()), a.page())
		}
	}
}

// switchScreen resets per-screen state and returns the loader for the
// target screen. The Import tab always restarts at file selection.
func (a *App) switchScreen(s screen) tea.Cmd {
	a.clearSelections()
	a.screen = s
	a.status = string(s)
	switch s {
	case screenDashboard:
		return tea.Batch(a.loadDashboard(), a.loadTransactions())
	case screenAccounts:
		return a.loadSnapshots()
	case screenTransactions:
		return a.loadTransactions()
	case screenImport:
		a.step = stepSelectFile
		a.importAccountID = 0
		a.importAcctCursor, a.importAcctScroll = 0, 0
		a.creatingAccount = false
		a.newAccountName = ""
		a.detectedBank = ""
		a.refreshBrowser()
		return nil
	case screenCategories:
		return a.loadCategories()
	case screenBudgets:
		return tea.Batch(a.loadBudgets(), a.loadDashboard())
	}
	return nil
}

func (a *App) cycleScreen(delta int) tea.Cmd {
	screens := allScreens()
	cur := 0
	for i, s := range screens {
		if s == a.screen {
			cur = i
			break
		}
	}
	next := (cur + delta + len(screens)) % len(screens)
	return a.switchScreen(screens[next])
}

func (a *App) confirm(message string, action pendingAction) {
	a.confirmMessage = message
	a.pending = action
	a.mode = modeConfirm
}

func (a *App) clearSelections() {
	a.selected = make(map[int64]bool)
}

func (a *App) selectedIDs() []int64 {
	ids := make([]int64, 0, len(a.selected))
	for id := range a.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// effMonth is the month for month-keyed data (budgets): the selected month,
// or the current one when viewing all time.
func (a *App) effMonth() string {
	if a.currentMonth != "" {
		return a.currentMonth
	}
	return time.Now().Format("2006-01")
}

func (a *App) page() int {
	return a.visibleRows
}

// cardsPerPage is the Accounts page size; each card renders four lines.
func (a *App) cardsPerPage() int {
	return max(a.visibleRows/4, 1)
}

func (a *App) clampWizardScroll() {
	page := a.page()
	if a.wizard.Selection >= a.wizardScroll+page {
		a.wizardScroll = a.wizard.Selection - (page - 1)
	}
	if a.wizard.Selection < a.wizardScroll {
		a.wizardScroll = a.wizard.Selection
	}
}

func (a *App) loadDashboard() tea.Cmd {
	month := a.currentMonth
	return func() tea.Msg {
		income, expenses, err := a.repos.Analytics.MonthlyTotals(a.ctx, month)
		if err != nil {
			return errMsg{err}
		}
		net, err := a.repos.Analytics.NetWorth(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		spending, err := a.repos.Analytics.SpendingByCategory(a.ctx, month)
		if err != nil {
			return errMsg{err}
		}
		trend, err := a.repos.Analytics.MonthlyTrend(a.ctx, 12)
		if err != nil {
			return errMsg{err}
		}
		count, err := a.repos.Transactions.Count(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return dashboardMsg{income: income, expenses: expenses, netWorth: net, spending: spending, trend: trend, txnCount: count}
	}
}

func (a *App) loadTransactions() tea.Cmd {
	f := repository.TransactionFilters{
		Limit:     200,
		AccountID: a.filterAccount,
		Search:    a.searchInput,
		Month:     a.currentMonth,
	}
	return func() tea.Msg {
		list, err := a.repos.Transactions.List(a.ctx, f)
		if err != nil {
			return errMsg{err}
		}
		return transactionsMsg(list)
	}
}

func (a *App) loadCategories() tea.Cmd {
	return func() tea.Msg {
		cats, err := a.repos.Categories.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		rules, err := a.repos.Rules.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return categoriesMsg{categories: cats, rules: rules}
	}
}

func (a *App) loadBudgets() tea.Cmd {
	month := a.effMonth()
	return func() tea.Msg {
		list, err := a.repos.Budgets.List(a.ctx, month)
		if err != nil {
			return errMsg{err}
		}
		return budgetsMsg(list)
	}
}

func (a *App) loadAccounts() tea.Cmd {
	return func() tea.Msg {
		list, err := a.repos.Accounts.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return accountsMsg(list)
	}
}

func (a *App) loadSnapshots() tea.Cmd {
	month := a.currentMonth
	return func() tea.Msg {
		accounts, err := a.repos.Accounts.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		snaps := make([]accountSnapshot, 0, len(accounts))
		for _, acct := range accounts {
			income, expenses, err := a.repos.Analytics.AccountMonthlyTotals(a.ctx, acct.ID, month)
			if err != nil {
				return errMsg{err}
			}
			balance, err := a.repos.Analytics.AccountBalance(a.ctx, acct.ID)
			if err != nil {
				return errMsg{err}
			}
			snaps = append(snaps, accountSnapshot{Account: acct, Income: income, Expenses: expenses, Balance: balance})
		}
		return snapshotsMsg(snaps)
	}
}

func (a *App) reloadAll() tea.Cmd {
	return tea.Batch(
		a.loadDashboard(),
		a.loadTransactions(),
		a.loadCategories(),
		a.loadBudgets(),
		a.loadAccounts(),
		a.loadSnapshots(),
	)
}

func (a *App) monthRefresh() tea.Cmd {
	return tea.Batch(a.loadDashboard(), a.loadTransactions(), a.loadBudgets(), a.loadSnapshots())
}

func (a *App) runMeta() service.RunMeta {
	name := ""
	if a.profile != nil {
		name = a.profile.Name
	}
	return service.RunMeta{
		AccountID:   a.importAccountID,
		FileName:    filepath.Base(a.importPath),
		ProfileName: name,
	}
}

func scrollDown(cursor, scroll *int, length, page int) {
	if *cursor+1 >= length {
		return
	}
	*cursor++
	if *cursor >= *scroll+page {
		*scroll = *cursor - (page - 1)
	}
}

func scrollUp(cursor, scroll *int) {
	if *cursor > 0 {
		*cursor--
	}
	if *cursor < *scroll {
		*scroll = *cursor
	}
}

func scrollTop(cursor, scroll *int) {
	*cursor, *scroll = 0, 0
}

func scrollBottom(cursor, scroll *int, length, page int) {
	if length == 0 {
		return
	}
	*cursor = length - 1
	*scroll = max(*cursor-(page-1), 0)
}

func clampCursor(cursor, scroll *int, length int) {
	if length == 0 {
		*cursor, *scroll = 0, 0
		return
	}
	if *cursor >= length {
		*cursor = length - 1
	}
	if *scroll > *cursor {
		*scroll = *cursor
	}
}

func trimLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

type dashboardMsg struct {
	income   decimal.Decimal
	expenses decimal.Decimal
	netWorth decimal.Decimal
	spending []repository.CategorySpend
	trend    []repository.MonthTotals
	txnCount int64
}

type transactionsMsg []repository.Transaction

type categoriesMsg struct {
	categories []repository.Category
	rules      []repository.ImportRule
}

type budgetsMsg []repository.Budget

type accountsMsg []repository.Account

type snapshotsMsg []accountSnapshot

type statusMsg string

type errMsg struct{ error }
