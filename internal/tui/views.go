package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/ShaneMarusczak/budgetui/internal/categorize"
	"github.com/ShaneMarusczak/budgetui/internal/database/repository"
)

var (
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#89B4FA")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#7F849C"))
	greenStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	redStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)

	modeBarStyles = map[inputMode]lipgloss.Style{
		modeNormal:  lipgloss.NewStyle().Background(lipgloss.Color("#89B4FA")).Foreground(lipgloss.Color("#1E1E2E")).Bold(true),
		modeCommand: lipgloss.NewStyle().Background(lipgloss.Color("#A6E3A1")).Foreground(lipgloss.Color("#1E1E2E")).Bold(true),
		modeSearch:  lipgloss.NewStyle().Background(lipgloss.Color("#F9E2AF")).Foreground(lipgloss.Color("#1E1E2E")).Bold(true),
		modeEditing: lipgloss.NewStyle().Background(lipgloss.Color("#A6E3A1")).Foreground(lipgloss.Color("#1E1E2E")).Bold(true),
		modeConfirm: lipgloss.NewStyle().Background(lipgloss.Color("#F38BA8")).Foreground(lipgloss.Color("#1E1E2E")).Bold(true),
	}
)

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(a.renderTabs())
	b.WriteString("\n\n")
	switch {
	case a.showHelp:
		b.WriteString(a.renderHelp())
	case a.showNav:
		b.WriteString(a.renderNav())
	default:
		b.WriteString(a.renderScreen())
	}
	b.WriteString("\n")
	b.WriteString(a.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(a.renderCommandBar())
	return b.String()
}

func (a *App) renderTabs() string {
	parts := make([]string, 0, len(allScreens()))
	for i, s := range allScreens() {
		if s == a.screen {
			parts = append(parts, dimStyle.Render(fmt.Sprintf("%d:", i+1))+accentStyle.Render(string(s)))
		} else {
			parts = append(parts, fmt.Sprintf("%d:%s", i+1, s))
		}
	}
	return " " + strings.Join(parts, " | ")
}

func (a *App) renderScreen() string {
	switch a.screen {
	case screenDashboard:
		return a.renderDashboard()
	case screenAccounts:
		return a.renderAccounts()
	case screenTransactions:
		return a.renderTransactions()
	case screenImport:
		return a.renderImport()
	case screenCategories:
		return a.renderCategories()
	case screenBudgets:
		return a.renderBudgets()
	}
	return ""
}

func (a *App) renderDashboard() string {
	var b strings.Builder
	net := a.monthIncome.Add(a.monthExpenses)
	labels := fmt.Sprintf("%-16s%-16s%-16s%-16s", " Income ", " Expenses ", " Net ", " Net Worth ")
	values := fmt.Sprintf(" %-15s %-15s %-15s %-15s",
		formatAmount(a.monthIncome),
		formatAmount(a.monthExpenses.Abs()),
		formatAmount(net),
		formatAmount(a.netWorth))
	b.WriteString(titleStyle.Render(labels) + "\n")
	b.WriteString(values + "\n")

	if len(a.spending) == 0 {
		b.WriteString("\n  No transactions for this month. Import a CSV with :i\n")
	} else {
		b.WriteString("\n" + titleStyle.Render(" Spending by Category ") + "\n")
		for i, cs := range a.spending {
			if i >= 12 {
				break
			}
			b.WriteString(fmt.Sprintf("  %-12s%10s\n", truncate(cs.Category, 10), "$"+cs.Total.Abs().StringFixed(2)))
		}
	}

	if len(a.trend) > 0 {
		b.WriteString("\n" + titleStyle.Render(" Monthly Spending Trend ") + "\n")
		b.WriteString("  " + sparkline(a.trend) + "\n")
		if len(a.trend) > 1 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  %s to %s", a.trend[0].Month, a.trend[len(a.trend)-1].Month)) + "\n")
		}
	}
	return b.String()
}

func (a *App) renderAccounts() string {
	var b strings.Builder
	if len(a.snapshots) == 0 {
		b.WriteString("  No accounts yet.\n")
		b.WriteString("  Create one with :account <name> [type] or import a CSV.\n")
		return b.String()
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf(" %d Accounts | j/k navigate | Enter view transactions ", len(a.snapshots))) + "\n")
	end := min(a.acctScroll+a.cardsPerPage(), len(a.snapshots))
	for i := a.acctScroll; i < end; i++ {
		snap := a.snapshots[i]
		top := fmt.Sprintf("┌─ %s (%s) ", snap.Account.Name, snap.Account.AccountType)
		if i == a.acctCursor {
			top = accentStyle.Render(top)
		}
		b.WriteString(top + "\n")
		inLabel, outLabel := "Income", "Expenses"
		if snap.Account.AccountType.IsCredit() {
			inLabel, outLabel = "Payments", "Charges"
		}
		b.WriteString(fmt.Sprintf("  %s: $%s    %s: $%s\n",
			inLabel, snap.Income.StringFixed(2), outLabel, snap.Expenses.Abs().StringFixed(2)))
		b.WriteString("  Balance: " + formatAmount(snap.Balance) + "\n")
		b.WriteString("└─────────────────────────────────────────\n")
	}
	return b.String()
}

func (a *App) renderTransactions() string {
	var b strings.Builder
	if len(a.transactions) == 0 {
		if a.searchInput != "" {
			b.WriteString(fmt.Sprintf("  No transactions matching '%s'\n", a.searchInput))
			b.WriteString("  Press Esc to clear the search\n")
		} else {
			b.WriteString("  No transactions for this month\n")
			b.WriteString("  Import a CSV with :i or add one with :add-txn\n")
		}
		return b.String()
	}
	title := fmt.Sprintf(" Transactions (%d) ", len(a.transactions))
	if len(a.selected) > 0 {
		title += fmt.Sprintf("[%d selected] ", len(a.selected))
	}
	if a.searchInput != "" {
		title += fmt.Sprintf("search: '%s' ", a.searchInput)
	}
	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(fmt.Sprintf("  %-12s %-42s %-16s %10s\n", "Date", "Description", "Category", "Amount"))
	end := min(a.txScroll+a.page(), len(a.transactions))
	for i := a.txScroll; i < end; i++ {
		tx := a.transactions[i]
		marker := "  "
		if a.selected[tx.ID] {
			marker = "• "
		}
		catName := "-"
		if tx.CategoryID != nil {
			if cat := repository.FindCategoryByID(a.categories, *tx.CategoryID); cat != nil {
				catName = cat.Name
			}
		}
		amount := "$" + tx.Amount.Abs().StringFixed(2)
		if tx.IsIncome() {
			amount = "+" + amount
		}
		line := fmt.Sprintf("%s%-12s %-42s %-16s %10s",
			marker, tx.Date, truncate(tx.Description, 40), truncate(catName, 14), amount)
		switch {
		case i == a.txCursor:
			line = selectedStyle.Render(line)
		case tx.IsIncome():
			line = greenStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (a *App) renderCategories() string {
	var b strings.Builder
	catTitle := fmt.Sprintf(" Categories (%d) ", len(a.categories))
	if a.showRules {
		b.WriteString(titleStyle.Render(catTitle) + "\n")
	} else {
		b.WriteString(accentStyle.Render(catTitle) + "\n")
	}
	end := min(a.catScroll+a.page(), len(a.categories))
	for i := a.catScroll; i < end; i++ {
		cat := a.categories[i]
		prefix := "  "
		if cat.ParentID != nil {
			prefix = "  └ "
		}
		line := prefix + cat.Name
		if i == a.catCursor && !a.showRules {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	if len(a.rules) == 0 {
		ruleTitle := " Auto-Categorization Rules "
		if a.showRules {
			b.WriteString(accentStyle.Render(ruleTitle) + "\n")
		} else {
			b.WriteString(titleStyle.Render(ruleTitle) + "\n")
		}
		b.WriteString("  No categorization rules yet\n")
		b.WriteString("  Add rules with :rule <pattern> <category>\n")
		b.WriteString("  e.g. :rule amazon Shopping\n")
		return b.String()
	}
	ruleTitle := fmt.Sprintf(" Rules (%d) | :rule <pattern> <category> to add ", len(a.rules))
	if a.showRules {
		b.WriteString(accentStyle.Render(ruleTitle) + "\n")
	} else {
		b.WriteString(titleStyle.Render(ruleTitle) + "\n")
	}
	b.WriteString(fmt.Sprintf("  %-24s %-18s %s\n", "Pattern", "Category", "Type"))
	end = min(a.ruleScroll+a.page(), len(a.rules))
	for i := a.ruleScroll; i < end; i++ {
		r := a.rules[i]
		catName := "?"
		if cat := repository.FindCategoryByID(a.categories, r.CategoryID); cat != nil {
			catName = cat.Name
		}
		kind := "contains"
		if r.IsRegex {
			kind = "regex"
		}
		line := fmt.Sprintf("  %-24s %-18s %s", truncate(r.Pattern, 22), truncate(catName, 16), kind)
		if i == a.ruleCursor && a.showRules {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (a *App) renderBudgets() string {
	var b strings.Builder
	if len(a.budgets) == 0 {
		b.WriteString(titleStyle.Render(" Budgets ") + "\n")
		b.WriteString("  No budgets set for this month\n")
		b.WriteString("  Use :budget <category> <amount> to set a spending limit\n")
		return b.String()
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf(" Budgets for %s ", a.effMonth())) + "\n")
	spent := make(map[string]decimal.Decimal, len(a.spending))
	for _, cs := range a.spending {
		spent[cs.Category] = cs.Total.Abs()
	}
	end := min(a.budgetScroll+a.page(), len(a.budgets))
	for i := a.budgetScroll; i < end; i++ {
		bd := a.budgets[i]
		name := "Unknown"
		if cat := repository.FindCategoryByID(a.categories, bd.CategoryID); cat != nil {
			name = cat.Name
		}
		s := spent[name]
		ratio, pct := 0.0, 0.0
		if bd.LimitAmount.IsPositive() {
			r, _ := s.Div(bd.LimitAmount).Float64()
			pct = r * 100
			if r > 1 {
				r = 1
			}
			ratio = r
		}
		line := fmt.Sprintf("  %-18s $%s/%s %s %.0f%%",
			truncate(name, 18), s.StringFixed(0), bd.LimitAmount.StringFixed(0),
			progressBar(ratio, 20), pct)
		switch {
		case i == a.budgetCursor:
			line = selectedStyle.Render(line)
		case pct >= 100:
			line = redStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (a *App) renderImport() string {
	var b strings.Builder
	b.WriteString(a.renderImportSteps() + "\n\n")
	switch a.step {
	case stepSelectFile:
		b.WriteString(a.renderFileBrowser())
	case stepMapColumns:
		b.WriteString(a.renderColumnMapper())
	case stepSelectAccount:
		b.WriteString(a.renderAccountPicker())
	case stepPreview:
		b.WriteString(a.renderImportPreview())
	case stepCategorize:
		b.WriteString(a.renderCategorizeWizard())
	case stepComplete:
		b.WriteString(a.renderImportComplete())
	}
	return b.String()
}

func (a *App) renderImportSteps() string {
	steps := []importStep{stepSelectFile, stepMapColumns, stepSelectAccount, stepPreview, stepCategorize, stepComplete}
	labels := []string{"1:File", "2:Map", "3:Account", "4:Preview", "5:Categorize", "6:Done"}
	parts := make([]string, len(steps))
	for i, s := range steps {
		label := " " + labels[i] + " "
		if s == a.step {
			parts[i] = accentStyle.Render(label)
		} else {
			parts[i] = dimStyle.Render(label)
		}
	}
	return " " + strings.Join(parts, ">")
}

func (a *App) renderFileBrowser() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(" Select CSV File ") + "\n")
	b.WriteString(" Path: " + a.browserPath + "\n")
	if a.filterFocused || a.browserFilter != "" {
		line := " Filter: " + a.browserFilter
		if a.filterFocused {
			line = accentStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	entries := a.filteredEntries()
	end := min(a.browserScroll+a.page(), len(entries))
	for i := a.browserScroll; i < end; i++ {
		e := entries[i]
		icon := "📄"
		if e.dir {
			icon = "📁"
		}
		line := fmt.Sprintf("  %s %s", icon, e.name)
		if i == a.browserCursor && !a.filterFocused {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(dimStyle.Render(" j/k to navigate, Enter to select, Esc to cancel ") + "\n")
	return b.String()
}

type mappingRow struct {
	label string
	value string
}

func (a *App) mappingRows() []mappingRow {
	p := a.profile
	if p == nil {
		return nil
	}
	return []mappingRow{
		{"Date Column", strconv.Itoa(p.DateColumn)},
		{"Description Column", strconv.Itoa(p.DescriptionColumn)},
		{"Amount Column", optionalCol(p.AmountColumn)},
		{"Debit Column", optionalCol(p.DebitColumn)},
		{"Credit Column", optionalCol(p.CreditColumn)},
		{"Date Format", p.DateFormat},
		{"Has Header", yesNo(p.HasHeader)},
	}
}

func (a *App) renderColumnMapper() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(" Column Mapping ") + "\n")
	if a.detectedBank != "" {
		b.WriteString(" Auto-detected: " + a.detectedBank + " | Adjust mappings if needed\n")
	} else {
		b.WriteString(" Custom CSV - set column mappings below\n")
	}
	b.WriteString("\n")
	for i, row := range a.mappingRows() {
		line := fmt.Sprintf("  %-22s%s", row.label, row.value)
		if i == a.mapField {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + titleStyle.Render(" Sample Data (first 5 rows) ") + "\n")
	if len(a.importHeaders) > 0 {
		parts := make([]string, len(a.importHeaders))
		for i, h := range a.importHeaders {
			parts[i] = fmt.Sprintf("[%d] %s", i, h)
		}
		b.WriteString("  " + strings.Join(parts, "  ") + "\n")
	}
	for i, row := range a.importRows {
		if i >= 5 {
			break
		}
		b.WriteString("  " + strings.Join(row, " | ") + "\n")
	}
	return b.String()
}

func (a *App) renderAccountPicker() string {
	var b strings.Builder
	if a.creatingAccount {
		b.WriteString(titleStyle.Render(" New Account ") + "\n")
		b.WriteString(" Name: " + a.newAccountName + "▌\n")
		types := repository.AllAccountTypes()
		b.WriteString(" Type: " + string(types[a.newAccountType]) + " (Tab to change)\n")
		b.WriteString(dimStyle.Render(" Enter to create, Esc to cancel ") + "\n")
		return b.String()
	}
	b.WriteString(titleStyle.Render(" Select Account ") + "\n")
	if len(a.accounts) == 0 {
		b.WriteString("  No accounts yet. Press Enter or n to create one.\n")
		return b.String()
	}
	end := min(a.importAcctScroll+a.page(), len(a.accounts))
	for i := a.importAcctScroll; i < end; i++ {
		acct := a.accounts[i]
		line := fmt.Sprintf("  %s (%s)", acct.Name, acct.AccountType)
		if i == a.importAcctCursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(dimStyle.Render(" Enter select | n new account | Esc back ") + "\n")
	return b.String()
}

func (a *App) renderImportPreview() string {
	var b strings.Builder
	title := fmt.Sprintf(" Preview: %d transactions | Enter to commit, Esc to go back ", len(a.batch))
	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(fmt.Sprintf("  %-12s %-52s %10s\n", "Date", "Description", "Amount"))
	for i, tx := range a.batch {
		if i >= 50 {
			break
		}
		b.WriteString(fmt.Sprintf("  %-12s %-52s %10s\n",
			tx.Date, truncate(tx.Description, 50), "$"+tx.Amount.StringFixed(2)))
	}
	return b.String()
}

func (a *App) renderCategorizeWizard() string {
	var b strings.Builder
	if a.wizard.Phase == categorize.PhaseCreating {
		b.WriteString(titleStyle.Render(" New Category ") + "\n")
		b.WriteString(" Name: " + a.newCategoryName + "▌\n")
		b.WriteString(dimStyle.Render(" Enter to create, Esc to cancel ") + "\n")
		return b.String()
	}
	cur, ok := a.wizard.Current()
	if !ok {
		b.WriteString("  Categorization complete\n")
		return b.String()
	}
	pos, total := a.wizard.Position()
	b.WriteString(titleStyle.Render(fmt.Sprintf(" Categorize (%d/%d) ", pos, total)) + "\n")
	b.WriteString(fmt.Sprintf("  %s (%d transaction%s)\n", cur.Description, cur.Count, plural(cur.Count)))
	b.WriteString("\n" + titleStyle.Render(" Pick a category ") + "\n")
	end := min(a.wizardScroll+a.page(), len(a.wizard.Categories))
	for i := a.wizardScroll; i < end; i++ {
		line := "  " + a.wizard.Categories[i].Name
		if i == a.wizard.Selection {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(dimStyle.Render(" Enter assign | s skip | S skip all | n new category | Esc back ") + "\n")
	return b.String()
}

func (a *App) renderImportComplete() string {
	var b strings.Builder
	b.WriteString("  Import complete!\n")
	b.WriteString("  " + a.status + "\n")
	b.WriteString("  Press Enter to view transactions, or :d for dashboard\n")
	return b.String()
}

func (a *App) renderHelp() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(" BudgeTUI Help ") + "\n\n")
	b.WriteString(accentStyle.Render(" Navigation") + "\n")
	b.WriteString("  j/k or Up/Down   Move cursor           1-6        Switch tabs\n")
	b.WriteString("  Tab/Shift-Tab    Cycle tabs            g/G        Top/Bottom\n")
	b.WriteString("  H/L              Prev/Next month       Ctrl-d/u   Page Down/Up\n")
	b.WriteString("  n/p (Dashboard)  Cycle accounts        Ctrl-q     Quit\n\n")
	b.WriteString(accentStyle.Render(" Actions") + "\n")
	b.WriteString("  :               Command mode           /          Search (live)\n")
	b.WriteString("  D (Transactions) Delete transaction    r (Categories) Toggle rules\n")
	b.WriteString("  Enter           Select/Confirm         Esc        Cancel/Back\n")
	b.WriteString("  +/- (Import)    Adjust field value\n\n")
	b.WriteString(accentStyle.Render(" Commands") + "\n")
	names := make([]string, 0, len(commandTable))
	for n := range commandTable {
		if len(n) > 2 {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	seen := make(map[string]bool)
	for _, n := range names {
		desc := commandTable[n].description
		if seen[desc] {
			continue
		}
		seen[desc] = true
		b.WriteString(fmt.Sprintf("  :%-22s %s\n", n, desc))
	}
	b.WriteString("\n" + dimStyle.Render(" Press any key to close ") + "\n")
	return b.String()
}

func (a *App) renderNav() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(" Go to ") + "\n")
	for i, s := range allScreens() {
		line := fmt.Sprintf("  %d  %s", i+1, s)
		if i == a.navCursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(dimStyle.Render(" j/k + Enter, or 1-6 ") + "\n")
	return b.String()
}

func (a *App) renderStatusBar() string {
	mode := modeBarStyles[a.mode].Render(" " + string(a.mode) + " ")
	monthLabel := a.currentMonth
	if monthLabel == "" {
		monthLabel = "All time"
	}
	info := fmt.Sprintf(" %s | %s | %d txns", a.screen, monthLabel, a.txnCount)
	return mode + info + "  " + dimStyle.Render(a.statusHints())
}

func (a *App) statusHints() string {
	switch a.screen {
	case screenDashboard:
		return " H/L month | n/p account | ? help "
	case screenAccounts:
		return " Enter view txns | ? help "
	case screenTransactions:
		return " D delete | /search | :recat | ? help "
	case screenImport:
		switch a.step {
		case stepSelectFile:
			return " j/k navigate | Enter select | Esc back "
		case stepMapColumns:
			return " +/- adjust | Enter preview | Esc back "
		case stepSelectAccount:
			return " Enter select | n new | Esc back "
		case stepPreview:
			return " Enter import | Esc back "
		case stepCategorize:
			return " Enter assign | s skip | S skip all | n new "
		case stepComplete:
			return " Enter view txns | :d dashboard "
		}
	case screenCategories:
		return " r toggle rules | :rule add | ? help "
	case screenBudgets:
		return " :budget set | :delete-budget | ? help "
	}
	return ""
}

func (a *App) renderCommandBar() string {
	switch a.mode {
	case modeCommand:
		return ":" + a.commandInput
	case modeSearch:
		line := "/" + a.searchInput
		if a.searchInput != "" {
			line += fmt.Sprintf("  (%d matches)", len(a.transactions))
		}
		return line
	case modeEditing:
		return "edit> " + a.commandInput
	case modeConfirm:
		return a.confirmMessage + " [y/N] "
	default:
		if a.status != "" {
			return " " + a.status
		}
		return " Press : for commands, / to search, ? for help"
	}
}

// truncate shortens s to at most max runes, replacing the tail with an
// ellipsis when anything was cut.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 0 {
		return ""
	}
	return string(r[:max-1]) + "…"
}

// formatAmount renders a dollar amount with thousands separators and the
// sign before the dollar: "-$1,234.56".
func formatAmount(v decimal.Decimal) string {
	s := v.Abs().StringFixed(2)
	dot := strings.Index(s, ".")
	intPart, frac := s[:dot], s[dot:]
	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)
	out := "$" + strings.Join(groups, ",") + frac
	if v.IsNegative() {
		out = "-" + out
	}
	return out
}

func progressBar(ratio float64, width int) string {
	filled := int(ratio * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

var sparkChars = []rune("▁▂▃▄▅▆▇█")

// sparkline maps each month's spending onto a block character, scaled to
// the busiest month.
func sparkline(trend []repository.MonthTotals) string {
	maxAbs := decimal.Zero
	for _, mt := range trend {
		if v := mt.Expenses.Abs(); v.GreaterThan(maxAbs) {
			maxAbs = v
		}
	}
	if maxAbs.IsZero() {
		return strings.Repeat(string(sparkChars[0]), len(trend))
	}
	var b strings.Builder
	for _, mt := range trend {
		ratio, _ := mt.Expenses.Abs().Div(maxAbs).Float64()
		idx := int(ratio * float64(len(sparkChars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx > len(sparkChars)-1 {
			idx = len(sparkChars) - 1
		}
		b.WriteRune(sparkChars[idx])
	}
	return b.String()
}

func optionalCol(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
