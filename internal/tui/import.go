package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShaneMarusczak/budgetui/internal/categorize"
	"github.com/ShaneMarusczak/budgetui/internal/database/repository"
	"github.com/ShaneMarusczak/budgetui/internal/importer"
	"github.com/ShaneMarusczak/budgetui/internal/service"
)

// mapFieldCount covers the adjustable mapping rows: date, description,
// amount, debit, credit columns, then date format and the header flag.
const mapFieldCount = 7

var importExtensions = map[string]bool{
	".csv": true,
	".tsv": true,
	".ofx": true,
	".qfx": true,
	".qif": true,
}

// refreshBrowser re-reads the current directory. Directories sort before
// files; only importable extensions are listed.
func (a *App) refreshBrowser() {
	a.browserEntries = a.browserEntries[:0]
	a.browserCursor, a.browserScroll = 0, 0
	a.browserFilter = ""
	a.filterFocused = false

	if parent := filepath.Dir(a.browserPath); parent != a.browserPath {
		a.browserEntries = append(a.browserEntries, browserEntry{name: "..", path: parent, dir: true})
	}

	entries, err := os.ReadDir(a.browserPath)
	if err != nil {
		return
	}
	var dirs, files []browserEntry
	for _, e := range entries {
		name := e.Name()
		if !a.showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(a.browserPath, name)
		if e.IsDir() {
			dirs = append(dirs, browserEntry{name: name, path: full, dir: true})
			continue
		}
		if importExtensions[strings.ToLower(filepath.Ext(name))] {
			files = append(files, browserEntry{name: name, path: full, dir: false})
		}
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].name < dirs[j].name })
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	a.browserEntries = append(a.browserEntries, dirs...)
	a.browserEntries = append(a.browserEntries, files...)
}

// filteredEntries applies the browser filter; the ".." entry always passes.
func (a *App) filteredEntries() []browserEntry {
	if a.browserFilter == "" {
		return a.browserEntries
	}
	q := strings.ToLower(a.browserFilter)
	var out []browserEntry
	for _, e := range a.browserEntries {
		if e.name == ".." || strings.Contains(strings.ToLower(e.name), q) {
			out = append(out, e)
		}
	}
	return out
}

func (a *App) handleBrowserFilterKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		if a.browserFilter != "" {
			a.browserFilter = ""
			a.browserCursor, a.browserScroll = 0, 0
		} else {
			a.filterFocused = false
		}
	case tea.KeyEnter:
		var matches []browserEntry
		for _, e := range a.filteredEntries() {
			if e.name != ".." {
				matches = append(matches, e)
			}
		}
		a.filterFocused = false
		if len(matches) == 1 {
			e := matches[0]
			if e.dir {
				a.browserPath = e.path
				a.refreshBrowser()
				return a, nil
			}
			return a, a.loadFileCmd(e.path)
		}
	case tea.KeyDown, tea.KeyTab:
		a.filterFocused = false
	case tea.KeyBackspace, tea.KeyCtrlH:
		if a.browserFilter != "" {
			a.browserFilter = trimLastRune(a.browserFilter)
			a.browserCursor, a.browserScroll = 0, 0
		} else {
			a.browserPath = filepath.Dir(a.browserPath)
			a.refreshBrowser()
			a.filterFocused = true
		}
	case tea.KeySpace:
		a.browserFilter += " "
		a.browserCursor, a.browserScroll = 0, 0
	case tea.KeyRunes:
		a.browserFilter += string(m.Runes)
		a.browserCursor, a.browserScroll = 0, 0
	}
	return a, nil
}

func (a *App) handleSelectAccountKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.creatingAccount {
		switch m.Type {
		case tea.KeyEnter:
			name := strings.TrimSpace(a.newAccountName)
			if name == "" {
				return a, nil
			}
			return a, a.createImportAccountCmd(name, a.newAccountType)
		case tea.KeyEsc:
			a.creatingAccount = false
			a.newAccountName = ""
		case tea.KeyBackspace, tea.KeyCtrlH:
			a.newAccountName = trimLastRune(a.newAccountName)
		case tea.KeyTab:
			a.newAccountType = (a.newAccountType + 1) % len(repository.AllAccountTypes())
		case tea.KeySpace:
			a.newAccountName += " "
		case tea.KeyRunes:
			switch string(m.Runes) {
			case "+", "=":
				a.newAccountType = (a.newAccountType + 1) % len(repository.AllAccountTypes())
			case "-":
				n := len(repository.AllAccountTypes())
				a.newAccountType = (a.newAccountType - 1 + n) % n
			default:
				a.newAccountName += string(m.Runes)
			}
		}
		return a, nil
	}

	switch s := m.String(); s {
	case "j", "down":
		scrollDown(&a.importAcctCursor, &a.importAcctScroll, len(a.accounts), a.page())
	case "k", "up":
		scrollUp(&a.importAcctCursor, &a.importAcctScroll)
	case "g":
		scrollTop(&a.importAcctCursor, &a.importAcctScroll)
	case "G":
		scrollBottom(&a.importAcctCursor, &a.importAcctScroll, len(a.accounts), a.page())
	case "n":
		a.creatingAccount = true
		a.newAccountName = ""
	case "enter":
		if len(a.accounts) == 0 {
			a.creatingAccount = true
			a.newAccountName = ""
			return a, nil
		}
		acct := a.accounts[a.importAcctCursor]
		a.importAccountID = acct.ID
		if a.profile != nil {
			service.ApplyAccount(a.profile, acct, a.detectedBank != "")
		}
		a.status = "Using account: " + acct.Name
		return a, a.previewCmd()
	case "esc":
		a.step = stepMapColumns
	case "ctrl+q", "ctrl+c":
		return a, tea.Quit
	case ":":
		a.mode = modeCommand
		a.commandInput = ""
	case "?":
		a.showHelp = true
	}
	return a, nil
}

func (a *App) handleCategorizeKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.wizard.Phase == categorize.PhaseCreating {
		switch m.Type {
		case tea.KeyEnter:
			name := strings.TrimSpace(a.newCategoryName)
			if name == "" {
				return a, nil
			}
			a.newCategoryName = ""
			w, effects := a.wizard.Step(categorize.SubmitCreate{Name: name})
			a.wizard = w
			return a, a.runWizardEffects(w, effects)
		case tea.KeyEsc:
			a.newCategoryName = ""
			w, _ := a.wizard.Step(categorize.CancelCreate{})
			a.wizard = w
		case tea.KeyBackspace, tea.KeyCtrlH:
			if a.newCategoryName != "" {
				a.newCategoryName = trimLastRune(a.newCategoryName)
			} else {
				w, _ := a.wizard.Step(categorize.CancelCreate{})
				a.wizard = w
			}
		case tea.KeySpace:
			a.newCategoryName += " "
		case tea.KeyRunes:
			a.newCategoryName += string(m.Runes)
		}
		return a, nil
	}

	switch s := m.String(); s {
	case "esc":
		w, _ := a.wizard.Step(categorize.Abandon{})
		a.wizard = w
		a.step = stepPreview
		a.status = "Back to preview - categories already assigned will be kept"
	case "enter":
		w, effects := a.wizard.Step(categorize.Assign{})
		a.wizard = w
		return a, a.runWizardEffects(w, effects)
	case "s":
		w, effects := a.wizard.Step(categorize.Skip{})
		a.wizard = w
		if len(effects) == 0 {
			a.status = "Skipped - moving to next"
			return a, nil
		}
		return a, a.runWizardEffects(w, effects)
	case "S":
		w, effects := a.wizard.Step(categorize.SkipAll{})
		a.wizard = w
		return a, a.runWizardEffects(w, effects)
	case "n":
		w, _ := a.wizard.Step(categorize.StartCreate{})
		a.wizard = w
		a.newCategoryName = ""
	case "j", "down":
		w, _ := a.wizard.Step(categorize.SelectionDown{})
		a.wizard = w
		a.clampWizardScroll()
	case "k", "up":
		w, _ := a.wizard.Step(categorize.SelectionUp{})
		a.wizard = w
		a.clampWizardScroll()
	case "g":
		w, _ := a.wizard.Step(categorize.SelectionTop{})
		a.wizard = w
		a.wizardScroll = 0
	case "G":
		w, _ := a.wizard.Step(categorize.SelectionBottom{})
		a.wizard = w
		a.clampWizardScroll()
	case "ctrl+d":
		for i := 0; i < a.visibleRows/2; i++ {
			w, _ := a.wizard.Step(categorize.SelectionDown{})
			a.wizard = w
		}
		a.clampWizardScroll()
	case "ctrl+u":
		for i := 0; i < a.visibleRows/2; i++ {
			w, _ := a.wizard.Step(categorize.SelectionUp{})
			a.wizard = w
		}
		a.clampWizardScroll()
	case "ctrl+q", "ctrl+c":
		return a, tea.Quit
	default:
		r := []rune(s)
		if len(r) == 1 {
			w, _ := a.wizard.Step(categorize.SelectionJump{Letter: r[0]})
			a.wizard = w
			a.clampWizardScroll()
		}
	}
	return a, nil
}

// runWizardEffects executes the effects of one wizard step against the
// database and mutates the in-memory batch. Category creation feeds the
// resulting row back into the wizard before the remaining effects run.
func (a *App) runWizardEffects(w categorize.Wizard, effects []categorize.Effect) tea.Cmd {
	if len(effects) == 0 {
		return nil
	}
	return func() tea.Msg {
		wizard := w
		status := ""
		createdID := int64(0)
		createdName := ""
		refreshCats := false
		for _, eff := range effects {
			switch e := eff.(type) {
			case categorize.PersistCategory:
				id, err := a.repos.Categories.Insert(a.ctx, repository.Category{Name: e.Name})
				if err != nil {
					return errMsg{err}
				}
				createdID, createdName = id, e.Name
				wizard, _ = wizard.Step(categorize.CategoryCreated{
					Category: repository.Category{ID: id, Name: e.Name},
				})
				refreshCats = true
			case categorize.PersistRule:
				if e.Pattern == "" {
					continue
				}
				catID := e.CategoryID
				if catID == 0 {
					catID = createdID
				}
				if catID == 0 {
					continue
				}
				if _, err := a.repos.Rules.Insert(a.ctx, repository.NewContainsRule(e.Pattern, catID)); err != nil {
					return errMsg{err}
				}
			case categorize.ApplyCategory:
				catID := e.CategoryID
				if catID == 0 {
					catID = createdID
				}
				n := categorize.ApplyCategoryToBatch(a.batch, e.Description, catID)
				if createdName != "" {
					status = fmt.Sprintf("Created '%s' and categorized %d transaction%s", createdName, n, plural(n))
				} else {
					status = fmt.Sprintf("Categorized %d transaction%s as '%s'", n, plural(n), e.CategoryName)
				}
			case categorize.Commit:
				suggestions := a.services.Import.SuggestRules(a.batch, 3)
				res, err := a.services.Import.Commit(a.ctx, a.batch, a.runMeta())
				if err != nil {
					return errMsg{err}
				}
				return importDoneMsg{status: service.WithSuggestions(res.Status, suggestions)}
			case categorize.AbandonImport:
				// handled synchronously in the key handler
			}
		}
		return wizardStepMsg{wizard: wizard, status: status, refreshCats: refreshCats}
	}
}

// adjustField tweaks the mapping row under the cursor on the Map Columns
// step. Optional columns step through unset at zero: decrementing past
// column 0 clears them, incrementing an unset one lands on column 0.
func (a *App) adjustField(delta int) {
	if a.screen != screenImport || a.step != stepMapColumns || a.profile == nil {
		return
	}
	maxCol := len(a.importHeaders) - 1
	if maxCol < 0 {
		maxCol = 0
	}
	switch a.mapField {
	case 0:
		a.profile.DateColumn = adjustColumn(a.profile.DateColumn, delta, maxCol)
	case 1:
		a.profile.DescriptionColumn = adjustColumn(a.profile.DescriptionColumn, delta, maxCol)
	case 2:
		a.profile.AmountColumn = adjustOptionalColumn(a.profile.AmountColumn, delta, maxCol)
	case 3:
		a.profile.DebitColumn = adjustOptionalColumn(a.profile.DebitColumn, delta, maxCol)
	case 4:
		a.profile.CreditColumn = adjustOptionalColumn(a.profile.CreditColumn, delta, maxCol)
	case 5:
		a.profile.DateFormat = cycleDateFormat(a.profile.DateFormat, delta)
	case 6:
		a.profile.HasHeader = !a.profile.HasHeader
	}
}

func adjustColumn(v, delta, maxCol int) int {
	n := v + delta
	if n < 0 {
		n = 0
	}
	if n > maxCol {
		n = maxCol
	}
	return n
}

func adjustOptionalColumn(v *int, delta, maxCol int) *int {
	if v == nil {
		if delta > 0 {
			n := 0
			return &n
		}
		return nil
	}
	n := *v + delta
	if n < 0 {
		return nil
	}
	if n > maxCol {
		n = maxCol
	}
	return &n
}

func cycleDateFormat(current string, delta int) string {
	formats := importer.KnownDateFormats
	idx := 0
	for i, f := range formats {
		if f == current {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(formats)) % len(formats)
	return formats[idx]
}

// applyPackProfile cycles through the user-defined CSV profiles, copying
// the next one over the current mapping.
func (a *App) applyPackProfile() {
	if len(a.packProfiles) == 0 {
		a.status = "No custom profiles loaded"
		return
	}
	p := a.packProfiles[a.packIndex%len(a.packProfiles)]
	a.packIndex++
	clone := *p
	clone.AmountColumn = copyCol(p.AmountColumn)
	clone.DebitColumn = copyCol(p.DebitColumn)
	clone.CreditColumn = copyCol(p.CreditColumn)
	a.profile = &clone
	a.detectedBank = p.Name
	a.status = "Applied profile: " + p.Name
}

func copyCol(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func (a *App) loadFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		preview, err := a.services.Import.LoadPreview(path)
		if err != nil {
			return statusMsg("Error loading file: " + err.Error())
		}
		return fileLoadedMsg{path: path, preview: preview}
	}
}

func (a *App) importAccountsCmd() tea.Cmd {
	return func() tea.Msg {
		list, err := a.repos.Accounts.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return importAccountsMsg(list)
	}
}

func (a *App) createImportAccountCmd(name string, typeIdx int) tea.Cmd {
	return func() tea.Msg {
		types := repository.AllAccountTypes()
		at := repository.AccountChecking
		if typeIdx >= 0 && typeIdx < len(types) {
			at = types[typeIdx]
		}
		acct := repository.NewAccount(name, at, "")
		id, err := a.repos.Accounts.Insert(a.ctx, acct)
		if err != nil {
			return errMsg{err}
		}
		acct.ID = id
		list, err := a.repos.Accounts.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return importAccountCreatedMsg{account: acct, accounts: list}
	}
}

func (a *App) previewCmd() tea.Cmd {
	accountID := a.importAccountID
	if accountID == 0 {
		accountID = 1
	}
	return func() tea.Msg {
		batch, err := a.services.Import.BuildBatch(a.importRows, a.profile, accountID)
		if err != nil {
			return statusMsg("Error generating preview: " + err.Error())
		}
		return previewReadyMsg{batch: batch}
	}
}

// categorizePlanCmd runs the rule engine over the pending batch and opens
// the wizard on whatever is left uncategorized. A fully categorized batch
// commits immediately.
func (a *App) categorizePlanCmd() tea.Cmd {
	return func() tea.Msg {
		result, err := a.services.Import.Categorize(a.ctx, a.batch)
		if err != nil {
			return errMsg{err}
		}
		cats, err := a.repos.Categories.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		w := categorize.NewWizard(a.batch, cats)
		if w.Phase == categorize.PhaseDone {
			suggestions := a.services.Import.SuggestRules(a.batch, 3)
			res, err := a.services.Import.Commit(a.ctx, a.batch, a.runMeta())
			if err != nil {
				return errMsg{err}
			}
			return importDoneMsg{status: service.WithSuggestions(res.Status, suggestions)}
		}
		return categorizePlanMsg{wizard: w, result: result}
	}
}

type fileLoadedMsg struct {
	path    string
	preview service.ImportPreview
}

type importAccountsMsg []repository.Account

type importAccountCreatedMsg struct {
	account  repository.Account
	accounts []repository.Account
}

type previewReadyMsg struct {
	batch []repository.Transaction
}

type categorizePlanMsg struct {
	wizard categorize.Wizard
	result service.CategorizeResult
}

type wizardStepMsg struct {
	wizard      categorize.Wizard
	status      string
	refreshCats bool
}

type importDoneMsg struct {
	status string
}

type exportDoneMsg struct {
	count int
	path  string
}
