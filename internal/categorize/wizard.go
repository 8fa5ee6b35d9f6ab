package categorize

import (
	"slices"
	"strings"
	"unicode"

	"github.com/ShaneMarusczak/budgetui/internal/database/repository"
)

// WizardPhase names the lifecycle stage of a categorization wizard.
type WizardPhase int

const (
	// PhaseCollecting is the zero value. NewWizard collects synchronously,
	// so a constructed wizard is already picking or done.
	PhaseCollecting WizardPhase = iota
	PhasePicking
	PhaseCreating
	PhaseDone
)

// Pending is one unique uncategorized description together with how many
// transactions in the batch share it.
type Pending struct {
	Description string
	Count       int
}

// Event is operator input fed into Step.
type Event interface{ wizardEvent() }

type (
	// SelectionDown moves the category selection down one entry.
	SelectionDown struct{}
	// SelectionUp moves the category selection up one entry.
	SelectionUp struct{}
	// SelectionTop jumps the selection to the first category.
	SelectionTop struct{}
	// SelectionBottom jumps the selection to the last category.
	SelectionBottom struct{}
	// SelectionJump moves the selection to the first category whose name
	// starts with Letter, ignoring case.
	SelectionJump struct{ Letter rune }
	// Assign applies the selected category to the current description and
	// persists a suggested rule for it.
	Assign struct{}
	// Skip leaves the current description uncategorized and moves on.
	Skip struct{}
	// SkipAll leaves every remaining description uncategorized and commits.
	SkipAll struct{}
	// StartCreate switches to typing a new category name.
	StartCreate struct{}
	// CancelCreate returns from creating to picking without side effects.
	CancelCreate struct{}
	// SubmitCreate finishes creating a category with the typed name. Blank
	// names are ignored.
	SubmitCreate struct{ Name string }
	// CategoryCreated feeds a category persisted by the caller back into the
	// snapshot so later picks can select it.
	CategoryCreated struct{ Category repository.Category }
	// Abandon backs out of the wizard. Assignments already applied stay
	// applied; nothing is committed.
	Abandon struct{}
)

func (SelectionDown) wizardEvent()   {}
func (SelectionUp) wizardEvent()     {}
func (SelectionTop) wizardEvent()    {}
func (SelectionBottom) wizardEvent() {}
func (SelectionJump) wizardEvent()   {}
func (Assign) wizardEvent()          {}
func (Skip) wizardEvent()            {}
func (SkipAll) wizardEvent()         {}
func (StartCreate) wizardEvent()     {}
func (CancelCreate) wizardEvent()    {}
func (SubmitCreate) wizardEvent()    {}
func (CategoryCreated) wizardEvent() {}
func (Abandon) wizardEvent()         {}

// Effect is an instruction returned by Step for the caller to execute. The
// wizard itself never touches storage or the batch.
type Effect interface{ wizardEffect() }

type (
	// PersistCategory stores a brand-new category.
	PersistCategory struct{ Name string }
	// PersistRule stores a contains rule. CategoryID zero refers to the
	// category persisted earlier in the same effect list.
	PersistRule struct {
		Pattern      string
		CategoryID   int64
		CategoryName string
	}
	// ApplyCategory assigns the category to every batch transaction sharing
	// Description. CategoryID zero refers to the category persisted earlier
	// in the same effect list.
	ApplyCategory struct {
		CategoryID   int64
		CategoryName string
		Description  string
		Count        int
	}
	// Commit inserts the batch.
	Commit struct{}
	// AbandonImport returns to the preview without committing.
	AbandonImport struct{}
)

func (PersistCategory) wizardEffect() {}
func (PersistRule) wizardEffect()     {}
func (ApplyCategory) wizardEffect()   {}
func (Commit) wizardEffect()          {}
func (AbandonImport) wizardEffect()   {}

// Wizard walks the operator through the descriptions the rule pass could not
// categorize. State transitions are pure: Step returns the next state plus
// effects, and the caller decides how to run them.
type Wizard struct {
	Phase      WizardPhase
	Queue      []Pending
	Cursor     int
	Selection  int
	Categories []repository.Category
}

// NewWizard derives the unique uncategorized descriptions from the batch in
// first-seen order. categories is a snapshot taken at wizard start; anything
// created mid-wizard is appended via CategoryCreated. An empty queue means
// there is nothing to ask, and the wizard starts done.
func NewWizard(txns []repository.Transaction, categories []repository.Category) Wizard {
	var queue []Pending
	index := make(map[string]int)
	for _, tx := range txns {
		if tx.CategoryID != nil {
			continue
		}
		if i, ok := index[tx.OriginalDescription]; ok {
			queue[i].Count++
			continue
		}
		index[tx.OriginalDescription] = len(queue)
		queue = append(queue, Pending{Description: tx.OriginalDescription, Count: 1})
	}

	phase := PhasePicking
	if len(queue) == 0 {
		phase = PhaseDone
	}
	return Wizard{Phase: phase, Queue: queue, Categories: categories}
}

// Current returns the description under the cursor while the wizard is
// still asking.
func (w Wizard) Current() (Pending, bool) {
	if w.Phase != PhasePicking && w.Phase != PhaseCreating {
		return Pending{}, false
	}
	if w.Cursor >= len(w.Queue) {
		return Pending{}, false
	}
	return w.Queue[w.Cursor], true
}

// Position reports the 1-based cursor position and the queue length.
func (w Wizard) Position() (int, int) {
	pos := w.Cursor + 1
	if pos > len(w.Queue) {
		pos = len(w.Queue)
	}
	return pos, len(w.Queue)
}

// Step advances the state machine by one event.
func (w Wizard) Step(ev Event) (Wizard, []Effect) {
	switch w.Phase {
	case PhasePicking:
		return w.stepPicking(ev)
	case PhaseCreating:
		return w.stepCreating(ev)
	default:
		return w, nil
	}
}

func (w Wizard) stepPicking(ev Event) (Wizard, []Effect) {
	switch ev := ev.(type) {
	case SelectionDown:
		if w.Selection+1 < len(w.Categories) {
			w.Selection++
		}
	case SelectionUp:
		if w.Selection > 0 {
			w.Selection--
		}
	case SelectionTop:
		w.Selection = 0
	case SelectionBottom:
		if len(w.Categories) > 0 {
			w.Selection = len(w.Categories) - 1
		}
	case SelectionJump:
		lower := unicode.ToLower(ev.Letter)
		for i, c := range w.Categories {
			if unicode.ToLower(firstRune(c.Name)) == lower {
				w.Selection = i
				break
			}
		}
	case Assign:
		cur, ok := w.Current()
		if !ok || w.Selection >= len(w.Categories) {
			return w, nil
		}
		cat := w.Categories[w.Selection]
		return w.advance([]Effect{
			PersistRule{Pattern: Suggest(cur.Description), CategoryID: cat.ID, CategoryName: cat.Name},
			ApplyCategory{CategoryID: cat.ID, CategoryName: cat.Name, Description: cur.Description, Count: cur.Count},
		})
	case Skip:
		return w.advance(nil)
	case SkipAll:
		w.Phase = PhaseDone
		return w, []Effect{Commit{}}
	case StartCreate:
		w.Phase = PhaseCreating
	case CategoryCreated:
		w.Categories = append(slices.Clone(w.Categories), ev.Category)
	case Abandon:
		w.Phase = PhaseDone
		return w, []Effect{AbandonImport{}}
	}
	return w, nil
}

func (w Wizard) stepCreating(ev Event) (Wizard, []Effect) {
	switch ev := ev.(type) {
	case CancelCreate:
		w.Phase = PhasePicking
	case SubmitCreate:
		name := strings.TrimSpace(ev.Name)
		if name == "" {
			return w, nil
		}
		cur, ok := w.Current()
		if !ok {
			w.Phase = PhaseDone
			return w, []Effect{Commit{}}
		}
		return w.advance([]Effect{
			PersistCategory{Name: name},
			PersistRule{Pattern: Suggest(cur.Description), CategoryName: name},
			ApplyCategory{CategoryName: name, Description: cur.Description, Count: cur.Count},
		})
	case CategoryCreated:
		w.Categories = append(slices.Clone(w.Categories), ev.Category)
	case Abandon:
		w.Phase = PhaseDone
		return w, []Effect{AbandonImport{}}
	}
	return w, nil
}

// advance moves past the current description, appending a commit once the
// queue is exhausted.
func (w Wizard) advance(effects []Effect) (Wizard, []Effect) {
	w.Cursor++
	if w.Cursor >= len(w.Queue) {
		w.Phase = PhaseDone
		effects = append(effects, Commit{})
	} else {
		w.Phase = PhasePicking
	}
	return w, effects
}

// ApplyCategoryToBatch fans one wizard assignment out to every uncategorized
// transaction sharing the exact original description. Returns how many rows
// were updated.
func ApplyCategoryToBatch(txns []repository.Transaction, description string, categoryID int64) int {
	n := 0
	for i := range txns {
		if txns[i].CategoryID == nil && txns[i].OriginalDescription == description {
			id := categoryID
			txns[i].CategoryID = &id
			n++
		}
	}
	return n
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
