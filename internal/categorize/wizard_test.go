package categorize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ShaneMarusczak/budgetui/internal/database/repository"
)

func wizardCategories() []repository.Category {
	return []repository.Category{
		{ID: 1, Name: "Dining"},
		{ID: 2, Name: "Gas"},
		{ID: 3, Name: "Groceries"},
	}
}

func wizardBatch() []repository.Transaction {
	done := int64(3)
	netflix := testTxn("NETFLIX.COM")
	netflix.CategoryID = &done
	return []repository.Transaction{
		testTxn("STARBUCKS #123"),
		testTxn("SHELL OIL 5321"),
		testTxn("STARBUCKS #123"),
		netflix,
	}
}

func TestNewWizardQueue(t *testing.T) {
	t.Parallel()

	w := NewWizard(wizardBatch(), wizardCategories())
	require.Equal(t, PhasePicking, w.Phase)
	require.Equal(t, []Pending{
		{Description: "STARBUCKS #123", Count: 2},
		{Description: "SHELL OIL 5321", Count: 1},
	}, w.Queue)

	cur, ok := w.Current()
	require.True(t, ok)
	require.Equal(t, "STARBUCKS #123", cur.Description)

	pos, total := w.Position()
	require.Equal(t, 1, pos)
	require.Equal(t, 2, total)
}

func TestNewWizardNothingToAsk(t *testing.T) {
	t.Parallel()

	w := NewWizard(nil, wizardCategories())
	require.Equal(t, PhaseDone, w.Phase)
	_, ok := w.Current()
	require.False(t, ok)

	id := int64(1)
	categorized := testTxn("COFFEE")
	categorized.CategoryID = &id
	w = NewWizard([]repository.Transaction{categorized}, wizardCategories())
	require.Equal(t, PhaseDone, w.Phase)
}

func TestWizardSelection(t *testing.T) {
	t.Parallel()

	w := NewWizard(wizardBatch(), wizardCategories())

	w, _ = w.Step(SelectionDown{})
	require.Equal(t, 1, w.Selection)
	w, _ = w.Step(SelectionBottom{})
	require.Equal(t, 2, w.Selection)
	w, _ = w.Step(SelectionDown{})
	require.Equal(t, 2, w.Selection)
	w, _ = w.Step(SelectionTop{})
	require.Equal(t, 0, w.Selection)
	w, _ = w.Step(SelectionUp{})
	require.Equal(t, 0, w.Selection)

	w, _ = w.Step(SelectionJump{Letter: 'G'})
	require.Equal(t, 1, w.Selection)
	w, _ = w.Step(SelectionJump{Letter: 'd'})
	require.Equal(t, 0, w.Selection)
	w, _ = w.Step(SelectionJump{Letter: 'x'})
	require.Equal(t, 0, w.Selection)
}

func TestWizardAssign(t *testing.T) {
	t.Parallel()

	w := NewWizard(wizardBatch(), wizardCategories())

	w, effects := w.Step(Assign{})
	require.Equal(t, []Effect{
		PersistRule{Pattern: "starbucks", CategoryID: 1, CategoryName: "Dining"},
		ApplyCategory{CategoryID: 1, CategoryName: "Dining", Description: "STARBUCKS #123", Count: 2},
	}, effects)
	require.Equal(t, PhasePicking, w.Phase)
	require.Equal(t, 1, w.Cursor)

	// Assigning the last description commits.
	w, _ = w.Step(SelectionJump{Letter: 'g'})
	w, effects = w.Step(Assign{})
	require.Equal(t, []Effect{
		PersistRule{Pattern: "shell oil", CategoryID: 2, CategoryName: "Gas"},
		ApplyCategory{CategoryID: 2, CategoryName: "Gas", Description: "SHELL OIL 5321", Count: 1},
		Commit{},
	}, effects)
	require.Equal(t, PhaseDone, w.Phase)
}

func TestWizardSkip(t *testing.T) {
	t.Parallel()

	w := NewWizard(wizardBatch(), wizardCategories())

	w, effects := w.Step(Skip{})
	require.Empty(t, effects)
	require.Equal(t, PhasePicking, w.Phase)
	require.Equal(t, 1, w.Cursor)

	w, effects = w.Step(Skip{})
	require.Equal(t, []Effect{Commit{}}, effects)
	require.Equal(t, PhaseDone, w.Phase)
}

func TestWizardSkipAll(t *testing.T) {
	t.Parallel()

	w := NewWizard(wizardBatch(), wizardCategories())
	w, effects := w.Step(SkipAll{})
	require.Equal(t, []Effect{Commit{}}, effects)
	require.Equal(t, PhaseDone, w.Phase)

	// Events after done are ignored.
	w, effects = w.Step(Assign{})
	require.Empty(t, effects)
	require.Equal(t, PhaseDone, w.Phase)
}

func TestWizardCreate(t *testing.T) {
	t.Parallel()

	w := NewWizard(wizardBatch(), wizardCategories())

	w, effects := w.Step(StartCreate{})
	require.Empty(t, effects)
	require.Equal(t, PhaseCreating, w.Phase)

	// Blank names are ignored; escape returns to picking.
	w, effects = w.Step(SubmitCreate{Name: "   "})
	require.Empty(t, effects)
	require.Equal(t, PhaseCreating, w.Phase)
	w, _ = w.Step(CancelCreate{})
	require.Equal(t, PhasePicking, w.Phase)

	w, _ = w.Step(StartCreate{})
	w, effects = w.Step(SubmitCreate{Name: " Coffee Shops "})
	require.Equal(t, []Effect{
		PersistCategory{Name: "Coffee Shops"},
		PersistRule{Pattern: "starbucks", CategoryName: "Coffee Shops"},
		ApplyCategory{CategoryName: "Coffee Shops", Description: "STARBUCKS #123", Count: 2},
	}, effects)
	require.Equal(t, PhasePicking, w.Phase)
	require.Equal(t, 1, w.Cursor)

	// The persisted category joins the snapshot for later picks.
	w, _ = w.Step(CategoryCreated{Category: repository.Category{ID: 9, Name: "Coffee Shops"}})
	require.Len(t, w.Categories, 4)
	w, _ = w.Step(SelectionJump{Letter: 'c'})
	require.Equal(t, 3, w.Selection)
}

func TestWizardAbandon(t *testing.T) {
	t.Parallel()

	w := NewWizard(wizardBatch(), wizardCategories())
	w, effects := w.Step(Abandon{})
	require.Equal(t, []Effect{AbandonImport{}}, effects)
	require.Equal(t, PhaseDone, w.Phase)

	w = NewWizard(wizardBatch(), wizardCategories())
	w, _ = w.Step(StartCreate{})
	w, effects = w.Step(Abandon{})
	require.Equal(t, []Effect{AbandonImport{}}, effects)
	require.Equal(t, PhaseDone, w.Phase)
}

func TestApplyCategoryToBatch(t *testing.T) {
	t.Parallel()

	txns := wizardBatch()
	n := ApplyCategoryToBatch(txns, "STARBUCKS #123", 1)
	require.Equal(t, 2, n)
	require.Equal(t, int64(1), *txns[0].CategoryID)
	require.Nil(t, txns[1].CategoryID)
	require.Equal(t, int64(1), *txns[2].CategoryID)
	require.Equal(t, int64(3), *txns[3].CategoryID)

	// Already categorized rows are never reassigned.
	require.Zero(t, ApplyCategoryToBatch(txns, "STARBUCKS #123", 2))
	require.Equal(t, int64(1), *txns[0].CategoryID)
}

// Walks a whole wizard pass and checks that afterwards every transaction is
// either categorized or belongs to a description the operator skipped.
func TestWizardCoverage(t *testing.T) {
	t.Parallel()

	txns := wizardBatch()
	w := NewWizard(txns, wizardCategories())

	run := func(effects []Effect) {
		for _, e := range effects {
			if apply, ok := e.(ApplyCategory); ok {
				id := apply.CategoryID
				if id == 0 {
					id = 42
				}
				require.Equal(t, apply.Count, ApplyCategoryToBatch(txns, apply.Description, id))
			}
		}
	}

	var effects []Effect
	w, effects = w.Step(Assign{})
	run(effects)
	w, effects = w.Step(Skip{})
	run(effects)
	require.Equal(t, PhaseDone, w.Phase)

	require.NotNil(t, txns[0].CategoryID)
	require.Nil(t, txns[1].CategoryID) // skipped
	require.NotNil(t, txns[2].CategoryID)
	require.NotNil(t, txns[3].CategoryID)
}
