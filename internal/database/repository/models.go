package repository

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies an account for sign conventions and reporting.
type AccountType string

const (
	AccountChecking   AccountType = "Checking"
	AccountSavings    AccountType = "Savings"
	AccountCreditCard AccountType = "Credit Card"
	AccountInvestment AccountType = "Investment"
	AccountCash       AccountType = "Cash"
	AccountLoan       AccountType = "Loan"
	AccountOther      AccountType = "Other"
)

// AllAccountTypes lists the supported account types in display order.
func AllAccountTypes() []AccountType {
	return []AccountType{
		AccountChecking, AccountSavings, AccountCreditCard,
		AccountInvestment, AccountCash, AccountLoan, AccountOther,
	}
}

// ParseAccountType maps free-form user input to a known type. Unrecognized
// input falls back to Other.
func ParseAccountType(s string) AccountType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "checking":
		return AccountChecking
	case "savings":
		return AccountSavings
	case "credit card", "creditcard", "credit":
		return AccountCreditCard
	case "investment":
		return AccountInvestment
	case "cash":
		return AccountCash
	case "loan":
		return AccountLoan
	default:
		return AccountOther
	}
}

// IsCredit reports whether the account balance represents debt, which flips
// the usual income/expense reading of transaction signs.
func (t AccountType) IsCredit() bool {
	return t == AccountCreditCard || t == AccountLoan
}

// DebitAccountTypes lists the asset-side account types.
func DebitAccountTypes() []AccountType {
	return []AccountType{AccountChecking, AccountSavings, AccountCash, AccountInvestment, AccountOther}
}

// CreditAccountTypes lists the debt-side account types.
func CreditAccountTypes() []AccountType {
	return []AccountType{AccountCreditCard, AccountLoan}
}

// Account represents an account row.
type Account struct {
	ID          int64
	Name        string
	AccountType AccountType
	Institution string
	Currency    string
	Notes       string
	CreatedAt   string
}

// NewAccount builds an account with the USD default currency.
func NewAccount(name string, accountType AccountType, institution string) Account {
	return Account{
		Name:        name,
		AccountType: accountType,
		Institution: institution,
		Currency:    "USD",
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
}

// Category represents a category row.
type Category struct {
	ID       int64
	Name     string
	ParentID *int64
	Icon     string
	Color    string
}

// FindCategoryByID returns the category with the given id, or nil.
func FindCategoryByID(cats []Category, id int64) *Category {
	for i := range cats {
		if cats[i].ID == id {
			return &cats[i]
		}
	}
	return nil
}

// FindCategoryByName matches case-insensitively, or returns nil.
func FindCategoryByName(cats []Category, name string) *Category {
	want := strings.ToLower(name)
	for i := range cats {
		if strings.ToLower(cats[i].Name) == want {
			return &cats[i]
		}
	}
	return nil
}

// Transaction represents a transaction row. Date is ISO YYYY-MM-DD and the
// amount is an exact decimal, stored as TEXT. OriginalDescription holds the
// raw source text and never changes; Description is user-editable.
type Transaction struct {
	ID                  int64
	AccountID           int64
	Date                string
	Description         string
	OriginalDescription string
	Amount              decimal.Decimal
	CategoryID          *int64
	Notes               string
	IsTransfer          bool
	ImportHash          string
	CreatedAt           string
}

// IsIncome reports a positive amount.
func (t Transaction) IsIncome() bool { return t.Amount.IsPositive() }

// IsExpense reports a negative amount.
func (t Transaction) IsExpense() bool { return t.Amount.IsNegative() }

// AbsAmount returns the magnitude of the amount.
func (t Transaction) AbsAmount() decimal.Decimal { return t.Amount.Abs() }

// ImportRule assigns a category to transactions whose original description
// matches the pattern, either as a substring or a regular expression.
type ImportRule struct {
	ID         int64
	Pattern    string
	CategoryID int64
	IsRegex    bool
	Priority   int
}

// NewContainsRule builds a substring rule at default priority.
func NewContainsRule(pattern string, categoryID int64) ImportRule {
	return ImportRule{Pattern: pattern, CategoryID: categoryID}
}

// NewRegexRule builds a regex rule at default priority.
func NewRegexRule(pattern string, categoryID int64) ImportRule {
	return ImportRule{Pattern: pattern, CategoryID: categoryID, IsRegex: true}
}

// Budget caps one category's spending for one month (YYYY-MM).
type Budget struct {
	ID          int64
	CategoryID  int64
	Month       string
	LimitAmount decimal.Decimal
}

// NewBudget builds a budget row for the given category and month.
func NewBudget(categoryID int64, month string, limit decimal.Decimal) Budget {
	return Budget{CategoryID: categoryID, Month: month, LimitAmount: limit}
}

// ImportRun records one committed CSV import for auditing.
type ImportRun struct {
	ID          string
	AccountID   int64
	FileName    string
	ProfileName string
	Imported    int
	Duplicates  int
	CreatedAt   string
}
