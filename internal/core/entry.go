package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const (
	FilterAll     Filter = "all"
	FilterIncome  Filter = "income"
	FilterExpense Filter = "expense"
)

type (
	// Kind tells whether an entry adds to or subtracts from the balance.
	Kind string

	// Filter selects entries by kind when listing.
	Filter string

	// Entry is a single income or expense record.
	Entry struct {
		ID        int64     `json:"id"`
		Amount    Amount    `json:"amount"`
		Kind      Kind      `json:"kind"`
		Category  string    `json:"category"`
		Note      string    `json:"note,omitempty"`
		Timestamp Timestamp `json:"timestamp"`
	}

	// EntryInput carries the mutable fields of an entry for create and update.
	EntryInput struct {
		Kind     Kind
		Amount   Amount
		Category string
		Note     string
	}
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidAmount = fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	ErrEmptyCategory = fmt.Errorf("%w: empty category", ErrInvalidInput)
	ErrInvalidKind   = fmt.Errorf("%w: kind must be income or expense", ErrInvalidInput)
	ErrInvalidFilter = fmt.Errorf("%w: filter must be all, income or expense", ErrInvalidInput)

	ErrNotFound    = errors.New("entry not found")
	ErrPersistence = errors.New("persistence unavailable")
)

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind accepts "income" or "expense", case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

// ParseFilter maps a query value to a Filter. Empty means all.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterIncome, FilterExpense:
		return f, nil
	default:
		return "", ErrInvalidFilter
	}
}

// Match reports whether e passes the filter.
func (f Filter) Match(e Entry) bool {
	switch f {
	case FilterIncome:
		return e.Kind == Income
	case FilterExpense:
		return e.Kind == Expense
	default:
		return true
	}
}

// Normalize trims category and note.
func (in EntryInput) Normalize() EntryInput {
	in.Category = strings.TrimSpace(in.Category)
	in.Note = strings.TrimSpace(in.Note)
	return in
}

func (in EntryInput) Validate() error {
	if !in.Kind.Valid() {
		return ErrInvalidKind
	}
	if !in.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Apply copies the mutable fields onto e, keeping its identity and timestamp.
func (in EntryInput) Apply(e Entry) Entry {
	e.Kind = in.Kind
	e.Amount = in.Amount
	e.Category = in.Category
	e.Note = in.Note
	return e
}

func (e Entry) Validate() error {
	if e.ID <= 0 {
		return errors.New("entry id must be positive")
	}
	if e.Timestamp.IsZero() {
		return errors.New("entry timestamp cannot be zero")
	}
	return EntryInput{Kind: e.Kind, Amount: e.Amount, Category: e.Category}.Validate()
}

// Signed returns the amount with the sign implied by the kind.
func (e Entry) Signed() Amount {
	if e.Kind == Expense {
		return Amount{e.Amount.Neg()}
	}
	return e.Amount
}
