package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/desertthunder/lendx/internal/shared"
	"github.com/shopspring/decimal"
)

// LoanKind tags the interest model of a [Loan].
type LoanKind int

const (
	Simple LoanKind = iota
	Compound
)

// Save string tags for each [LoanKind].
const (
	SimpleTag   = "SIMPLE"
	CompoundTag = "COMPOUND"
)

// FieldSeparator delimits the fields of a loan save string.
const FieldSeparator = "|"

// NullDate marks a missing date in a save string.
const NullDate = "null"

// Tag returns the save string tag of the kind.
func (k LoanKind) Tag() string {
	if k == Compound {
		return CompoundTag
	}
	return SimpleTag
}

func (k LoanKind) String() string {
	if k == Compound {
		return "compound"
	}
	return "simple"
}

// ParseLoanKind maps "simple"/"compound" (or the save string tags) to a [LoanKind].
func ParseLoanKind(s string) (LoanKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple", "s", strings.ToLower(SimpleTag):
		return Simple, nil
	case "compound", "c", strings.ToLower(CompoundTag):
		return Compound, nil
	default:
		return Simple, fmt.Errorf("%w: unknown loan type %q", shared.ErrInvalidArgument, s)
	}
}

// loanValue computes the total value of a loan of the given kind.
// rate is a monthly rate and months the loan length.
func loanValue(kind LoanKind, principal, rate float64, months int) float64 {
	switch kind {
	case Compound:
		return principal * math.Pow(1+rate, float64(months))
	default:
		return principal * (1 + rate*float64(months))
	}
}

// LoanState is the payment state of a [Loan].
type LoanState int

const (
	Active LoanState = iota
	PartiallyPaid
	Paid
)

func (s LoanState) String() string {
	switch s {
	case PartiallyPaid:
		return "partially paid"
	case Paid:
		return "paid"
	default:
		return "active"
	}
}

// Loan is a sum owed by a person. Kind selects how interest accrues; every other field is shared.
//
// Interest is a monthly rate. AmountOwed starts at the loan value and only [Loan.Pay] mutates a loan.
type Loan struct {
	Kind         LoanKind
	Principal    float64
	AmountOwed   float64
	AmountPaid   float64
	Interest     float64
	DueDate      time.Time
	DateCreated  time.Time
	DateLastPaid *time.Time
	IsPaid       bool
}

// NewSimpleLoan grants a loan accruing simple interest.
func NewSimpleLoan(principal, rate float64, created, due time.Time) (*Loan, error) {
	return NewLoan(Simple, principal, rate, created, due)
}

// NewCompoundLoan grants a loan accruing compound interest.
func NewCompoundLoan(principal, rate float64, created, due time.Time) (*Loan, error) {
	return NewLoan(Compound, principal, rate, created, due)
}

// NewLoan grants a loan of the given kind with nothing paid yet.
func NewLoan(kind LoanKind, principal, rate float64, created, due time.Time) (*Loan, error) {
	created, due = Date(created), Date(due)
	switch {
	case principal < 0 || math.IsNaN(principal) || math.IsInf(principal, 0):
		return nil, fmt.Errorf("%w: principal must be a non-negative number", shared.ErrInvalidLoan)
	case rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0):
		return nil, fmt.Errorf("%w: interest rate must be a non-negative number", shared.ErrInvalidLoan)
	case due.Before(created):
		return nil, fmt.Errorf("%w: due date %s is before creation date %s",
			shared.ErrInvalidLoan, due.Format(DateLayout), created.Format(DateLayout))
	}

	l := &Loan{
		Kind:        kind,
		Principal:   principal,
		Interest:    rate,
		DueDate:     due,
		DateCreated: created,
	}
	l.AmountOwed = l.LoanValue()
	l.IsPaid = l.RemainingOwed() <= 0
	return l, nil
}

// Name is the display name of the loan's interest model.
func (l *Loan) Name() string {
	if l.Kind == Compound {
		return "Compound Interest Loan"
	}
	return "Simple Interest Loan"
}

// LoanLengthMonths is the whole-month length from creation to due date.
func (l *Loan) LoanLengthMonths() int {
	return MonthsBetween(l.DateCreated, l.DueDate)
}

// LoanValue is the principal plus all interest over the loan length.
func (l *Loan) LoanValue() float64 {
	return loanValue(l.Kind, l.Principal, l.Interest, l.LoanLengthMonths())
}

// MonthlyInstalmentAmount spreads the loan value evenly over its months.
// A loan shorter than a month has one instalment of the full value.
func (l *Loan) MonthlyInstalmentAmount() float64 {
	months := l.LoanLengthMonths()
	if months <= 0 {
		return l.LoanValue()
	}
	return l.LoanValue() / float64(months)
}

// RemainingOwed is AmountOwed less AmountPaid, never below zero.
func (l *Loan) RemainingOwed() float64 {
	return math.Max(0, l.AmountOwed-l.AmountPaid)
}

// MonthsUntilDueDate is the whole-month distance from today to the due date; negative once past due.
func (l *Loan) MonthsUntilDueDate() int {
	return MonthsBetween(Today(), l.DueDate)
}

// IsOverdue reports whether the due date has passed while the loan is unpaid.
func (l *Loan) IsOverdue() bool {
	return !l.IsPaid && Today().After(l.DueDate)
}

// elapsedInstalments is the number of instalments that have fallen due by today.
func (l *Loan) elapsedInstalments() int {
	elapsed := MonthsBetween(l.DateCreated, Today())
	if elapsed < 0 {
		return 0
	}
	return min(elapsed, max(l.LoanLengthMonths(), 1))
}

// instalmentTolerance absorbs float error when a payment exactly covers whole instalments.
const instalmentTolerance = 1e-9

// paidInstalments is the number of whole instalments covered by AmountPaid.
func (l *Loan) paidInstalments() int {
	instalment := l.MonthlyInstalmentAmount()
	if instalment <= 0 {
		return l.elapsedInstalments()
	}
	return int(math.Floor(l.AmountPaid/instalment + instalmentTolerance))
}

// MissedInstalments reports whether fewer instalments were paid than have fallen due.
func (l *Loan) MissedInstalments() bool {
	if l.IsPaid {
		return false
	}
	return l.elapsedInstalments() > l.paidInstalments()
}

// PaymentDifference is the amount expected by today minus the amount paid.
// Positive means the borrower is behind schedule.
func (l *Loan) PaymentDifference() float64 {
	expected := float64(l.elapsedInstalments()) * l.MonthlyInstalmentAmount()
	return expected - l.AmountPaid
}

// State derives the payment state from the amounts.
func (l *Loan) State() LoanState {
	switch {
	case l.IsPaid:
		return Paid
	case l.AmountPaid > 0:
		return PartiallyPaid
	default:
		return Active
	}
}

// Pay records a payment made today. Paid is terminal.
func (l *Loan) Pay(amount float64) error {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: got %v", shared.ErrInvalidAmount, amount)
	}
	if l.IsPaid {
		return shared.ErrLoanPaid
	}

	today := Today()
	l.AmountPaid += amount
	l.AmountOwed = math.Max(0, l.AmountOwed-amount)
	l.DateLastPaid = &today
	if l.RemainingOwed() <= 0 {
		l.IsPaid = true
	}
	return nil
}

// SaveString encodes the loan as TAG|principal|amountOwed|amountPaid|interest|dueDate|dateLastPaid|dateCreated|isPaid.
func (l *Loan) SaveString() string {
	lastPaid := NullDate
	if l.DateLastPaid != nil {
		lastPaid = l.DateLastPaid.Format(DateLayout)
	}

	return strings.Join([]string{
		l.Kind.Tag(),
		FormatAmount(l.Principal),
		FormatAmount(l.AmountOwed),
		FormatAmount(l.AmountPaid),
		FormatAmount(l.Interest),
		l.DueDate.Format(DateLayout),
		lastPaid,
		l.DateCreated.Format(DateLayout),
		fmt.Sprintf("%t", l.IsPaid),
	}, FieldSeparator)
}

// Equal reports field-for-field equality.
func (l *Loan) Equal(other *Loan) bool {
	if l == other {
		return true
	}
	if l == nil || other == nil {
		return false
	}

	sameLastPaid := (l.DateLastPaid == nil) == (other.DateLastPaid == nil)
	if sameLastPaid && l.DateLastPaid != nil {
		sameLastPaid = l.DateLastPaid.Equal(*other.DateLastPaid)
	}

	return l.Kind == other.Kind &&
		l.Principal == other.Principal &&
		l.AmountOwed == other.AmountOwed &&
		l.AmountPaid == other.AmountPaid &&
		l.Interest == other.Interest &&
		l.DueDate.Equal(other.DueDate) &&
		l.DateCreated.Equal(other.DateCreated) &&
		sameLastPaid &&
		l.IsPaid == other.IsPaid
}

// Clone returns a deep copy of the loan.
func (l *Loan) Clone() *Loan {
	c := *l
	if l.DateLastPaid != nil {
		d := *l.DateLastPaid
		c.DateLastPaid = &d
	}
	return &c
}

func (l *Loan) String() string {
	return fmt.Sprintf("%s: %s remaining of %s, due %s (%s)",
		l.Name(), FormatMoney(l.RemainingOwed()), FormatMoney(l.LoanValue()),
		l.DueDate.Format(DateLayout), l.State())
}

// FormatAmount renders f in the shortest decimal form that parses back to the same float64.
func FormatAmount(f float64) string {
	return decimal.NewFromFloat(f).String()
}

// FormatMoney renders f with two decimal places.
func FormatMoney(f float64) string {
	return decimal.NewFromFloat(f).StringFixed(2)
}
