package models

import (
	"fmt"

	"github.com/desertthunder/lendx/internal/shared"
)

// LoanList is the ordered loans of one person.
//
// The backing slice always holds every loan. The active predicate is evaluated on every read of the
// visible loans, so a payment or the passing of a due date shows up without filtering again.
type LoanList struct {
	loans []*Loan
	pred  LoanPredicate
}

// NewLoanList creates a list holding loans, all visible.
func NewLoanList(loans ...*Loan) *LoanList {
	return &LoanList{loans: append([]*Loan(nil), loans...)}
}

// Add appends a loan; it is shown only if it satisfies the active predicate.
func (l *LoanList) Add(loan *Loan) {
	l.loans = append(l.loans, loan)
}

// Remove deletes the loan at index i of the backing list.
func (l *LoanList) Remove(i int) (*Loan, error) {
	if i < 0 || i >= len(l.loans) {
		return nil, fmt.Errorf("%w: loan %d of %d", shared.ErrIndexOutOfRange, i+1, len(l.loans))
	}
	removed := l.loans[i]
	l.loans = append(l.loans[:i], l.loans[i+1:]...)
	return removed, nil
}

// At returns the loan at index i of the backing list.
func (l *LoanList) At(i int) (*Loan, error) {
	if i < 0 || i >= len(l.loans) {
		return nil, fmt.Errorf("%w: loan %d of %d", shared.ErrIndexOutOfRange, i+1, len(l.loans))
	}
	return l.loans[i], nil
}

// Len is the number of loans, hidden ones included.
func (l *LoanList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.loans)
}

// Loans returns every loan in order.
func (l *LoanList) Loans() []*Loan {
	return append([]*Loan(nil), l.loans...)
}

// Filter narrows the visible loans to those satisfying pred. A nil pred shows everything.
func (l *LoanList) Filter(pred LoanPredicate) {
	l.pred = pred
}

// Visible returns the loans passing the active predicate in backing order.
func (l *LoanList) Visible() []*Loan {
	indices := l.VisibleIndices()
	out := make([]*Loan, len(indices))
	for i, idx := range indices {
		out[i] = l.loans[idx]
	}
	return out
}

// VisibleIndices returns the backing indices of the loans passing the active predicate.
func (l *LoanList) VisibleIndices() []int {
	visible := make([]int, 0, len(l.loans))
	for i, loan := range l.loans {
		if l.pred == nil || l.pred(loan) {
			visible = append(visible, i)
		}
	}
	return visible
}

// VisibleLen is the number of visible loans.
func (l *LoanList) VisibleLen() int { return len(l.VisibleIndices()) }

// TotalLoanOwed sums the remaining amount of every loan, visible or not.
func (l *LoanList) TotalLoanOwed() float64 {
	var total float64
	for _, loan := range l.loans {
		total += loan.RemainingOwed()
	}
	return total
}

// MostOverdueMonths is the most negative months-until-due across all loans, or 0 when none is past due.
func (l *LoanList) MostOverdueMonths() int {
	most := 0
	for _, loan := range l.loans {
		most = min(most, loan.MonthsUntilDueDate())
	}
	return most
}

// Equal reports whether both lists hold equal loans in the same order.
func (l *LoanList) Equal(other *LoanList) bool {
	if l == nil || other == nil {
		return l.Len() == other.Len()
	}
	if len(l.loans) != len(other.loans) {
		return false
	}
	for i := range l.loans {
		if !l.loans[i].Equal(other.loans[i]) {
			return false
		}
	}
	return true
}

// Clone deep-copies the loans and keeps the active predicate.
func (l *LoanList) Clone() *LoanList {
	c := &LoanList{pred: l.pred, loans: make([]*Loan, len(l.loans))}
	for i, loan := range l.loans {
		c.loans[i] = loan.Clone()
	}
	return c
}
