package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/lendx/internal/shared"
)

// LoanPredicate selects the loans shown by [LoanList.Filter].
type LoanPredicate func(*Loan) bool

// Filter keywords accepted by [ParsePredicate].
const (
	FilterAll      = "all"
	FilterOverdue  = "overdue"
	FilterPaid     = "paid"
	FilterUnpaid   = "unpaid"
	FilterSimple   = "simple"
	FilterCompound = "compound"
	FilterMissed   = "missed"
)

// FilterKeywords lists the keywords in the order the TUI cycles through them.
var FilterKeywords = []string{FilterAll, FilterOverdue, FilterUnpaid, FilterPaid, FilterMissed, FilterSimple, FilterCompound}

func ShowAll(*Loan) bool          { return true }
func Overdue(l *Loan) bool        { return l.IsOverdue() }
func PaidLoans(l *Loan) bool      { return l.IsPaid }
func Unpaid(l *Loan) bool         { return !l.IsPaid }
func MissedPayments(l *Loan) bool { return l.MissedInstalments() }

// OfKind selects loans with the given interest model.
func OfKind(kind LoanKind) LoanPredicate {
	return func(l *Loan) bool { return l.Kind == kind }
}

// And selects loans satisfying every predicate.
func And(preds ...LoanPredicate) LoanPredicate {
	return func(l *Loan) bool {
		for _, p := range preds {
			if !p(l) {
				return false
			}
		}
		return true
	}
}

// ParsePredicate maps a filter keyword to its predicate. Keywords may be combined with commas ("overdue,simple").
func ParsePredicate(keyword string) (LoanPredicate, error) {
	var preds []LoanPredicate
	for part := range strings.SplitSeq(keyword, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "", FilterAll:
			preds = append(preds, ShowAll)
		case FilterOverdue:
			preds = append(preds, Overdue)
		case FilterPaid:
			preds = append(preds, PaidLoans)
		case FilterUnpaid:
			preds = append(preds, Unpaid)
		case FilterMissed:
			preds = append(preds, MissedPayments)
		case FilterSimple:
			preds = append(preds, OfKind(Simple))
		case FilterCompound:
			preds = append(preds, OfKind(Compound))
		default:
			return nil, fmt.Errorf("%w: unknown filter %q", shared.ErrInvalidFlag, part)
		}
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return And(preds...), nil
}
