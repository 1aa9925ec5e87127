package repositories

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/lendx/internal/models"
	"github.com/desertthunder/lendx/internal/shared"
	"github.com/shopspring/decimal"
)

const loanFieldCount = 9

// ParseLoan decodes a loan save string of the form
// TAG|principal|amountOwed|amountPaid|interest|dueDate|dateLastPaid|dateCreated|isPaid.
func ParseLoan(s string) (*models.Loan, error) {
	fields := strings.Split(strings.TrimSpace(s), models.FieldSeparator)
	if len(fields) != loanFieldCount {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", shared.ErrMalformedLoan, loanFieldCount, len(fields))
	}

	kind, err := parseTag(fields[0])
	if err != nil {
		return nil, err
	}

	amounts := make([]float64, 4)
	for i, name := range []string{"principal", "amount owed", "amount paid", "interest"} {
		d, err := decimal.NewFromString(fields[i+1])
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q: %w", shared.ErrMalformedLoan, name, fields[i+1], err)
		}
		if d.IsNegative() {
			return nil, fmt.Errorf("%w: %s is negative", shared.ErrMalformedLoan, name)
		}
		amounts[i] = d.InexactFloat64()
	}

	due, err := parseDate("due date", fields[5])
	if err != nil {
		return nil, err
	}
	created, err := parseDate("creation date", fields[7])
	if err != nil {
		return nil, err
	}

	var lastPaid *time.Time
	if fields[6] != models.NullDate {
		d, err := parseDate("last paid date", fields[6])
		if err != nil {
			return nil, err
		}
		lastPaid = &d
	}

	isPaid, err := strconv.ParseBool(fields[8])
	if err != nil {
		return nil, fmt.Errorf("%w: paid flag %q", shared.ErrMalformedLoan, fields[8])
	}

	return &models.Loan{
		Kind:         kind,
		Principal:    amounts[0],
		AmountOwed:   amounts[1],
		AmountPaid:   amounts[2],
		Interest:     amounts[3],
		DueDate:      due,
		DateCreated:  created,
		DateLastPaid: lastPaid,
		IsPaid:       isPaid,
	}, nil
}

func parseTag(tag string) (models.LoanKind, error) {
	switch tag {
	case models.SimpleTag:
		return models.Simple, nil
	case models.CompoundTag:
		return models.Compound, nil
	default:
		return models.Simple, fmt.Errorf("%w: unknown loan type %q", shared.ErrMalformedLoan, tag)
	}
}

func parseDate(name, value string) (time.Time, error) {
	d, err := models.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q", shared.ErrMalformedLoan, name, value)
	}
	return d, nil
}

// tagSeparator joins person tags in the tags column.
const tagSeparator = ","

func encodeTags(tags []string) string { return strings.Join(tags, tagSeparator) }

func decodeTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, tagSeparator)
}
