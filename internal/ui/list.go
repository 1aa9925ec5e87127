package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/lendx/internal/models"
)

var (
	_ list.Item = personItem{}
	_ list.Item = loanItem{}
)

// personItem wraps [models.Person] to implement [list.Item].
type personItem struct {
	person   *models.Person
	currency string
}

func (i personItem) FilterValue() string { return i.person.Name }
func (i personItem) Title() string       { return i.person.Name }
func (i personItem) Description() string {
	loans := i.person.Loans()
	desc := fmt.Sprintf("%s%s owed • %d/%d loans", i.currency, models.FormatMoney(i.person.TotalLoanOwed()),
		loans.VisibleLen(), loans.Len())
	if months := i.person.MostOverdueMonths(); months < 0 {
		desc = fmt.Sprintf("%s • %d months overdue", desc, -months)
	}
	if len(i.person.Tags) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(i.person.Tags, ", "))
	}
	return desc
}

// loanItem wraps [models.Loan] to implement [list.Item]. index is the 1-based position in the full loan list.
type loanItem struct {
	loan     *models.Loan
	index    int
	currency string
}

func (i loanItem) FilterValue() string { return i.loan.Name() }
func (i loanItem) Title() string {
	return fmt.Sprintf("%d. %s", i.index, i.loan.Name())
}
func (i loanItem) Description() string {
	desc := fmt.Sprintf("%s%s of %s%s left • due %s • %s",
		i.currency, models.FormatMoney(i.loan.RemainingOwed()),
		i.currency, models.FormatMoney(i.loan.LoanValue()),
		i.loan.DueDate.Format(models.DateLayout), i.loan.State())
	switch {
	case i.loan.IsOverdue():
		desc += " • overdue"
	case i.loan.MissedInstalments():
		desc += " • missed instalments"
	}
	return desc
}
