package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/lendx/internal/formatter"
	"github.com/desertthunder/lendx/internal/models"
	"github.com/desertthunder/lendx/internal/shared"
	"github.com/urfave/cli/v3"
)

// editLoans applies fn to a copy of the person at the "person" argument and swaps the copy in through the registry.
func (r *Runner) editLoans(cmd *cli.Command, fn func(p *models.Person) error) (*models.Person, error) {
	var edited *models.Person
	err := r.withLedger(cmd, func(l *ledger) (bool, error) {
		_, target, err := l.personAt(cmd, "person")
		if err != nil {
			return false, err
		}

		edited = target.Clone()
		if err := fn(edited); err != nil {
			return false, err
		}
		if err := l.registry.SetPerson(target, edited); err != nil {
			return false, err
		}
		return true, nil
	})
	return edited, err
}

// LoanAdd grants a new loan to a person.
func (r *Runner) LoanAdd(ctx context.Context, cmd *cli.Command) error {
	kind, err := models.ParseLoanKind(cmd.String("type"))
	if err != nil {
		return err
	}
	principal, err := parseAmount(cmd.String("principal"), "principal")
	if err != nil {
		return err
	}
	rate, err := parseAmount(cmd.String("rate"), "rate")
	if err != nil {
		return err
	}
	created, err := parseDateFlag(cmd.String("created"), "created")
	if err != nil {
		return err
	}
	if strings.TrimSpace(cmd.String("due")) == "" {
		return fmt.Errorf("%w: --due", shared.ErrMissingArgument)
	}
	due, err := parseDateFlag(cmd.String("due"), "due")
	if err != nil {
		return err
	}

	loan, err := models.NewLoan(kind, principal, rate, created, due)
	if err != nil {
		return err
	}

	p, err := r.editLoans(cmd, func(p *models.Person) error {
		p.Loans().Add(loan)
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("loan granted", "person", p.Name, "type", kind, "principal", models.FormatAmount(principal))
	r.writePlain("✓ %s of %s granted to %s as loan #%d\n", loan.Name(), r.money(principal), p.Name, p.Loans().Len())
	r.writePlain("  Value %s over %d months, instalment %s\n",
		r.money(loan.LoanValue()), loan.LoanLengthMonths(), r.money(loan.MonthlyInstalmentAmount()))
	return nil
}

// LoanPay records a payment against a loan.
func (r *Runner) LoanPay(ctx context.Context, cmd *cli.Command) error {
	amount, err := parseAmount(cmd.String("amount"), "amount")
	if err != nil {
		return err
	}

	var paid *models.Loan
	p, err := r.editLoans(cmd, func(p *models.Person) error {
		i, err := parseIndex(cmd.StringArg("loan"), "loan", p.Loans().Len())
		if err != nil {
			return err
		}
		loan, err := p.Loans().At(i)
		if err != nil {
			return err
		}
		if err := loan.Pay(amount); err != nil {
			return err
		}
		paid = loan
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("payment recorded", "person", p.Name, "amount", models.FormatAmount(amount), "state", paid.State())
	r.writePlain("✓ %s paid %s\n", p.Name, r.money(amount))
	if paid.IsPaid {
		return r.writePlain("  Loan fully paid\n")
	}
	return r.writePlain("  %s remaining (%s)\n", r.money(paid.RemainingOwed()), paid.State())
}

// LoanDelete removes a loan from a person.
func (r *Runner) LoanDelete(ctx context.Context, cmd *cli.Command) error {
	var removed *models.Loan
	p, err := r.editLoans(cmd, func(p *models.Person) error {
		i, err := parseIndex(cmd.StringArg("loan"), "loan", p.Loans().Len())
		if err != nil {
			return err
		}
		removed, err = p.Loans().Remove(i)
		return err
	})
	if err != nil {
		return err
	}

	r.logger.Info("loan deleted", "person", p.Name, "loan", removed.SaveString())
	return r.writePlain("✓ Deleted %s from %s\n", removed.Name(), p.Name)
}

// LoanList prints the loans of a person that pass the filter.
func (r *Runner) LoanList(ctx context.Context, cmd *cli.Command) error {
	return r.withLedger(cmd, func(l *ledger) (bool, error) {
		idx, p, err := l.personAt(cmd, "person")
		if err != nil {
			return false, err
		}
		pred, err := models.ParsePredicate(cmd.String("filter"))
		if err != nil {
			return false, err
		}
		if err := l.registry.Filter(idx, pred); err != nil {
			return false, err
		}

		summary := formatter.Summarize(p)
		if cmd.Bool("json") {
			return false, r.writeJSON(summary, cmd.Bool("pretty"))
		}

		loans := p.Loans()
		r.writePlainHeader(fmt.Sprintf("Loans of %s (%d of %d shown)", p.Name, loans.VisibleLen(), loans.Len()))
		if len(summary.Loans) == 0 {
			r.writePlain("No loans match.\n")
		}

		dateFormat := r.config.Display.DateFormat
		if dateFormat == "" {
			dateFormat = models.DateLayout
		}
		all := loans.Loans()
		for _, row := range summary.Loans {
			loan := all[row.Index-1]
			r.writePlain("%d. %s\n", row.Index, loan.Name())
			r.writePlain("   %s of %s remaining, %s paid, instalment %s\n",
				r.money(loan.RemainingOwed()), r.money(loan.LoanValue()), r.money(loan.AmountPaid),
				r.money(loan.MonthlyInstalmentAmount()))

			status := loan.State().String()
			switch {
			case loan.IsOverdue():
				status += ", overdue"
			case loan.MissedInstalments():
				status += fmt.Sprintf(", behind by %s", r.money(loan.PaymentDifference()))
			}
			r.writePlain("   %s → %s, %s\n",
				loan.DateCreated.Format(dateFormat), loan.DueDate.Format(dateFormat), status)
		}

		return false, r.writePlainln("Total owed: %s", r.money(p.TotalLoanOwed()))
	})
}
