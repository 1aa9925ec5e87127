package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/lendx/internal/formatter"
	"github.com/desertthunder/lendx/internal/models"
	"github.com/desertthunder/lendx/internal/registry"
	"github.com/urfave/cli/v3"
)

// PersonAdd appends a new person to the ledger.
func (r *Runner) PersonAdd(ctx context.Context, cmd *cli.Command) error {
	p := models.NewPerson(cmd.String("name"), cmd.String("phone"), cmd.String("email"), cmd.String("address"),
		cmd.StringSlice("tag"))
	if err := p.Validate(); err != nil {
		return err
	}

	var position int
	err := r.withLedger(cmd, func(l *ledger) (bool, error) {
		if err := l.registry.Add(p); err != nil {
			return false, err
		}
		position = l.registry.Len()
		return true, nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("person added", "name", p.Name, "index", position)
	return r.writePlain("✓ Added %s as #%d\n", p.Name, position)
}

// PersonEdit replaces the contact details of the person at the given index.
func (r *Runner) PersonEdit(ctx context.Context, cmd *cli.Command) error {
	var tags []string
	if cmd.IsSet("tag") {
		tags = cmd.StringSlice("tag")
		if tags == nil {
			tags = []string{}
		}
	}

	var edited *models.Person
	err := r.withLedger(cmd, func(l *ledger) (bool, error) {
		_, target, err := l.personAt(cmd, "index")
		if err != nil {
			return false, err
		}

		edited = target.WithDetails(cmd.String("name"), cmd.String("phone"), cmd.String("email"),
			cmd.String("address"), tags)
		if err := edited.Validate(); err != nil {
			return false, err
		}
		if err := l.registry.SetPerson(target, edited); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("person edited", "name", edited.Name)
	return r.writePlain("✓ Edited %s\n", edited)
}

// PersonDelete removes the person at the given index together with their loans.
func (r *Runner) PersonDelete(ctx context.Context, cmd *cli.Command) error {
	var removed *models.Person
	err := r.withLedger(cmd, func(l *ledger) (bool, error) {
		_, target, err := l.personAt(cmd, "index")
		if err != nil {
			return false, err
		}
		if err := l.registry.Remove(target); err != nil {
			return false, err
		}
		removed = target
		return true, nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("person deleted", "name", removed.Name, "loans", removed.Loans().Len())
	return r.writePlain("✓ Deleted %s and %d loans\n", removed.Name, removed.Loans().Len())
}

// PersonList prints every person with what they owe. Persons are shown in stored order unless
// --sort or --order is given, in which case the new order is saved so indices match the listing.
func (r *Runner) PersonList(ctx context.Context, cmd *cli.Command) error {
	key, order, sorted, err := r.sortOptions(cmd, "sort")
	if err != nil {
		return err
	}
	pred, err := models.ParsePredicate(cmd.String("filter"))
	if err != nil {
		return err
	}

	return r.withLedger(cmd, func(l *ledger) (bool, error) {
		if sorted {
			if err := l.registry.Sort(key, order); err != nil {
				return false, err
			}
		}
		if err := l.registry.Filter(registry.FilterAll, pred); err != nil {
			return false, err
		}

		if cmd.Bool("json") {
			summaries := []formatter.PersonSummary{}
			for _, p := range l.registry.View().All() {
				summaries = append(summaries, formatter.Summarize(p))
			}
			return sorted, r.writeJSON(summaries, cmd.Bool("pretty"))
		}

		if l.registry.Len() == 0 {
			return false, r.writePlain("No persons yet. Add one with: lendx person add --name <name>\n")
		}

		r.writePlainHeader(fmt.Sprintf("Persons (%d)", l.registry.Len()))
		var total float64
		for i, p := range l.registry.View().All() {
			total += p.TotalLoanOwed()
			r.writePlain("%d. %s\n", i+1, p.Name)
			if details := contactDetails(p); details != "" {
				r.writePlain("   %s\n", details)
			}

			loans := p.Loans()
			line := fmt.Sprintf("   owes %s across %d loans", r.money(p.TotalLoanOwed()), loans.Len())
			if loans.VisibleLen() != loans.Len() {
				line += fmt.Sprintf(" (%d match filter)", loans.VisibleLen())
			}
			if months := p.MostOverdueMonths(); months < 0 {
				line += fmt.Sprintf(", %d months overdue", -months)
			}
			r.writePlain("%s\n", line)
		}
		return sorted, r.writePlainln("Total owed: %s", r.money(total))
	})
}

// PersonSort reorders the persons and saves the new order.
func (r *Runner) PersonSort(ctx context.Context, cmd *cli.Command) error {
	key, order, _, err := r.sortOptions(cmd, "by")
	if err != nil {
		return err
	}

	var names []string
	err = r.withLedger(cmd, func(l *ledger) (bool, error) {
		if err := l.registry.Sort(key, order); err != nil {
			return false, err
		}
		for _, p := range l.registry.View().All() {
			names = append(names, p.Name)
		}
		return true, nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("persons sorted", "by", key, "order", order)
	r.writePlain("✓ Sorted by %s (%s)\n", key, order)
	for i, name := range names {
		r.writePlain("%d. %s\n", i+1, name)
	}
	return nil
}

func contactDetails(p *models.Person) string {
	var parts []string
	for _, v := range []string{p.Phone, p.Email, p.Address} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	if len(p.Tags) > 0 {
		parts = append(parts, "["+strings.Join(p.Tags, ", ")+"]")
	}
	return strings.Join(parts, " · ")
}
