package models

import (
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/lendx/internal/shared"
)

// Person is a contact and the loans they owe.
//
// Name is the only identity field: two persons with the same name are the same person,
// whatever their other fields hold.
type Person struct {
	Name    string
	Phone   string
	Email   string
	Address string
	Tags    []string
	loans   *LoanList
}

// NewPerson creates a person owning the given loans.
func NewPerson(name, phone, email, address string, tags []string, loans ...*Loan) *Person {
	return &Person{
		Name:    strings.TrimSpace(name),
		Phone:   strings.TrimSpace(phone),
		Email:   strings.TrimSpace(email),
		Address: strings.TrimSpace(address),
		Tags:    normalizeTags(tags),
		loans:   NewLoanList(loans...),
	}
}

// Loans returns the person's loan list. It is never nil.
func (p *Person) Loans() *LoanList {
	if p.loans == nil {
		p.loans = NewLoanList()
	}
	return p.loans
}

// Validate checks the fields that must be present.
func (p *Person) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", shared.ErrInvalidInput)
	}
	if strings.Contains(p.Email, " ") {
		return fmt.Errorf("%w: email %q contains spaces", shared.ErrInvalidInput, p.Email)
	}
	for _, tag := range p.Tags {
		if strings.ContainsAny(tag, ", \t") {
			return fmt.Errorf("%w: tag %q must be a single word", shared.ErrInvalidInput, tag)
		}
	}
	return nil
}

// IsSamePerson reports identity equality: both persons have the same name.
func (p *Person) IsSamePerson(other *Person) bool {
	if p == other {
		return true
	}
	if p == nil || other == nil {
		return false
	}
	return p.Name == other.Name
}

// Equal reports value equality: every field, tags and loans included, matches.
func (p *Person) Equal(other *Person) bool {
	if p == other {
		return true
	}
	if p == nil || other == nil {
		return false
	}
	return p.Name == other.Name &&
		p.Phone == other.Phone &&
		p.Email == other.Email &&
		p.Address == other.Address &&
		slices.Equal(p.Tags, other.Tags) &&
		p.Loans().Equal(other.Loans())
}

// WithDetails returns a copy of p carrying the given contact fields and the same loans.
// Empty arguments keep the current value; a nil tags slice keeps the current tags.
func (p *Person) WithDetails(name, phone, email, address string, tags []string) *Person {
	edited := p.Clone()
	if name = strings.TrimSpace(name); name != "" {
		edited.Name = name
	}
	if phone = strings.TrimSpace(phone); phone != "" {
		edited.Phone = phone
	}
	if email = strings.TrimSpace(email); email != "" {
		edited.Email = email
	}
	if address = strings.TrimSpace(address); address != "" {
		edited.Address = address
	}
	if tags != nil {
		edited.Tags = normalizeTags(tags)
	}
	return edited
}

// Clone deep-copies the person, loans included.
func (p *Person) Clone() *Person {
	return &Person{
		Name:    p.Name,
		Phone:   p.Phone,
		Email:   p.Email,
		Address: p.Address,
		Tags:    slices.Clone(p.Tags),
		loans:   p.Loans().Clone(),
	}
}

// TotalLoanOwed is the sum still owed across all of the person's loans.
func (p *Person) TotalLoanOwed() float64 { return p.Loans().TotalLoanOwed() }

// MostOverdueMonths is how many months the person's most overdue loan is past due (as a negative number).
func (p *Person) MostOverdueMonths() int { return p.Loans().MostOverdueMonths() }

func (p *Person) String() string {
	return fmt.Sprintf("%s; Phone: %s; Email: %s; Address: %s; Tags: [%s]; Loans: %d",
		p.Name, p.Phone, p.Email, p.Address, strings.Join(p.Tags, ", "), p.Loans().Len())
}

// normalizeTags trims, drops empties and de-duplicates tags, keeping them sorted.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
