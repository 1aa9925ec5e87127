package models

import (
	"errors"
	"testing"

	"github.com/desertthunder/lendx/internal/shared"
)

func TestPerson(t *testing.T) {
	t.Run("identity versus value equality", func(t *testing.T) {
		pinToday(t, "2026-10-15")
		alice := NewPerson("Alice Pauline", "94351253", "alice@example.com", "123 Jurong West", []string{"friends"})
		editedAlice := NewPerson("Alice Pauline", "99999999", "alice@example.com", "123 Jurong West", []string{"friends"})
		bob := NewPerson("Bob Choo", "94351253", "alice@example.com", "123 Jurong West", []string{"friends"})

		if !alice.IsSamePerson(editedAlice) {
			t.Error("same name should be the same person")
		}
		if alice.Equal(editedAlice) {
			t.Error("different phone should not be value-equal")
		}
		if alice.IsSamePerson(bob) {
			t.Error("different name should not be the same person")
		}
		if alice.IsSamePerson(nil) || alice.Equal(nil) {
			t.Error("nothing equals nil")
		}
		if NewPerson("alice pauline", "", "", "", nil).IsSamePerson(alice) {
			t.Error("names compare case-sensitively")
		}

		twin := alice.Clone()
		if !alice.Equal(twin) {
			t.Fatal("clone should be value-equal")
		}
		twin.Loans().Add(mustLoan(t, Simple, 10, 0, "2026-01-01", "2026-02-01"))
		if alice.Equal(twin) {
			t.Error("loans are part of value equality")
		}
		if alice.Loans().Len() != 0 {
			t.Error("clone must own its loans")
		}
	})

	t.Run("tags are normalized", func(t *testing.T) {
		p := NewPerson("Carl", "", "", "", []string{" work ", "family", "", "work"})
		if len(p.Tags) != 2 || p.Tags[0] != "family" || p.Tags[1] != "work" {
			t.Errorf("Tags = %v, want [family work]", p.Tags)
		}
		if !p.Equal(NewPerson("Carl", "", "", "", []string{"work", "family"})) {
			t.Error("tag order should not matter")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		if err := NewPerson("  ", "", "", "", nil).Validate(); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("Validate() error = %v, want ErrInvalidInput", err)
		}
		if err := (&Person{Name: "Dan", Email: "d an@example.com"}).Validate(); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("Validate() error = %v, want ErrInvalidInput", err)
		}
		if err := NewPerson("Dan", "", "dan@example.com", "", nil).Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("WithDetails keeps loans and unspecified fields", func(t *testing.T) {
		pinToday(t, "2026-10-15")
		p := NewPerson("Elle", "111", "elle@example.com", "Home", []string{"a"},
			mustLoan(t, Simple, 100, 0, "2026-01-01", "2026-02-01"))

		edited := p.WithDetails("", "222", "", "", nil)
		if edited.Name != "Elle" || edited.Phone != "222" || edited.Email != "elle@example.com" {
			t.Errorf("unexpected edit result: %v", edited)
		}
		if len(edited.Tags) != 1 || edited.Loans().Len() != 1 {
			t.Errorf("tags and loans should be kept: %v", edited)
		}
		if p.Phone != "111" {
			t.Error("WithDetails must not modify the receiver")
		}

		cleared := p.WithDetails("", "", "", "", []string{})
		if len(cleared.Tags) != 0 {
			t.Errorf("empty tag slice should clear tags, got %v", cleared.Tags)
		}
	})

	t.Run("aggregates delegate to the loan list", func(t *testing.T) {
		pinToday(t, "2026-10-15")
		p := NewPerson("Fiona", "", "", "", nil,
			mustLoan(t, Simple, 100, 0, "2026-01-01", "2026-08-01"),
			mustLoan(t, Simple, 40, 0, "2026-01-01", "2027-08-01"))

		if !approx(p.TotalLoanOwed(), 140) {
			t.Errorf("TotalLoanOwed() = %v, want 140", p.TotalLoanOwed())
		}
		if p.MostOverdueMonths() != -2 {
			t.Errorf("MostOverdueMonths() = %d, want -2", p.MostOverdueMonths())
		}

		var zero Person
		if zero.Loans() == nil || zero.TotalLoanOwed() != 0 {
			t.Error("zero person should have an empty loan list")
		}
	})
}

func TestPersonTagValidation(t *testing.T) {
	for _, tag := range []string{"a,b", "two words"} {
		p := &Person{Name: "Gus", Tags: []string{tag}}
		if err := p.Validate(); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("Validate() with tag %q error = %v, want ErrInvalidInput", tag, err)
		}
	}
}
