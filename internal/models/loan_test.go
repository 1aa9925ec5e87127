package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/lendx/internal/shared"
)

func TestLoanValue(t *testing.T) {
	t.Run("simple interest accrues linearly", func(t *testing.T) {
		l := mustLoan(t, Simple, 1200, 0.01, "2025-01-01", "2026-01-01")

		if l.LoanLengthMonths() != 12 {
			t.Fatalf("expected 12 month loan, got %d", l.LoanLengthMonths())
		}
		if !approx(l.LoanValue(), 1344) {
			t.Errorf("LoanValue() = %v, want 1344", l.LoanValue())
		}
		if !approx(l.MonthlyInstalmentAmount(), 112) {
			t.Errorf("MonthlyInstalmentAmount() = %v, want 112", l.MonthlyInstalmentAmount())
		}
		if !approx(l.AmountOwed, 1344) {
			t.Errorf("AmountOwed should start at the loan value, got %v", l.AmountOwed)
		}
	})

	t.Run("compound interest accrues geometrically", func(t *testing.T) {
		l := mustLoan(t, Compound, 1000, 0.02, "2026-01-01", "2026-07-01")

		if !approx(l.LoanValue(), 1126.16) {
			t.Errorf("LoanValue() = %v, want ≈1126.16", l.LoanValue())
		}
		if !approx(l.MonthlyInstalmentAmount(), l.LoanValue()/6) {
			t.Errorf("MonthlyInstalmentAmount() = %v, want %v", l.MonthlyInstalmentAmount(), l.LoanValue()/6)
		}
	})

	t.Run("zero length loan has one instalment", func(t *testing.T) {
		l := mustLoan(t, Simple, 500, 0.05, "2026-01-01", "2026-01-20")

		if l.LoanLengthMonths() != 0 {
			t.Fatalf("expected zero length, got %d", l.LoanLengthMonths())
		}
		if !approx(l.MonthlyInstalmentAmount(), 500) {
			t.Errorf("MonthlyInstalmentAmount() = %v, want 500", l.MonthlyInstalmentAmount())
		}
	})

	t.Run("names", func(t *testing.T) {
		if got := mustLoan(t, Simple, 1, 0, "2026-01-01", "2026-02-01").Name(); got != "Simple Interest Loan" {
			t.Errorf("Name() = %s", got)
		}
		if got := mustLoan(t, Compound, 1, 0, "2026-01-01", "2026-02-01").Name(); got != "Compound Interest Loan" {
			t.Errorf("Name() = %s", got)
		}
	})
}

func TestNewLoanValidation(t *testing.T) {
	created := mustDate(t, "2026-01-01")
	due := mustDate(t, "2026-06-01")

	tt := []struct {
		name      string
		principal float64
		rate      float64
		created   string
		due       string
	}{
		{name: "negative principal", principal: -1, rate: 0.01, created: "2026-01-01", due: "2026-06-01"},
		{name: "negative rate", principal: 100, rate: -0.01, created: "2026-01-01", due: "2026-06-01"},
		{name: "due before created", principal: 100, rate: 0.01, created: "2026-06-01", due: "2026-01-01"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoan(Simple, tc.principal, tc.rate, mustDate(t, tc.created), mustDate(t, tc.due))
			if !errors.Is(err, shared.ErrInvalidLoan) {
				t.Errorf("NewLoan() error = %v, want ErrInvalidLoan", err)
			}
		})
	}

	if _, err := NewSimpleLoan(100, 0, created, due); err != nil {
		t.Errorf("zero rate loan should be valid: %v", err)
	}
}

func TestLoanPay(t *testing.T) {
	t.Run("rejects non-positive amounts", func(t *testing.T) {
		pinToday(t, "2026-03-01")
		l := mustLoan(t, Simple, 1200, 0.01, "2026-01-01", "2027-01-01")
		before := l.Clone()

		for _, amount := range []float64{0, -10} {
			if err := l.Pay(amount); !errors.Is(err, shared.ErrInvalidAmount) {
				t.Errorf("Pay(%v) error = %v, want ErrInvalidAmount", amount, err)
			}
		}
		if !l.Equal(before) {
			t.Error("failed payment must not change the loan")
		}
	})

	t.Run("partial payment", func(t *testing.T) {
		today := pinToday(t, "2026-03-01")
		l := mustLoan(t, Simple, 1200, 0.01, "2026-01-01", "2027-01-01")

		if l.State() != Active {
			t.Fatalf("expected Active, got %s", l.State())
		}
		if err := l.Pay(100); err != nil {
			t.Fatalf("Pay() error = %v", err)
		}

		if l.AmountPaid != 100 {
			t.Errorf("AmountPaid = %v, want 100", l.AmountPaid)
		}
		if !approx(l.AmountOwed, 1244) {
			t.Errorf("AmountOwed = %v, want 1244", l.AmountOwed)
		}
		if !approx(l.RemainingOwed(), 1144) {
			t.Errorf("RemainingOwed() = %v, want 1144", l.RemainingOwed())
		}
		if l.DateLastPaid == nil || !l.DateLastPaid.Equal(today) {
			t.Errorf("DateLastPaid = %v, want %v", l.DateLastPaid, today)
		}
		if l.State() != PartiallyPaid || l.IsPaid {
			t.Errorf("expected PartiallyPaid, got %s", l.State())
		}
	})

	t.Run("payments covering the remainder mark the loan paid for good", func(t *testing.T) {
		pinToday(t, "2026-03-01")
		l := mustLoan(t, Compound, 1000, 0.02, "2026-01-01", "2026-07-01")

		remaining := l.RemainingOwed()
		for _, amount := range []float64{remaining / 4, remaining / 4, remaining / 2} {
			if l.IsPaid {
				break
			}
			if err := l.Pay(amount); err != nil {
				t.Fatalf("Pay() error = %v", err)
			}
		}

		if !l.IsPaid || l.State() != Paid {
			t.Fatalf("expected loan to be paid, got %s", l.State())
		}
		if l.RemainingOwed() != 0 {
			t.Errorf("RemainingOwed() = %v, want 0", l.RemainingOwed())
		}
		if err := l.Pay(10); !errors.Is(err, shared.ErrLoanPaid) {
			t.Errorf("Pay() on paid loan error = %v, want ErrLoanPaid", err)
		}
		if !l.IsPaid {
			t.Error("paid loan must stay paid")
		}
	})

	t.Run("overpayment floors amount owed at zero", func(t *testing.T) {
		pinToday(t, "2026-03-01")
		l := mustLoan(t, Simple, 100, 0, "2026-01-01", "2026-02-01")

		if err := l.Pay(500); err != nil {
			t.Fatalf("Pay() error = %v", err)
		}
		if l.AmountOwed != 0 || !l.IsPaid {
			t.Errorf("expected owed 0 and paid, got owed %v paid %v", l.AmountOwed, l.IsPaid)
		}
	})
}

func TestLoanSchedule(t *testing.T) {
	t.Run("overdue", func(t *testing.T) {
		pinToday(t, "2026-10-15")
		past := mustLoan(t, Simple, 100, 0.01, "2026-01-01", "2026-07-01")
		future := mustLoan(t, Simple, 100, 0.01, "2026-01-01", "2027-07-01")
		dueToday := mustLoan(t, Simple, 100, 0.01, "2026-01-01", "2026-10-15")

		if !past.IsOverdue() {
			t.Error("expected past due loan to be overdue")
		}
		if future.IsOverdue() || dueToday.IsOverdue() {
			t.Error("loans due today or later are not overdue")
		}
		if past.MonthsUntilDueDate() != -3 {
			t.Errorf("MonthsUntilDueDate() = %d, want -3", past.MonthsUntilDueDate())
		}
		if future.MonthsUntilDueDate() != 8 {
			t.Errorf("MonthsUntilDueDate() = %d, want 8", future.MonthsUntilDueDate())
		}

		if err := past.Pay(past.RemainingOwed()); err != nil {
			t.Fatalf("Pay() error = %v", err)
		}
		if past.IsOverdue() {
			t.Error("a paid loan is never overdue")
		}
	})

	t.Run("missed instalments and payment difference", func(t *testing.T) {
		pinToday(t, "2026-04-01")
		l := mustLoan(t, Simple, 1200, 0.01, "2026-01-01", "2027-01-01")

		// three instalments of 112 have fallen due
		if !l.MissedInstalments() {
			t.Error("expected missed instalments with nothing paid")
		}
		if !approx(l.PaymentDifference(), 336) {
			t.Errorf("PaymentDifference() = %v, want 336", l.PaymentDifference())
		}

		if err := l.Pay(336); err != nil {
			t.Fatalf("Pay() error = %v", err)
		}
		if l.MissedInstalments() {
			t.Error("expected no missed instalments after catching up")
		}
		if !approx(l.PaymentDifference(), 0) {
			t.Errorf("PaymentDifference() = %v, want 0", l.PaymentDifference())
		}

		if err := l.Pay(112); err != nil {
			t.Fatalf("Pay() error = %v", err)
		}
		if !approx(l.PaymentDifference(), -112) {
			t.Errorf("PaymentDifference() = %v, want -112 when ahead", l.PaymentDifference())
		}
	})

	t.Run("expected instalments stop at the loan length", func(t *testing.T) {
		pinToday(t, "2030-01-01")
		l := mustLoan(t, Simple, 1200, 0.01, "2026-01-01", "2027-01-01")

		if !approx(l.PaymentDifference(), 1344) {
			t.Errorf("PaymentDifference() = %v, want the full value 1344", l.PaymentDifference())
		}
	})

	t.Run("nothing due before creation", func(t *testing.T) {
		pinToday(t, "2025-06-01")
		l := mustLoan(t, Simple, 1200, 0.01, "2026-01-01", "2027-01-01")

		if l.MissedInstalments() {
			t.Error("loan created in the future cannot have missed instalments")
		}
	})
}

func TestLoanSaveString(t *testing.T) {
	pinToday(t, "2026-03-05")
	l := mustLoan(t, Simple, 1200, 0.01, "2026-01-01", "2027-01-01")

	want := "SIMPLE|1200|1344|0|0.01|2027-01-01|null|2026-01-01|false"
	if got := l.SaveString(); !strings.HasPrefix(got, "SIMPLE|1200|") || !strings.HasSuffix(got, "|2027-01-01|null|2026-01-01|false") {
		t.Errorf("SaveString() = %s, want shape %s", got, want)
	}

	if err := l.Pay(100); err != nil {
		t.Fatalf("Pay() error = %v", err)
	}
	fields := strings.Split(l.SaveString(), FieldSeparator)
	if len(fields) != 9 {
		t.Fatalf("expected 9 fields, got %d: %v", len(fields), fields)
	}
	if fields[3] != "100" {
		t.Errorf("amountPaid field = %s, want 100", fields[3])
	}
	if fields[6] != "2026-03-05" {
		t.Errorf("dateLastPaid field = %s, want 2026-03-05", fields[6])
	}

	c := mustLoan(t, Compound, 1000, 0.02, "2026-01-01", "2026-07-01")
	if !strings.HasPrefix(c.SaveString(), CompoundTag+FieldSeparator) {
		t.Errorf("compound save string should start with %s, got %s", CompoundTag, c.SaveString())
	}
}

func TestLoanEqualAndClone(t *testing.T) {
	pinToday(t, "2026-03-05")
	a := mustLoan(t, Simple, 1200, 0.01, "2026-01-01", "2027-01-01")
	b := a.Clone()

	if !a.Equal(b) {
		t.Fatal("clone should be equal")
	}
	if err := b.Pay(10); err != nil {
		t.Fatalf("Pay() error = %v", err)
	}
	if a.Equal(b) {
		t.Error("paying the clone must not affect equality with the original")
	}
	if a.AmountPaid != 0 {
		t.Error("clone shares state with the original")
	}
	if a.Equal(nil) {
		t.Error("loan must not equal nil")
	}
}

func TestParseLoanKind(t *testing.T) {
	for in, want := range map[string]LoanKind{"simple": Simple, "COMPOUND": Compound, " c ": Compound} {
		got, err := ParseLoanKind(in)
		if err != nil || got != want {
			t.Errorf("ParseLoanKind(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLoanKind("fixed"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
