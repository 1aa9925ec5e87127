// Package models defines the loan engine and the person entity tracked by lendx.
//
// The package contains three groups of types:
//
// 1. Loans: a closed tagged variant sharing one struct
//   - [Loan] : principal, payments and dates, with the interest model selected by [LoanKind]
//   - [LoanKind] : [Simple] (linear accrual) or [Compound] (geometric accrual)
//   - [LoanState] : Active → PartiallyPaid → Paid, driven only by [Loan.Pay]
//
// 2. Collections: [LoanList] keeps every loan of one person and a visible subset
// selected by a [LoanPredicate] evaluated on each read. Filtering never removes loans.
//
// 3. Persons: [Person] couples identity fields with an owned [LoanList].
// [Person.IsSamePerson] compares identity (name) while [Person.Equal] compares every field.
//
// Dates are calendar dates; the current date comes from a replaceable clock (see [SetClock]).
package models
