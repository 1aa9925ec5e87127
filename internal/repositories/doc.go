// Package repositories implements SQLite persistence for the person registry.
//
// Key Implementations:
//   - [LedgerRepository] : loads and saves the ordered list of persons with their loans
//   - [ParseLoan] : decodes the save string produced by [models.Loan.SaveString]
//
// Persons are stored one row each with an explicit position, so the display order survives a round trip.
// Loans are stored as their save strings, keyed by person and position.
package repositories
