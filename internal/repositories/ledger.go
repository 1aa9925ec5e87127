package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/lendx/internal/models"
	"github.com/desertthunder/lendx/internal/shared"
)

// LedgerRepository persists the ordered list of persons and their loans.
type LedgerRepository struct {
	db *sql.DB
}

// NewLedgerRepository creates a new [LedgerRepository] with the given database connection
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// storedPerson is the row identity kept across saves so ids and creation times stay stable.
type storedPerson struct {
	id        string
	createdAt time.Time
}

// Load returns every person in position order with their loans attached.
func (r *LedgerRepository) Load() ([]*models.Person, error) {
	rows, err := r.db.Query(`
		SELECT id, name, phone, email, address, tags
		FROM persons
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query persons: %w", err)
	}
	defer rows.Close()

	var (
		persons []*models.Person
		ids     []string
	)
	for rows.Next() {
		var id, name, phone, email, address, tags string
		if err := rows.Scan(&id, &name, &phone, &email, &address, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		persons = append(persons, models.NewPerson(name, phone, email, address, decodeTags(tags)))
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	for i, p := range persons {
		loans, err := r.loansFor(ids[i])
		if err != nil {
			return nil, fmt.Errorf("failed to load loans of %s: %w", p.Name, err)
		}
		for _, l := range loans {
			p.Loans().Add(l)
		}
	}

	return persons, nil
}

// Save replaces the stored ledger with persons, in order, inside a single transaction.
//
// A person keeps its row id and creation time across saves as long as its name is unchanged.
func (r *LedgerRepository) Save(persons []*models.Person) error {
	for _, p := range persons {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	existing, err := r.storedPersons()
	if err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM loans"); err != nil {
		return fmt.Errorf("failed to clear loans: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM persons"); err != nil {
		return fmt.Errorf("failed to clear persons: %w", err)
	}

	now := time.Now().UTC()
	for pos, p := range persons {
		row, ok := existing[p.Name]
		if !ok {
			row = storedPerson{id: shared.GenerateID(), createdAt: now}
		}

		_, err := tx.Exec(`
			INSERT INTO persons (id, position, name, phone, email, address, tags, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, row.id, pos, p.Name, p.Phone, p.Email, p.Address, encodeTags(p.Tags), row.createdAt, now)
		if err != nil {
			return fmt.Errorf("failed to insert person %s: %w", p.Name, err)
		}

		for lpos, l := range p.Loans().Loans() {
			_, err := tx.Exec(
				"INSERT INTO loans (id, person_id, position, data) VALUES (?, ?, ?, ?)",
				shared.GenerateID(), row.id, lpos, l.SaveString(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert loan %d of %s: %w", lpos+1, p.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger: %w", err)
	}
	return nil
}

// Count returns the number of stored persons and loans.
func (r *LedgerRepository) Count() (persons, loans int, err error) {
	err = r.db.QueryRow("SELECT (SELECT COUNT(*) FROM persons), (SELECT COUNT(*) FROM loans)").Scan(&persons, &loans)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count ledger rows: %w", err)
	}
	return persons, loans, nil
}

func (r *LedgerRepository) storedPersons() (map[string]storedPerson, error) {
	rows, err := r.db.Query("SELECT id, name, created_at FROM persons")
	if err != nil {
		return nil, fmt.Errorf("failed to query persons: %w", err)
	}
	defer rows.Close()

	stored := make(map[string]storedPerson)
	for rows.Next() {
		var (
			name string
			row  storedPerson
		)
		if err := rows.Scan(&row.id, &name, &row.createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		stored[name] = row
	}
	return stored, rows.Err()
}

func (r *LedgerRepository) loansFor(personID string) ([]*models.Loan, error) {
	rows, err := r.db.Query("SELECT data FROM loans WHERE person_id = ? ORDER BY position ASC", personID)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	var loans []*models.Loan
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		l, err := ParseLoan(data)
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}
