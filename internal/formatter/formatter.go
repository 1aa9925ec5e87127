// package formatter exports persons and their visible loans to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/lendx/internal/models"
	"github.com/desertthunder/lendx/internal/shared"
)

// Format names accepted by [Export].
const (
	FormatCSV      = "csv"
	FormatMarkdown = "md"
	FormatText     = "txt"
	FormatJSON     = "json"
)

// Formats lists every supported export format.
var Formats = []string{FormatCSV, FormatMarkdown, FormatText, FormatJSON}

// LoanRow is the flattened, display-ready form of one visible loan.
type LoanRow struct {
	Person     string `json:"person"`
	Index      int    `json:"index"`
	Type       string `json:"type"`
	Principal  string `json:"principal"`
	Rate       string `json:"rate"`
	Value      string `json:"value"`
	Paid       string `json:"paid"`
	Remaining  string `json:"remaining"`
	Instalment string `json:"instalment"`
	Created    string `json:"created"`
	Due        string `json:"due"`
	LastPaid   string `json:"last_paid,omitempty"`
	State      string `json:"state"`
	Overdue    bool   `json:"overdue"`
	Missed     bool   `json:"missed_instalments"`
}

// PersonSummary is the JSON form of one person with its visible loans.
type PersonSummary struct {
	Name              string    `json:"name"`
	Phone             string    `json:"phone,omitempty"`
	Email             string    `json:"email,omitempty"`
	Address           string    `json:"address,omitempty"`
	Tags              []string  `json:"tags,omitempty"`
	TotalOwed         string    `json:"total_owed"`
	MostOverdueMonths int       `json:"most_overdue_months"`
	Loans             []LoanRow `json:"loans"`
}

// NewLoanRow flattens l, the loan at 1-based index of person.
func NewLoanRow(person string, index int, l *models.Loan) LoanRow {
	row := LoanRow{
		Person:     person,
		Index:      index,
		Type:       l.Kind.String(),
		Principal:  models.FormatMoney(l.Principal),
		Rate:       models.FormatAmount(l.Interest),
		Value:      models.FormatMoney(l.LoanValue()),
		Paid:       models.FormatMoney(l.AmountPaid),
		Remaining:  models.FormatMoney(l.RemainingOwed()),
		Instalment: models.FormatMoney(l.MonthlyInstalmentAmount()),
		Created:    l.DateCreated.Format(models.DateLayout),
		Due:        l.DueDate.Format(models.DateLayout),
		State:      l.State().String(),
		Overdue:    l.IsOverdue(),
		Missed:     l.MissedInstalments(),
	}
	if l.DateLastPaid != nil {
		row.LastPaid = l.DateLastPaid.Format(models.DateLayout)
	}
	return row
}

// Summarize builds the export view of p. Only visible loans are included; indices stay those of the full list.
func Summarize(p *models.Person) PersonSummary {
	list := p.Loans()
	loans := list.Loans()
	s := PersonSummary{
		Name:              p.Name,
		Phone:             p.Phone,
		Email:             p.Email,
		Address:           p.Address,
		Tags:              p.Tags,
		TotalOwed:         models.FormatMoney(p.TotalLoanOwed()),
		MostOverdueMonths: p.MostOverdueMonths(),
		Loans:             []LoanRow{},
	}
	for _, i := range list.VisibleIndices() {
		s.Loans = append(s.Loans, NewLoanRow(p.Name, i+1, loans[i]))
	}
	return s
}

// ExportToCSV writes one record per visible loan with columns:
// Person, Index, Type, Principal, Rate, Value, Paid, Remaining, Instalment, Created, Due, LastPaid, State
func ExportToCSV(persons []*models.Person) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Person", "Index", "Type", "Principal", "Rate", "Value", "Paid",
		"Remaining", "Instalment", "Created", "Due", "LastPaid", "State"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, p := range persons {
		for _, row := range Summarize(p).Loans {
			record := []string{
				row.Person,
				strconv.Itoa(row.Index),
				row.Type,
				row.Principal,
				row.Rate,
				row.Value,
				row.Paid,
				row.Remaining,
				row.Instalment,
				row.Created,
				row.Due,
				row.LastPaid,
				row.State,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a section per person with a table of its visible loans.
func ExportToMarkdown(persons []*models.Person, currency string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Loans\n\n")
	fmt.Fprintf(&buf, "**Persons**: %d\n\n", len(persons))

	for _, p := range persons {
		s := Summarize(p)
		fmt.Fprintf(&buf, "## %s\n\n", s.Name)

		if details := contactLine(s); details != "" {
			fmt.Fprintf(&buf, "%s\n\n", details)
		}
		if len(s.Tags) > 0 {
			fmt.Fprintf(&buf, "**Tags**: %s\n\n", strings.Join(s.Tags, ", "))
		}
		fmt.Fprintf(&buf, "**Total owed**: %s%s\n\n", currency, s.TotalOwed)

		if len(s.Loans) == 0 {
			buf.WriteString("_No loans._\n\n")
			continue
		}

		buf.WriteString("| # | Type | Value | Paid | Remaining | Instalment | Due | State |\n")
		buf.WriteString("|---|------|-------|------|-----------|------------|-----|-------|\n")
		for _, row := range s.Loans {
			state := row.State
			if row.Overdue {
				state += " (overdue)"
			}
			fmt.Fprintf(&buf, "| %d | %s | %s%s | %s%s | %s%s | %s%s | %s | %s |\n",
				row.Index, row.Type,
				currency, row.Value, currency, row.Paid, currency, row.Remaining, currency, row.Instalment,
				row.Due, state)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText renders a plain listing of persons and their visible loans.
func ExportToText(persons []*models.Person, currency string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Persons: %d\n\n", len(persons))

	for i, p := range persons {
		s := Summarize(p)
		fmt.Fprintf(&buf, "%d. %s (owes %s%s)\n", i+1, s.Name, currency, s.TotalOwed)
		for _, row := range s.Loans {
			fmt.Fprintf(&buf, "   %d) %s: %s%s remaining of %s%s, due %s [%s]\n",
				row.Index, row.Type, currency, row.Remaining, currency, row.Value, row.Due, row.State)
		}
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the summaries of all persons as indented JSON.
func ExportToJSON(persons []*models.Person) ([]byte, error) {
	summaries := make([]PersonSummary, 0, len(persons))
	for _, p := range persons {
		summaries = append(summaries, Summarize(p))
	}

	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return data, nil
}

// NormalizeFormat maps a format name or alias ("markdown", "text") to one of [Formats].
func NormalizeFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case FormatCSV, FormatMarkdown, FormatText, FormatJSON:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	case "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q (expected one of %s)",
			shared.ErrInvalidFlag, format, strings.Join(Formats, ", "))
	}
}

// Export renders persons in the named format.
func Export(format string, persons []*models.Person, currency string) ([]byte, error) {
	f, err := NormalizeFormat(format)
	if err != nil {
		return nil, err
	}

	switch f {
	case FormatCSV:
		return ExportToCSV(persons)
	case FormatMarkdown:
		return ExportToMarkdown(persons, currency)
	case FormatText:
		return ExportToText(persons, currency)
	default:
		return ExportToJSON(persons)
	}
}

// WriteExport renders persons in format and writes the result to path.
//
// Defaults to loans.{format} as the filename.
func WriteExport(format string, persons []*models.Person, currency, path string) (string, error) {
	f, err := NormalizeFormat(format)
	if err != nil {
		return "", err
	}
	data, err := Export(f, persons, currency)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = "loans." + f
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

func contactLine(s PersonSummary) string {
	var parts []string
	for _, v := range []string{s.Phone, s.Email, s.Address} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " · ")
}
