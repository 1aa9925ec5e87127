// Package registry implements the ordered, duplicate-free list of persons tracked by lendx.
//
// A [Registry] is the sole mutation authority over its persons. Uniqueness is by identity
// ([models.Person.IsSamePerson]) while removal is by value ([models.Person.Equal]).
//
// Every mutating call passes through one gate that checks the registry [Mode], applies the change
// and publishes an [Event] to subscribers only when the change succeeded. A failed call leaves
// the registry exactly as it was.
//
// The registry is not safe for concurrent use. Subscribers are called synchronously and must not
// mutate the registry while an event is being delivered; doing so is a precondition violation.
package registry

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/lendx/internal/models"
	"github.com/desertthunder/lendx/internal/shared"
)

// FilterAll is the index passed to [Registry.Filter] to filter the loans of every person.
const FilterAll = -2

// Mode is the mutation state of a [Registry].
type Mode int

const (
	Editable Mode = iota
	Locked
)

func (m Mode) String() string {
	if m == Locked {
		return "locked"
	}
	return "editable"
}

// Registry is an ordered list of unique persons.
type Registry struct {
	persons     []*models.Person
	mode        Mode
	subscribers []*subscriber
	view        *View
}

// New creates an empty, editable registry.
func New() *Registry {
	r := &Registry{}
	r.view = &View{r: r}
	return r
}

// Mode reports whether the registry accepts mutations.
func (r *Registry) Mode() Mode { return r.mode }

// SetMode switches between [Editable] and [Locked].
func (r *Registry) SetMode(m Mode) { r.mode = m }

// Contains reports whether a person identity-equal to p is present.
func (r *Registry) Contains(p *models.Person) bool {
	return slices.ContainsFunc(r.persons, p.IsSamePerson)
}

// Len is the number of persons.
func (r *Registry) Len() int { return len(r.persons) }

// Persons returns a copy of the ordered person slice.
func (r *Registry) Persons() []*models.Person {
	return slices.Clone(r.persons)
}

// View returns the read-only passthrough handed to observers.
func (r *Registry) View() *View { return r.view }

// Add appends p. Fails with [shared.ErrDuplicatePerson] if an identity-equal person exists.
func (r *Registry) Add(p *models.Person) error {
	return r.mutate(Added, func() error {
		if p == nil {
			return fmt.Errorf("%w: nil person", shared.ErrInvalidInput)
		}
		if r.Contains(p) {
			return fmt.Errorf("%w: %s", shared.ErrDuplicatePerson, p.Name)
		}
		r.persons = append(r.persons, p)
		return nil
	})
}

// SetPerson replaces target with edited at target's position.
//
// target is located by value equality. edited may share target's identity, but must not share
// the identity of any other person.
func (r *Registry) SetPerson(target, edited *models.Person) error {
	return r.mutate(Replaced, func() error {
		if edited == nil {
			return fmt.Errorf("%w: nil person", shared.ErrInvalidInput)
		}
		idx := r.indexOf(target)
		if idx < 0 {
			return shared.ErrPersonNotFound
		}
		if !target.IsSamePerson(edited) && r.Contains(edited) {
			return fmt.Errorf("%w: %s", shared.ErrDuplicatePerson, edited.Name)
		}
		r.persons[idx] = edited
		return nil
	})
}

// Remove deletes the person value-equal to p. An identity-equal match alone is not enough.
func (r *Registry) Remove(p *models.Person) error {
	return r.mutate(Removed, func() error {
		idx := r.indexOf(p)
		if idx < 0 {
			return shared.ErrPersonNotFound
		}
		r.persons = slices.Delete(r.persons, idx, idx+1)
		return nil
	})
}

// SetPersons replaces the whole list, keeping the order of persons.
// Fails with [shared.ErrDuplicatePerson] if any two persons are identity-equal.
func (r *Registry) SetPersons(persons []*models.Person) error {
	return r.mutate(Reset, func() error {
		for i := range persons {
			if persons[i] == nil {
				return fmt.Errorf("%w: nil person at %d", shared.ErrInvalidInput, i)
			}
			for j := i + 1; j < len(persons); j++ {
				if persons[i].IsSamePerson(persons[j]) {
					return fmt.Errorf("%w: %s", shared.ErrDuplicatePerson, persons[j].Name)
				}
			}
		}
		r.persons = slices.Clone(persons)
		return nil
	})
}

// Sort reorders persons by key; the sort is stable and [Desc] reverses the comparison.
func (r *Registry) Sort(key SortKey, order SortOrder) error {
	return r.mutate(Sorted, func() error {
		compare := comparator(key)
		if order == Desc {
			asc := compare
			compare = func(a, b *models.Person) int { return asc(b, a) }
		}
		slices.SortStableFunc(r.persons, compare)
		return nil
	})
}

// Filter applies pred to the loans of the person at index, or of every person when index is [FilterAll].
// Loans are never removed; only the visible subset changes.
func (r *Registry) Filter(index int, pred models.LoanPredicate) error {
	return r.mutate(Filtered, func() error {
		if index == FilterAll {
			for _, p := range r.persons {
				p.Loans().Filter(pred)
			}
			return nil
		}
		if index < 0 || index >= len(r.persons) {
			return fmt.Errorf("%w: person %d of %d", shared.ErrIndexOutOfRange, index+1, len(r.persons))
		}
		r.persons[index].Loans().Filter(pred)
		return nil
	})
}

// Refresh tells subscribers to re-render without changing content. It does nothing when empty
// and is allowed in either mode.
func (r *Registry) Refresh() {
	if len(r.persons) == 0 {
		return
	}
	r.publish(Event{Kind: Refreshed})
}

func (r *Registry) String() string {
	names := make([]string, len(r.persons))
	for i, p := range r.persons {
		names[i] = p.Name
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// mutate is the single entry point for changes: it enforces the mode and publishes kind on success.
func (r *Registry) mutate(kind EventKind, apply func() error) error {
	if r.mode == Locked {
		return shared.ErrRegistryLocked
	}
	if err := apply(); err != nil {
		return err
	}
	r.publish(Event{Kind: kind})
	return nil
}

func (r *Registry) indexOf(p *models.Person) int {
	return slices.IndexFunc(r.persons, p.Equal)
}

func comparator(key SortKey) func(a, b *models.Person) int {
	switch key {
	case ByOverdue:
		return func(a, b *models.Person) int { return cmp.Compare(a.MostOverdueMonths(), b.MostOverdueMonths()) }
	case ByAmount:
		return func(a, b *models.Person) int { return cmp.Compare(a.TotalLoanOwed(), b.TotalLoanOwed()) }
	default:
		return func(a, b *models.Person) int { return strings.Compare(a.Name, b.Name) }
	}
}
