package registry

import (
	"iter"

	"github.com/desertthunder/lendx/internal/models"
)

// View is a read-only window onto a [Registry]. It holds no copy, so it always reflects the
// latest state, and it exposes no mutating methods.
type View struct {
	r *Registry
}

// Len is the number of persons.
func (v *View) Len() int { return len(v.r.persons) }

// At returns the person at index i, or nil when i is out of range.
func (v *View) At(i int) *models.Person {
	if i < 0 || i >= len(v.r.persons) {
		return nil
	}
	return v.r.persons[i]
}

// All iterates over persons in order.
func (v *View) All() iter.Seq2[int, *models.Person] {
	return func(yield func(int, *models.Person) bool) {
		for i, p := range v.r.persons {
			if !yield(i, p) {
				return
			}
		}
	}
}

// Mode reports the registry's mode.
func (v *View) Mode() Mode { return v.r.mode }

// Subscribe registers fn with the underlying registry.
func (v *View) Subscribe(fn Listener) (cancel func()) { return v.r.Subscribe(fn) }
