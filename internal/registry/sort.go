package registry

import "strings"

// SortKey selects the comparator used by [Registry.Sort].
type SortKey string

// SortOrder selects ascending or descending order.
type SortOrder string

const (
	ByName    SortKey = "name"
	ByOverdue SortKey = "overdue"
	ByAmount  SortKey = "amount"

	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// SortKeys lists the keys in the order the TUI cycles through them.
var SortKeys = []SortKey{ByName, ByOverdue, ByAmount}

// ParseSortKey maps a key name to a [SortKey]. Unknown names fall back to [ByName];
// callers that need strict input validation should check [SortKey.Valid] first.
func ParseSortKey(s string) SortKey {
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if !key.Valid() {
		return ByName
	}
	return key
}

// Valid reports whether k is one of the known keys.
func (k SortKey) Valid() bool {
	return k == ByName || k == ByOverdue || k == ByAmount
}

// Next returns the key after k, wrapping around.
func (k SortKey) Next() SortKey {
	for i, key := range SortKeys {
		if key == k {
			return SortKeys[(i+1)%len(SortKeys)]
		}
	}
	return ByName
}

// ParseSortOrder maps "asc"/"desc" to a [SortOrder], defaulting to [Asc].
func ParseSortOrder(s string) SortOrder {
	if SortOrder(strings.ToLower(strings.TrimSpace(s))) == Desc {
		return Desc
	}
	return Asc
}

// Valid reports whether o is asc or desc.
func (o SortOrder) Valid() bool { return o == Asc || o == Desc }

// Toggle flips the order.
func (o SortOrder) Toggle() SortOrder {
	if o == Desc {
		return Asc
	}
	return Desc
}
