// Package query models the navigable list query state: the sort codec and
// the page/limit/search/sort tuple that list views serialize into a location
// so results are shareable and restorable from a link.
package query

import "strings"

// Direction is the signed sort indicator used by sortable column headers.
// Descending is positive and Ascending negative, matching the header widget
// convention the remote API grew up with.
type Direction int

const (
	// DirectionNone means no active sort.
	DirectionNone Direction = 0
	// Ascending sorts a column in ascending order.
	Ascending Direction = -1
	// Descending sorts a column in descending order.
	Descending Direction = 1
)

const (
	ascToken  = "ASC"
	descToken = "DESC"
)

// Sort is the structured form of a serialized sort parameter.
type Sort struct {
	Column    string
	Direction Direction
}

// IsZero reports whether no sort is active.
func (s Sort) IsZero() bool { return s.Column == "" && s.Direction == DirectionNone }

// EncodeSort serializes a column/direction pair as "<column> ASC" or
// "<column> DESC". A none direction yields the empty string, meaning
// "remove sort". Column names are not validated; unsortable columns never
// reach the codec because their headers are not clickable.
func EncodeSort(column string, dir Direction) string {
	if column == "" || dir == DirectionNone {
		return ""
	}
	token := ascToken
	if dir > 0 {
		token = descToken
	}
	return column + " " + token
}

// DecodeSort parses a serialized sort parameter. The trailing token carries
// the direction; everything before it is the column. Empty or absent input
// decodes to the neutral Sort{Column: "", Direction: DirectionNone}.
func DecodeSort(s string) Sort {
	s = strings.TrimSpace(s)
	if s == "" {
		return Sort{}
	}

	idx := strings.LastIndexByte(s, ' ')
	if idx < 0 {
		return Sort{Column: s, Direction: DirectionNone}
	}

	column := strings.TrimSpace(s[:idx])
	switch s[idx+1:] {
	case descToken:
		return Sort{Column: column, Direction: Descending}
	case ascToken:
		return Sort{Column: column, Direction: Ascending}
	default:
		return Sort{Column: s, Direction: DirectionNone}
	}
}

// Encode serializes the sort back into its parameter form.
func (s Sort) Encode() string { return EncodeSort(s.Column, s.Direction) }
