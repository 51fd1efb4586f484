package graph

import "errors"

// OverDelegatedFilter selects indexers by their delegation-ceiling status
type OverDelegatedFilter string

// Recognized over_delegated filter values
const (
	OverDelegatedAny     OverDelegatedFilter = "any"
	OverDelegatedOnly    OverDelegatedFilter = "only"
	OverDelegatedExclude OverDelegatedFilter = "exclude"
)

// ErrUnknownOverDelegatedFilter indicates an unrecognized filter value
var ErrUnknownOverDelegatedFilter = errors.New("over_delegated must be one of: any, only, exclude")

// ParseOverDelegatedFilter creates an OverDelegatedFilter with validation;
// an empty value means no filtering
func ParseOverDelegatedFilter(raw string) (OverDelegatedFilter, error) {
	switch OverDelegatedFilter(raw) {
	case "", OverDelegatedAny:
		return OverDelegatedAny, nil
	case OverDelegatedOnly:
		return OverDelegatedOnly, nil
	case OverDelegatedExclude:
		return OverDelegatedExclude, nil
	default:
		return "", ErrUnknownOverDelegatedFilter
	}
}

// String returns the filter as a string
func (f OverDelegatedFilter) String() string {
	return string(f)
}
