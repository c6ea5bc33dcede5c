package filter

import "strings"

// Kind distinguishes how a field's raw value is interpreted.
type Kind int

const (
	Numeric Kind = iota + 1
	Text
)

// MatchPolicy fixes how a text field is compared. Each field uses exactly
// one policy.
type MatchPolicy int

const (
	// Substring matches values containing the input anywhere, ignoring case.
	Substring MatchPolicy = iota + 1
	// Exact matches values equal to the input.
	Exact
)

// FieldSpec binds a query parameter to a storage location.
type FieldSpec struct {
	// Param is the query parameter name.
	Param string
	// Path is the storage location: a column name, or "column.key" for a
	// key nested in a JSON column.
	Path  string
	Kind  Kind
	Match MatchPolicy
}

// Nested reports whether the field addresses a key inside a JSON column.
func (f FieldSpec) Nested() bool {
	return strings.Contains(f.Path, ".")
}

// SearchFields are the filterable fields of the search endpoint, in the
// order their predicates are emitted.
var SearchFields = []FieldSpec{
	{Param: "title", Path: "title", Kind: Text, Match: Substring},
	{Param: "cuisine", Path: "cuisine", Kind: Text, Match: Substring},
	{Param: "serves", Path: "serves", Kind: Text, Match: Substring},
	{Param: "rating", Path: "rating", Kind: Numeric},
	{Param: "total_time", Path: "total_time", Kind: Numeric},
	{Param: "calories", Path: "nutrients.calories", Kind: Numeric},
}
