package filter

import (
	"regexp"
	"strconv"
	"strings"
)

// Operator is the comparison applied by a predicate.
type Operator int

const (
	LessThan Operator = iota + 1
	GreaterThan
	LessOrEqual
	GreaterOrEqual
	Equal
	// Contains is the implicit operator of text fields.
	Contains
)

var operatorSymbols = map[string]Operator{
	"<":  LessThan,
	">":  GreaterThan,
	"<=": LessOrEqual,
	">=": GreaterOrEqual,
	"=":  Equal,
}

// SQL returns the comparison token for numeric operators. Contains has no
// token of its own; the query builder renders it as LIKE.
func (o Operator) SQL() string {
	switch o {
	case LessThan:
		return "<"
	case GreaterThan:
		return ">"
	case LessOrEqual:
		return "<="
	case GreaterOrEqual:
		return ">="
	case Equal:
		return "="
	}
	return ""
}

func (o Operator) String() string {
	if o == Contains {
		return "contains"
	}
	if s := o.SQL(); s != "" {
		return s
	}
	return "unknown"
}

// IsNumeric reports whether o compares numbers.
func (o Operator) IsNumeric() bool {
	return o >= LessThan && o <= Equal
}

var decimalLiteral = regexp.MustCompile(`^[0-9]+(\.[0-9]*)?$`)

// ParseComparison splits an encoded numeric filter such as ">4.5" into its
// operator and value. The operator is the longest leading run of '<', '>'
// and '='. ok is false when that run is not a recognised operator or the
// remainder is not a decimal literal.
func ParseComparison(raw string) (op Operator, value float64, ok bool) {
	raw = strings.TrimSpace(raw)
	split := strings.IndexFunc(raw, func(r rune) bool {
		return r != '<' && r != '>' && r != '='
	})
	if split <= 0 {
		return 0, 0, false
	}

	op, known := operatorSymbols[raw[:split]]
	if !known {
		return 0, 0, false
	}

	literal := raw[split:]
	if !decimalLiteral.MatchString(literal) {
		return 0, 0, false
	}
	value, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return 0, 0, false
	}
	return op, value, true
}
