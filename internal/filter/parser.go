// Package filter turns raw HTTP query parameters into typed pagination and
// predicate values for the recipe query builder. It performs no I/O.
package filter

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/pageza/recipe-search/backend/internal/apperror"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Predicate is a single filter condition.
type Predicate struct {
	Field    FieldSpec
	Operator Operator
	// Value is a float64 for numeric fields and a string for text fields.
	Value any
}

// ParsedQuery is the validated form of a request's query parameters.
type ParsedQuery struct {
	Page       int
	Limit      int
	Offset     int
	Predicates []Predicate
}

// Parse validates pagination and extracts a predicate for every field in
// specs that carries a usable value. Malformed numeric filters are dropped
// rather than reported; only pagination errors are returned.
func Parse(raw map[string]string, specs []FieldSpec) (*ParsedQuery, error) {
	page, err := positiveInt(raw, "page", DefaultPage)
	if err != nil {
		return nil, err
	}
	limit, err := positiveInt(raw, "limit", DefaultLimit)
	if err != nil {
		return nil, err
	}
	// The offset must be representable.
	if page-1 > math.MaxInt/limit {
		return nil, apperror.NewInvalidParameter("page", raw["page"])
	}

	q := &ParsedQuery{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	for _, spec := range specs {
		value := strings.TrimSpace(raw[spec.Param])
		if value == "" {
			continue
		}

		switch spec.Kind {
		case Numeric:
			op, num, ok := ParseComparison(value)
			if !ok {
				continue
			}
			q.Predicates = append(q.Predicates, Predicate{Field: spec, Operator: op, Value: num})
		case Text:
			op := Contains
			if spec.Match == Exact {
				op = Equal
			}
			q.Predicates = append(q.Predicates, Predicate{Field: spec, Operator: op, Value: value})
		}
	}

	return q, nil
}

// FromValues flattens url.Values to the first value of each key.
func FromValues(values url.Values) map[string]string {
	raw := make(map[string]string, len(values))
	for key := range values {
		raw[key] = values.Get(key)
	}
	return raw
}

func positiveInt(raw map[string]string, name string, def int) (int, error) {
	value := strings.TrimSpace(raw[name])
	if value == "" {
		return def, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, apperror.NewInvalidParameter(name, raw[name])
	}
	return n, nil
}

// Key returns a canonical string for q, stable across parameter order.
func (q *ParsedQuery) Key() string {
	var b strings.Builder
	b.WriteString("page=")
	b.WriteString(strconv.Itoa(q.Page))
	b.WriteString("&limit=")
	b.WriteString(strconv.Itoa(q.Limit))
	for _, p := range q.Predicates {
		b.WriteByte('&')
		b.WriteString(p.Field.Param)
		b.WriteByte('.')
		b.WriteString(p.Operator.String())
		b.WriteByte('=')
		switch v := p.Value.(type) {
		case float64:
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		case string:
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}
