package service

import (
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/recipe-search/backend/internal/filter"
)

const dialectPostgres = "postgres"

// Leading numeric prefix of a nutrient value such as "389 kcal". Written
// with {0,1} because gorm treats '?' as a bind placeholder.
const pgNumericPrefix = `'^\s*([0-9]+(\.[0-9]+){0,1})'`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern using '\' as the
// escape character.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// columnExpr renders the SQL expression for a field. The result is built only
// from the static field table, never from request input.
func columnExpr(dialect string, field filter.FieldSpec) string {
	if !field.Nested() {
		return field.Path
	}

	column, key, _ := strings.Cut(field.Path, ".")
	if field.Kind != filter.Numeric {
		if dialect == dialectPostgres {
			return "(" + column + "::jsonb ->> '" + key + "')"
		}
		return "json_extract(" + column + ", '$." + key + "')"
	}

	if dialect == dialectPostgres {
		return "CAST(substring(" + column + "::jsonb ->> '" + key + "' from " + pgNumericPrefix + ") AS DOUBLE PRECISION)"
	}
	return "CAST(json_extract(" + column + ", '$." + key + "') AS REAL)"
}

// predicateScope turns one predicate into a WHERE condition with its value
// bound as a parameter.
func predicateScope(dialect string, p filter.Predicate) func(*gorm.DB) *gorm.DB {
	column := columnExpr(dialect, p.Field)

	return func(db *gorm.DB) *gorm.DB {
		if p.Operator == filter.Contains {
			text, _ := p.Value.(string)
			like := "LIKE"
			if dialect == dialectPostgres {
				like = "ILIKE"
			}
			return db.Where(column+" "+like+` ? ESCAPE '\'`, "%"+escapeLike(text)+"%")
		}
		return db.Where(comparison(dialect, column, p.Operator), p.Value)
	}
}

// comparison renders "column op ?". Postgres infers a parameter's type from
// the column, so the value is cast to keep fractional literals valid against
// integer columns.
func comparison(dialect, column string, op filter.Operator) string {
	if dialect == dialectPostgres {
		return column + " " + op.SQL() + " CAST(? AS DOUBLE PRECISION)"
	}
	return column + " " + op.SQL() + " ?"
}

// predicateScopes returns the conjunction of all predicates as gorm scopes.
func predicateScopes(dialect string, predicates []filter.Predicate) []func(*gorm.DB) *gorm.DB {
	scopes := make([]func(*gorm.DB) *gorm.DB, 0, len(predicates))
	for _, p := range predicates {
		scopes = append(scopes, predicateScope(dialect, p))
	}
	return scopes
}
