package service

import (
	"context"

	"github.com/pageza/recipe-search/backend/internal/filter"
	"github.com/pageza/recipe-search/backend/internal/types"
)

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	// Search returns one page of recipes matching every predicate in q,
	// ordered by rating descending.
	Search(ctx context.Context, q *filter.ParsedQuery) (*types.PageResult, error)
}
