package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipe-search/backend/internal/filter"
	"github.com/pageza/recipe-search/backend/internal/types"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

// Search mocks the Search method
func (m *MockRecipeService) Search(ctx context.Context, q *filter.ParsedQuery) (*types.PageResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PageResult), args.Error(1)
}
