package service

import (
	"context"
	"database/sql"
	"log/slog"

	"gorm.io/gorm"

	"github.com/pageza/recipe-search/backend/internal/apperror"
	"github.com/pageza/recipe-search/backend/internal/filter"
	"github.com/pageza/recipe-search/backend/internal/model"
	"github.com/pageza/recipe-search/backend/internal/types"
)

// RecipeService handles recipe operations
type RecipeService struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, logger *slog.Logger) *RecipeService {
	return &RecipeService{
		db:     db,
		logger: logger,
	}
}

// Search counts the matching recipes and reads the requested page inside one
// read transaction, so total and data describe the same snapshot.
func (s *RecipeService) Search(ctx context.Context, q *filter.ParsedQuery) (*types.PageResult, error) {
	dialect := s.db.Dialector.Name()
	scopes := predicateScopes(dialect, q.Predicates)
	result := types.NewPageResult(q.Page, q.Limit)

	var rows []model.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Recipe{}).Scopes(scopes...).Count(&result.Total).Error; err != nil {
			return err
		}
		if q.Offset < 0 || int64(q.Offset) >= result.Total {
			return nil
		}
		return tx.Model(&model.Recipe{}).
			Scopes(scopes...).
			Select(model.Columns).
			Order("rating DESC").
			Order("id ASC").
			Limit(q.Limit).
			Offset(q.Offset).
			Find(&rows).Error
	}, readOnlyTx(dialect)...)
	if err != nil {
		return nil, apperror.NewStorage(err)
	}

	for _, row := range rows {
		recipe, err := types.RecipeFromModel(row)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to decode stored recipe", "recipe_id", row.ID, "error", err)
			return nil, apperror.NewIntegrity(row.ID, err)
		}
		result.Data = append(result.Data, recipe)
	}

	return result, nil
}

// readOnlyTx returns the transaction options for a consistent read. SQLite
// transactions are already serializable and its driver rejects isolation
// levels, so it gets none.
func readOnlyTx(dialect string) []*sql.TxOptions {
	if dialect != dialectPostgres {
		return nil
	}
	return []*sql.TxOptions{{Isolation: sql.LevelRepeatableRead, ReadOnly: true}}
}
