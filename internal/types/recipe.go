package types

import (
	"github.com/pageza/recipe-search/backend/internal/model"
)

// Recipe is the JSON representation of a stored recipe. Absent values are
// serialized as null.
type Recipe struct {
	ID          int64           `json:"id"`
	Cuisine     *string         `json:"cuisine"`
	Title       *string         `json:"title"`
	Rating      *float64        `json:"rating"`
	PrepTime    *int            `json:"prep_time"`
	CookTime    *int            `json:"cook_time"`
	TotalTime   *int            `json:"total_time"`
	Description *string         `json:"description"`
	Nutrients   model.Nutrients `json:"nutrients"`
	Serves      *string         `json:"serves"`
}

// PageResult is one page of a listing or search.
type PageResult struct {
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
	Total int64    `json:"total"`
	Data  []Recipe `json:"data"`
}

// NewPageResult returns an empty page. Data is never nil so that it
// serializes as [].
func NewPageResult(page, limit int) *PageResult {
	return &PageResult{
		Page:  page,
		Limit: limit,
		Data:  []Recipe{},
	}
}

// RecipeFromModel converts a stored row, decoding its nutrients.
func RecipeFromModel(row model.Recipe) (Recipe, error) {
	nutrients, err := model.DecodeNutrients(row.Nutrients)
	if err != nil {
		return Recipe{}, err
	}
	return Recipe{
		ID:          row.ID,
		Cuisine:     row.Cuisine,
		Title:       row.Title,
		Rating:      row.Rating,
		PrepTime:    row.PrepTime,
		CookTime:    row.CookTime,
		TotalTime:   row.TotalTime,
		Description: row.Description,
		Nutrients:   nutrients,
		Serves:      row.Serves,
	}, nil
}
