package testhelpers

import (
	"testing"

	"gorm.io/datatypes"

	"github.com/pageza/recipe-search/backend/internal/database"
	"github.com/pageza/recipe-search/backend/internal/model"
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Recipe builds a row with the fields the filter tests care about.
// nutrients is stored verbatim; pass "" for an empty document.
func Recipe(title, cuisine string, rating float64, totalTime int, nutrients string) model.Recipe {
	if nutrients == "" {
		nutrients = "{}"
	}
	return model.Recipe{
		Title:     Ptr(title),
		Cuisine:   Ptr(cuisine),
		Rating:    Ptr(rating),
		TotalTime: Ptr(totalTime),
		Nutrients: datatypes.JSON(nutrients),
	}
}

// SeedRecipes inserts rows in order and returns them with IDs assigned.
func SeedRecipes(t *testing.T, db *database.DB, recipes ...model.Recipe) []model.Recipe {
	t.Helper()
	for i := range recipes {
		if err := db.Create(&recipes[i]).Error; err != nil {
			t.Fatalf("failed to seed recipe %d: %v", i, err)
		}
	}
	return recipes
}

// SeedItalianScenario inserts the three-record dataset used across
// packages: two Italian recipes either side of rating 4 and one Mexican.
func SeedItalianScenario(t *testing.T, db *database.DB) []model.Recipe {
	t.Helper()
	return SeedRecipes(t, db,
		Recipe("Pasta Bake", "Italian", 4.5, 45, `{"calories": 389}`),
		Recipe("Tacos", "Mexican", 3.9, 20, `{"calories": 250}`),
		Recipe("Risotto", "Italian", 3.8, 40, `{"calories": 420}`),
	)
}

// SeedConjunctionScenario inserts a dataset where cuisine and rating each
// select a different top recipe, so only their conjunction yields one row.
func SeedConjunctionScenario(t *testing.T, db *database.DB) []model.Recipe {
	t.Helper()
	return SeedRecipes(t, db,
		Recipe("Pasta Bake", "Italian", 4.8, 45, `{"calories": 389}`),
		Recipe("Pasta Salad", "Italian", 3.2, 15, `{"calories": 310}`),
		Recipe("Tacos", "Mexican", 4.9, 20, `{"calories": 250}`),
	)
}

// InsertRawNutrients stores a row bypassing the model so that malformed
// nutrients can be written.
func InsertRawNutrients(t *testing.T, db *database.DB, title string, nutrients any) {
	t.Helper()
	if err := db.Exec("INSERT INTO recipes (title, rating, nutrients) VALUES (?, ?, ?)", title, 5.0, nutrients).Error; err != nil {
		t.Fatalf("failed to insert raw recipe: %v", err)
	}
}
