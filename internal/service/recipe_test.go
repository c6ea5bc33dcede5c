package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/pageza/recipe-search/backend/internal/apperror"
	"github.com/pageza/recipe-search/backend/internal/database"
	"github.com/pageza/recipe-search/backend/internal/filter"
	"github.com/pageza/recipe-search/backend/internal/logging"
	"github.com/pageza/recipe-search/backend/internal/model"
	"github.com/pageza/recipe-search/backend/internal/testhelpers"
	"github.com/pageza/recipe-search/backend/internal/types"
)

func newService(db *database.DB) *RecipeService {
	return NewRecipeService(db.DB, logging.NullLogger())
}

func search(t *testing.T, svc IRecipeService, query string) (*types.PageResult, error) {
	t.Helper()
	values, err := url.ParseQuery(query)
	require.NoError(t, err)
	q, err := filter.Parse(filter.FromValues(values), filter.SearchFields)
	require.NoError(t, err)
	return svc.Search(context.Background(), q)
}

func titles(page *types.PageResult) []string {
	out := make([]string, 0, len(page.Data))
	for _, r := range page.Data {
		if r.Title == nil {
			out = append(out, "")
			continue
		}
		out = append(out, *r.Title)
	}
	return out
}

func TestSearch_ItalianAboveFour(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedConjunctionScenario(t, db)
	svc := newService(db)

	page, err := search(t, svc, "cuisine=Italian&rating=>4.0")
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, []string{"Pasta Bake"}, titles(page))

	page, err = search(t, svc, "rating=>4.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tacos", "Pasta Bake"}, titles(page))

	page, err = search(t, svc, "cuisine=Italian")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pasta Bake", "Pasta Salad"}, titles(page))
}

func TestSearch_NoFiltersSortedByRating(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedItalianScenario(t, db)

	page, err := search(t, newService(db), "")

	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, []string{"Pasta Bake", "Tacos", "Risotto"}, titles(page))
}

func TestSearch_EqualRatingsOrderedByID(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedRecipes(t, db,
		testhelpers.Recipe("First", "French", 4.0, 10, ""),
		testhelpers.Recipe("Second", "French", 4.0, 10, ""),
		testhelpers.Recipe("Best", "French", 4.8, 10, ""),
	)

	page, err := search(t, newService(db), "")

	require.NoError(t, err)
	assert.Equal(t, []string{"Best", "First", "Second"}, titles(page))
}

func TestSearch_NullRatingsLast(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedItalianScenario(t, db)
	testhelpers.SeedRecipes(t, db, model.Recipe{Title: testhelpers.Ptr("Unrated"), Nutrients: datatypes.JSON("{}")})

	page, err := search(t, newService(db), "")

	require.NoError(t, err)
	assert.Equal(t, []string{"Pasta Bake", "Tacos", "Risotto", "Unrated"}, titles(page))
	assert.Nil(t, page.Data[3].Rating)
}

func TestSearch_Pagination(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	for i := 0; i < 25; i++ {
		testhelpers.SeedRecipes(t, db,
			testhelpers.Recipe(fmt.Sprintf("Recipe %02d", i), "Any", float64(i)/5, 30, ""))
	}
	svc := newService(db)

	tests := []struct {
		query string
		count int
		first string
	}{
		{query: "page=1&limit=10", count: 10, first: "Recipe 24"},
		{query: "page=2&limit=10", count: 10, first: "Recipe 14"},
		{query: "page=3&limit=10", count: 5, first: "Recipe 04"},
		{query: "page=1&limit=25", count: 25, first: "Recipe 24"},
		{query: "page=7&limit=4", count: 1, first: "Recipe 00"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page, err := search(t, svc, tt.query)

			require.NoError(t, err)
			assert.Equal(t, int64(25), page.Total)
			assert.Len(t, page.Data, tt.count)
			assert.LessOrEqual(t, len(page.Data), page.Limit)
			assert.Equal(t, tt.first, *page.Data[0].Title)
		})
	}
}

func TestSearch_PageBeyondData(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedItalianScenario(t, db)

	page, err := search(t, newService(db), "page=5&limit=10")

	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
}

func TestSearch_HugePageIsEmpty(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedItalianScenario(t, db)
	svc := newService(db)

	page, err := search(t, svc, "page=2305843009213693951&limit=4")
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Empty(t, page.Data)

	values, err := url.ParseQuery("page=4611686018427387905&limit=4")
	require.NoError(t, err)
	_, err = filter.Parse(filter.FromValues(values), filter.SearchFields)
	assert.Equal(t, apperror.InvalidParameter, apperror.KindOf(err))
}

func TestSearch_NegativeOffsetIsEmpty(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedItalianScenario(t, db)

	page, err := newService(db).Search(context.Background(), &filter.ParsedQuery{Page: 3, Limit: 10, Offset: -5})

	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Empty(t, page.Data)
}

func TestSearch_RatingIsStrict(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedRecipes(t, db,
		testhelpers.Recipe("Exactly", "Any", 4.5, 10, ""),
		testhelpers.Recipe("Above", "Any", 4.6, 10, ""),
		testhelpers.Recipe("Top", "Any", 5.0, 10, ""),
		testhelpers.Recipe("Below", "Any", 4.4, 10, ""),
	)
	svc := newService(db)

	page, err := search(t, svc, "rating=>4.5")
	require.NoError(t, err)
	assert.Equal(t, []string{"Top", "Above"}, titles(page))
	for _, r := range page.Data {
		assert.Greater(t, *r.Rating, 4.5)
	}

	page, err = search(t, svc, "rating=>=4.5")
	require.NoError(t, err)
	assert.Equal(t, []string{"Top", "Above", "Exactly"}, titles(page))

	page, err = search(t, svc, "rating==4.5")
	require.NoError(t, err)
	assert.Equal(t, []string{"Exactly"}, titles(page))
}

func TestSearch_TotalTime(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedItalianScenario(t, db)

	svc := newService(db)

	page, err := search(t, svc, "total_time=<=40")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tacos", "Risotto"}, titles(page))

	page, err = search(t, svc, "total_time=<40.5")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tacos", "Risotto"}, titles(page))
}

func TestSearch_Calories(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedItalianScenario(t, db)
	testhelpers.SeedRecipes(t, db,
		testhelpers.Recipe("Soup", "French", 3.0, 25, `{"calories": "310 kcal"}`),
		testhelpers.Recipe("Water", "None", 1.0, 1, `{}`),
	)
	svc := newService(db)

	page, err := search(t, svc, "calories=<300")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tacos"}, titles(page))

	page, err = search(t, svc, "calories=>300&calories=<400")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pasta Bake", "Risotto", "Soup"}, titles(page), "only the first calories value is used")
}

func TestSearch_CuisineSubstringIgnoresCase(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedItalianScenario(t, db)
	testhelpers.SeedRecipes(t, db, testhelpers.Recipe("Caponata", "Southern Italian", 4.1, 60, ""))

	page, err := search(t, newService(db), "cuisine=italian")

	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, []string{"Pasta Bake", "Caponata", "Risotto"}, titles(page))
}

func TestSearch_TitleAndServes(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	pie := testhelpers.Recipe("Apple Pie", "American", 4.7, 90, "")
	pie.Serves = testhelpers.Ptr("8 servings")
	crumble := testhelpers.Recipe("Apple Crumble", "British", 4.2, 50, "")
	crumble.Serves = testhelpers.Ptr("4 servings")
	testhelpers.SeedRecipes(t, db, pie, crumble, testhelpers.Recipe("Pear Tart", "French", 4.9, 60, ""))
	svc := newService(db)

	page, err := search(t, svc, "title=APPLE")
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple Pie", "Apple Crumble"}, titles(page))

	page, err = search(t, svc, "title=apple&serves=4")
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple Crumble"}, titles(page))
}

func TestSearch_LikeWildcardsMatchLiterally(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedRecipes(t, db,
		testhelpers.Recipe("100% Rye", "German", 4.0, 180, ""),
		testhelpers.Recipe("1000 Rye Rolls", "German", 3.0, 120, ""),
		testhelpers.Recipe("a_b", "Test", 2.0, 1, ""),
		testhelpers.Recipe("axb", "Test", 1.0, 1, ""),
		testhelpers.Recipe(`back\slash`, "Test", 0.5, 1, ""),
	)
	svc := newService(db)

	page, err := search(t, svc, "title="+url.QueryEscape("100%"))
	require.NoError(t, err)
	assert.Equal(t, []string{"100% Rye"}, titles(page))

	page, err = search(t, svc, "title=a_b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b"}, titles(page))

	page, err = search(t, svc, "title="+url.QueryEscape(`k\s`))
	require.NoError(t, err)
	assert.Equal(t, []string{`back\slash`}, titles(page))
}

func TestSearch_InjectionAttemptIsAValue(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedItalianScenario(t, db)

	page, err := search(t, newService(db), "title="+url.QueryEscape("' OR 1=1 --"))

	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)

	var count int64
	require.NoError(t, db.Model(&model.Recipe{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestSearch_MalformedFilterEqualsUnfiltered(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedItalianScenario(t, db)
	svc := newService(db)

	unfiltered, err := search(t, svc, "")
	require.NoError(t, err)

	for _, query := range []string{"rating=banana", "rating=4.5", "total_time=%3C%3E4", "calories=>abc"} {
		t.Run(query, func(t *testing.T) {
			page, err := search(t, svc, query)
			require.NoError(t, err)
			assert.Equal(t, unfiltered, page)
		})
	}
}

func TestSearch_NutrientsRoundTrip(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	stored := `{"calories": 389, "fatContent": "12 g", "vitamins": {"c": 0.5}, "tags": ["a", "b"]}`
	testhelpers.SeedRecipes(t, db, testhelpers.Recipe("Pasta Bake", "Italian", 4.5, 45, stored))

	page, err := search(t, newService(db), "")
	require.NoError(t, err)
	require.Len(t, page.Data, 1)

	out, err := json.Marshal(page.Data[0].Nutrients)
	require.NoError(t, err)
	assert.JSONEq(t, stored, string(out))
}

func TestSearch_MalformedNutrientsIsIntegrityError(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedItalianScenario(t, db)
	testhelpers.InsertRawNutrients(t, db, "Broken", `{"calories": `)

	page, err := search(t, newService(db), "")

	assert.Nil(t, page)
	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.IntegrityError, appErr.Kind)
	assert.Contains(t, appErr.Message, "malformed stored data")
}

func TestSearch_LoaderSchema(t *testing.T) {
	db := testhelpers.SetupLoaderSQLiteDB(t)
	testhelpers.SeedItalianScenario(t, db)
	svc := newService(db)

	page, err := search(t, svc, "cuisine=Italian&rating=>4.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pasta Bake"}, titles(page))

	testhelpers.InsertRawNutrients(t, db, "No Nutrients", nil)
	_, err = search(t, svc, "")
	assert.Equal(t, apperror.IntegrityError, apperror.KindOf(err))

	_, err = search(t, svc, "rating=<4")
	assert.NoError(t, err, "the null row is outside the filtered page")
}

func TestSearch_StorageErrors(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedItalianScenario(t, db)
	svc := newService(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	q, err := filter.Parse(map[string]string{}, nil)
	require.NoError(t, err)

	_, err = svc.Search(ctx, q)
	assert.Equal(t, apperror.StorageError, apperror.KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, db.Exec("DROP TABLE recipes").Error)
	_, err = svc.Search(context.Background(), q)
	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.StorageError, appErr.Kind)
	assert.Equal(t, "database error", appErr.Message)
}

func TestSearch_Postgres(t *testing.T) {
	db := testhelpers.SetupPostgresDB(t)
	testhelpers.SeedItalianScenario(t, db)
	testhelpers.SeedRecipes(t, db,
		testhelpers.Recipe("Soup", "french", 3.0, 25, `{"calories": "310 kcal"}`),
		model.Recipe{Title: testhelpers.Ptr("Unrated"), Nutrients: datatypes.JSON("{}")},
	)
	svc := newService(db)

	page, err := search(t, svc, "cuisine=Italian&rating=>4.0")
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, []string{"Pasta Bake"}, titles(page))

	page, err = search(t, svc, "cuisine=FRENCH")
	require.NoError(t, err)
	assert.Equal(t, []string{"Soup"}, titles(page))

	page, err = search(t, svc, "calories=>300")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pasta Bake", "Risotto", "Soup"}, titles(page))

	page, err = search(t, svc, "total_time=<40.5")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tacos", "Risotto", "Soup"}, titles(page))

	page, err = search(t, svc, "rating=>=3.85&total_time=>19.5")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pasta Bake", "Tacos"}, titles(page))

	page, err = search(t, svc, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, "Unrated", *page.Data[0].Title, "postgres sorts null ratings first when descending")
}
