package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-search/backend/internal/filter"
	"github.com/pageza/recipe-search/backend/internal/service"
)

type RecipeHandler struct {
	service service.IRecipeService
}

func NewRecipeHandler(recipeService service.IRecipeService) *RecipeHandler {
	return &RecipeHandler{
		service: recipeService,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/search", h.SearchRecipes)
	}
}

// ListRecipes returns one page of all recipes by rating. Filter parameters
// are ignored on this route.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	h.page(c, nil)
}

// SearchRecipes returns one page of recipes matching every supplied filter.
func (h *RecipeHandler) SearchRecipes(c *gin.Context) {
	h.page(c, filter.SearchFields)
}

func (h *RecipeHandler) page(c *gin.Context, specs []filter.FieldSpec) {
	q, err := filter.Parse(filter.FromValues(c.Request.URL.Query()), specs)
	if err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
