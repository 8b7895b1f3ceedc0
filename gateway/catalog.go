package gateway

import (
	"net/http"
	"strconv"

	"github.com/example/fooddash/pkg/service"
	"github.com/gin-gonic/gin"
)

func (g *Gateway) listProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	result, err := g.services.Catalog.ListProducts(c.Request.Context(), service.ProductQuery{
		Category:   c.Query("category"),
		Restaurant: c.Query("restaurant"),
		Available:  c.Query("available"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		g.respondError(c, err)
		return
	}
	for _, p := range result.Products {
		g.rewriteProduct(c, p)
	}
	respondPage(c, "Products retrieved successfully", result.Products, result.Pagination)
}

func (g *Gateway) getProduct(c *gin.Context) {
	product, err := g.services.Catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	g.rewriteProduct(c, product)
	respond(c, http.StatusOK, "Product retrieved successfully", product)
}

func (g *Gateway) listCategories(c *gin.Context) {
	categories, err := g.services.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		g.respondError(c, err)
		return
	}
	for i := range categories {
		categories[i].Image = g.absoluteURL(c, categories[i].Image)
	}
	respond(c, http.StatusOK, "Categories retrieved successfully", categories)
}

func (g *Gateway) listRestaurants(c *gin.Context) {
	restaurants, err := g.services.Catalog.ListRestaurants(c.Request.Context())
	if err != nil {
		g.respondError(c, err)
		return
	}
	for i := range restaurants {
		restaurants[i].Image = g.absoluteURL(c, restaurants[i].Image)
	}
	respond(c, http.StatusOK, "Restaurants retrieved successfully", restaurants)
}
