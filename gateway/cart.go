package gateway

import (
	"net/http"

	"github.com/example/fooddash/pkg/service"
	"github.com/gin-gonic/gin"
)

type addToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"quantity"`
}

type updateCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

func (g *Gateway) respondCart(c *gin.Context, message string, cart *service.CartView, err error) {
	if err != nil {
		g.respondError(c, err)
		return
	}
	g.rewriteCart(c, cart)
	respond(c, http.StatusOK, message, cart)
}

func (g *Gateway) getCart(c *gin.Context) {
	cart, err := g.services.Carts.GetCart(c.Request.Context(), currentUserID(c))
	g.respondCart(c, "Cart retrieved successfully", cart, err)
}

func (g *Gateway) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.badRequest(c, "productId is required")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := g.services.Carts.AddItem(c.Request.Context(), currentUserID(c), req.ProductID, quantity)
	g.respondCart(c, "Item added to cart", cart, err)
}

func (g *Gateway) updateCartItem(c *gin.Context) {
	var req updateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.badRequest(c, "productId is required")
		return
	}

	cart, err := g.services.Carts.UpdateItem(c.Request.Context(), currentUserID(c), req.ProductID, req.Quantity)
	g.respondCart(c, "Cart updated", cart, err)
}

func (g *Gateway) removeFromCart(c *gin.Context) {
	cart, err := g.services.Carts.RemoveItem(c.Request.Context(), currentUserID(c), c.Param("productId"))
	g.respondCart(c, "Item removed from cart", cart, err)
}

func (g *Gateway) clearCart(c *gin.Context) {
	cart, err := g.services.Carts.Clear(c.Request.Context(), currentUserID(c))
	g.respondCart(c, "Cart cleared", cart, err)
}
