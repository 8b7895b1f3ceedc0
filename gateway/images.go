package gateway

import (
	"strings"

	"github.com/example/fooddash/pkg/models"
	"github.com/example/fooddash/pkg/service"
	"github.com/gin-gonic/gin"
)

// absoluteURL turns a stored relative image path into a URL on this
// server. Absolute URLs and empty paths are returned unchanged.
func (g *Gateway) absoluteURL(c *gin.Context, path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return g.baseURL(c) + "/" + strings.TrimLeft(strings.ReplaceAll(path, "\\", "/"), "/")
}

func (g *Gateway) baseURL(c *gin.Context) string {
	if g.config.PublicBaseURL != "" {
		return strings.TrimRight(g.config.PublicBaseURL, "/")
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}

func (g *Gateway) rewriteProduct(c *gin.Context, p *models.ProductDetail) {
	if p == nil {
		return
	}
	p.Image = g.absoluteURL(c, p.Image)
	if p.Category != nil {
		p.Category.Image = g.absoluteURL(c, p.Category.Image)
	}
	if p.Restaurant != nil {
		p.Restaurant.Image = g.absoluteURL(c, p.Restaurant.Image)
	}
}

func (g *Gateway) rewriteCart(c *gin.Context, cart *service.CartView) {
	for i := range cart.Items {
		g.rewriteProduct(c, cart.Items[i].Product)
	}
}

func (g *Gateway) rewriteOrder(c *gin.Context, order *service.OrderView) {
	for i := range order.Items {
		g.rewriteProduct(c, order.Items[i].Product)
	}
}
