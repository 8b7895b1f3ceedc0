package gateway

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/example/fooddash/pkg/service"
	"github.com/gin-gonic/gin"
)

type paymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
}

func (g *Gateway) createOrder(c *gin.Context) {
	var req service.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		g.badRequest(c, "Invalid request body")
		return
	}

	order, err := g.services.Orders.CreateOrder(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		g.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Order placed successfully", order)
}

func (g *Gateway) listOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	result, err := g.services.Orders.ListOrders(c.Request.Context(), currentUserID(c), service.ListOrdersInput{
		Status: c.Query("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		g.respondError(c, err)
		return
	}
	for _, order := range result.Orders {
		g.rewriteOrder(c, order)
	}
	respondPage(c, "Orders retrieved successfully", result.Orders, result.Pagination)
}

func (g *Gateway) getOrder(c *gin.Context) {
	order, err := g.services.Orders.GetOrder(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	g.rewriteOrder(c, order)
	respond(c, http.StatusOK, "Order retrieved successfully", order)
}

func (g *Gateway) orderHistory(c *gin.Context) {
	logs, err := g.services.Orders.OrderHistory(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order history retrieved successfully", logs)
}

func (g *Gateway) cancelOrder(c *gin.Context) {
	order, err := g.services.Orders.CancelOrder(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order cancelled successfully", order)
}

func (g *Gateway) markReceived(c *gin.Context) {
	order, err := g.services.Orders.MarkReceived(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order marked as received", order)
}

func (g *Gateway) updatePaymentStatus(c *gin.Context) {
	var req paymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.badRequest(c, "paymentStatus is required")
		return
	}

	order, err := g.services.Orders.UpdatePaymentStatus(c.Request.Context(), currentUserID(c), c.Param("id"), req.PaymentStatus)
	if err != nil {
		g.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Payment status updated", order)
}

// purchaseTrend serves the caller's trend, or the userId query parameter
// for anonymous callers.
func (g *Gateway) purchaseTrend(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		userID = c.Query("userId")
	}
	if userID == "" {
		g.badRequest(c, "userId is required")
		return
	}

	trend, err := g.services.Orders.PurchaseTrend(c.Request.Context(), userID)
	if err != nil {
		g.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Purchase trend retrieved successfully", trend)
}
