package gateway

import (
	"net/http"

	"github.com/example/fooddash/pkg/service"
	"github.com/gin-gonic/gin"
)

func (g *Gateway) recordPayment(c *gin.Context) {
	var req service.RecordPaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		g.badRequest(c, "Invalid request body")
		return
	}

	record, err := g.services.Payments.Record(c.Request.Context(), req)
	if err != nil {
		g.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Payment recorded", record)
}

func (g *Gateway) listPayments(c *gin.Context) {
	records, err := g.services.Payments.ListByOrder(c.Request.Context(), c.Query("orderId"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Payments retrieved successfully", records)
}
