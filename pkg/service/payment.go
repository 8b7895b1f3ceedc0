package service

import (
	"context"
	"strings"

	"github.com/example/fooddash/pkg/apperr"
	"github.com/example/fooddash/pkg/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService records payments reported by clients or gateways. Entries
// are loosely tied to orders through OrderID.
type PaymentService struct {
	payments PaymentStore
	logger   *zap.Logger
}

func NewPaymentService(payments PaymentStore, logger *zap.Logger) *PaymentService {
	return &PaymentService{payments: payments, logger: logger.Named("payment")}
}

type RecordPaymentInput struct {
	Food        string               `json:"food"`
	Quantity    int                  `json:"quantity"`
	TotalPrice  float64              `json:"totalprice"`
	PaymentMode string               `json:"paymentmode"`
	Status      string               `json:"status"`
	Customer    *models.CustomerInfo `json:"customerInfo"`
	OrderID     string               `json:"orderId"`
}

func (s *PaymentService) Record(ctx context.Context, in RecordPaymentInput) (*models.PaymentRecord, error) {
	if strings.TrimSpace(in.Food) == "" {
		return nil, apperr.Validation("Food is required")
	}
	if in.Quantity < 1 {
		return nil, apperr.Validation("Quantity must be at least 1")
	}
	if in.TotalPrice < 0 {
		return nil, apperr.Validation("Total price cannot be negative")
	}
	if err := models.ValidPaymentMode(in.PaymentMode); err != nil {
		return nil, apperr.Validation("Invalid payment mode")
	}

	status := models.PaymentStatusPending
	if in.Status != "" {
		parsed, err := models.ParsePaymentStatus(in.Status)
		if err != nil {
			return nil, apperr.Validation("Invalid payment status")
		}
		status = parsed
	}

	orderID := strings.TrimSpace(in.OrderID)
	if orderID == "" {
		orderID = uuid.NewString()
	}

	record := &models.PaymentRecord{
		Food:        strings.TrimSpace(in.Food),
		Quantity:    in.Quantity,
		TotalPrice:  in.TotalPrice,
		PaymentMode: in.PaymentMode,
		Status:      status,
		Customer:    in.Customer,
		OrderID:     orderID,
	}
	if err := s.payments.Create(ctx, record); err != nil {
		return nil, err
	}
	s.logger.Info("Payment recorded",
		zap.String("order_id", orderID),
		zap.String("mode", record.PaymentMode),
		zap.String("status", string(status)))
	return record, nil
}

func (s *PaymentService) ListByOrder(ctx context.Context, orderID string) ([]*models.PaymentRecord, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, apperr.Validation("orderId is required")
	}
	return s.payments.ListByOrderID(ctx, orderID)
}
