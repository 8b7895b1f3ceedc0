package service

import (
	"context"
	"testing"

	"github.com/example/fooddash/pkg/apperr"
	"github.com/example/fooddash/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecordPayment(t *testing.T) {
	store := &memPayments{}
	svc := NewPaymentService(store, zap.NewNop())
	ctx := context.Background()

	rec, err := svc.Record(ctx, RecordPaymentInput{Food: "Momo, Lassi", Quantity: 3, TotalPrice: 280, PaymentMode: "esewa"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, rec.Status)
	_, parseErr := uuid.Parse(rec.OrderID)
	assert.NoError(t, parseErr)

	rec2, err := svc.Record(ctx, RecordPaymentInput{Food: "Momo", Quantity: 1, TotalPrice: 100, PaymentMode: "cod", Status: "paid", OrderID: "ext-42"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, rec2.Status)

	list, err := svc.ListByOrder(ctx, "ext-42")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, rec2.ID, list[0].ID)

	_, err = svc.ListByOrder(ctx, "")
	requireKind(t, err, apperr.KindValidation, "")
}

func TestRecordPaymentValidation(t *testing.T) {
	svc := NewPaymentService(&memPayments{}, zap.NewNop())
	cases := map[string]RecordPaymentInput{
		"no food":            {Quantity: 1, PaymentMode: "cod"},
		"zero quantity":      {Food: "Momo", PaymentMode: "cod"},
		"negative price":     {Food: "Momo", Quantity: 1, TotalPrice: -1, PaymentMode: "cod"},
		"cash is not a mode": {Food: "Momo", Quantity: 1, PaymentMode: "cash"},
		"bad status":         {Food: "Momo", Quantity: 1, PaymentMode: "card", Status: "refunded"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), in)
			requireKind(t, err, apperr.KindValidation, apperr.CodeInvalidArgument)
		})
	}
}
