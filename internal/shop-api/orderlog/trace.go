package orderlog

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/storefront/internal/shop-api/domain"
)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	TraceID string
	SpanID  string
}

// ExtractTraceInfo returns the ids of the active span in ctx, or empty
// strings when there is none.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds the journal entry of order with the trace info of ctx.
func NewEntry(ctx context.Context, order domain.Order) *Entry {
	ti := ExtractTraceInfo(ctx)
	return &Entry{
		OrderID:        order.ID,
		IdempotencyKey: order.IdempotencyKey,
		RequestID:      order.RequestID,
		Payment:        string(order.Payment),
		Address:        order.Address,
		Email:          order.Email,
		Phone:          order.Phone,
		Total:          order.Total.String(),
		Items:          order.Items,
		TraceID:        ti.TraceID,
		SpanID:         ti.SpanID,
		CreatedAt:      order.CreatedAt.UTC(),
	}
}
