package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type ItemPrice struct {
	ProductID int64           `json:"product_id"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderCreatedPayload struct {
	OrderID        int64           `json:"order_id"`
	BranchID       int64           `json:"branch_id"`
	DeliveryTypeID int64           `json:"delivery_type_id"`
	Items          []ItemPrice     `json:"items"`
	Total          decimal.Decimal `json:"total"`
}

type OrderStatusChangedPayload struct {
	OrderID       int64    `json:"order_id"`
	BranchID      int64    `json:"branch_id"`
	From          StatusID `json:"from_status_id"`
	To            StatusID `json:"to_status_id"`
	StockRestored bool     `json:"stock_restored,omitempty"`
}
