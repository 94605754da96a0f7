// Package notify relays order events to the dashboards subscribed to a branch.
package notify

import (
	"context"
	"time"

	"github.com/ariefcatur/restaurant-orders/internal/redisx"
	"github.com/shopspring/decimal"
)

const (
	EventNewOrder      = "pedido.nuevo"
	EventStatusChanged = "pedido.estado"
)

// Event is the message a branch dashboard receives.
type Event struct {
	Type          string          `json:"tipo"`
	ID            int64           `json:"id"`
	NombreCliente string          `json:"nombreCliente,omitempty"`
	Total         decimal.Decimal `json:"total"`
	Fecha         time.Time       `json:"fecha"`
	Estado        string          `json:"estado"`
}

// Publisher delivers an event to every current subscriber of channel.
// Delivery is at most once; subscribers that connect later never see it.
type Publisher interface {
	Publish(ctx context.Context, channel string, ev Event) error
}

func BranchChannel(branchID int64) string { return redisx.BranchOrdersChannel(branchID) }

// Discard drops every event. Used when no relay is configured.
type Discard struct{}

func (Discard) Publish(context.Context, string, Event) error { return nil }
