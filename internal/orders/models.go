package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutItem is one requested line of a checkout.
type CheckoutItem struct {
	ProductID int64  `json:"productoId"`
	Quantity  int    `json:"cantidad"`
	Note      string `json:"aclaraciones,omitempty"`
}

type CheckoutRequest struct {
	CustomerName    string         `json:"nombreCliente"`
	CustomerAddress string         `json:"direccionCliente,omitempty"`
	CustomerPhone   string         `json:"telefonoCliente"`
	PaymentMethodID int64          `json:"metodoPagoId"`
	DeliveryTypeID  int64          `json:"tipoEntregaId"`
	BranchID        int64          `json:"sucursalId"`
	Notes           string         `json:"observaciones,omitempty"`
	Items           []CheckoutItem `json:"items"`
}

// Receipt is what a successful checkout returns to the customer.
type Receipt struct {
	ID        int64           `json:"id"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"fechaCreacion"`
	Status    string          `json:"estadoPedido"`
}

type Order struct {
	ID              int64           `json:"id"`
	BranchID        int64           `json:"sucursalId"`
	CustomerName    string          `json:"nombreCliente"`
	CustomerPhone   string          `json:"telefonoCliente"`
	CustomerAddress string          `json:"direccionCliente"`
	PaymentMethodID int64           `json:"metodoPagoId"`
	DeliveryTypeID  int64           `json:"tipoEntregaId"`
	Status          StatusID        `json:"estadoPedidoId"`
	StatusName      string          `json:"estadoPedido"`
	Total           decimal.Decimal `json:"total"`
	Notes           string          `json:"observaciones"`
	CreatedAt       time.Time       `json:"fechaCreacion"`
	Lines           []Line          `json:"items,omitempty"`
}

// Line is an order line. UnitPrice is the product price when the order was placed.
type Line struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productoId"`
	ProductName string          `json:"nombreProducto"`
	Quantity    int             `json:"cantidad"`
	UnitPrice   decimal.Decimal `json:"precioUnitario"`
	Note        string          `json:"aclaraciones"`
}

type ListFilter struct {
	Status *StatusID
	Limit  int
	Offset int
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

func (f ListFilter) normalized() ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
