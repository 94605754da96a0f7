package catalog

import "github.com/shopspring/decimal"

type Product struct {
	ID          int64           `json:"id"`
	BranchID    int64           `json:"sucursalId"`
	CategoryID  *int64          `json:"categoriaId,omitempty"`
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion"`
	Price       decimal.Decimal `json:"precio"`
	Stock       int             `json:"stock"`
	Active      bool            `json:"activo"`
}

type Branch struct {
	ID          int64           `json:"id"`
	BusinessID  int64           `json:"negocioId"`
	Name        string          `json:"nombre"`
	DeliveryFee decimal.Decimal `json:"costoDelivery"`
	Active      bool            `json:"activo"`
}

type MenuItem struct {
	ID          int64           `json:"id"`
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion"`
	Price       decimal.Decimal `json:"precio"`
	Stock       int             `json:"stock"`
}

type MenuSection struct {
	Category string     `json:"categoria"`
	Items    []MenuItem `json:"productos"`
}
