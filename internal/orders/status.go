package orders

import (
	"fmt"
	"strconv"
)

// StatusID mirrors the seeded order_statuses table.
type StatusID int16

const (
	StatusPending       StatusID = 1
	StatusInPreparation StatusID = 2
	StatusReady         StatusID = 3
	StatusDelivered     StatusID = 4
	StatusCancelled     StatusID = 5
)

var statusNames = map[StatusID]string{
	StatusPending:       "Pendiente",
	StatusInPreparation: "En preparación",
	StatusReady:         "Listo",
	StatusDelivered:     "Entregado",
	StatusCancelled:     "Cancelado",
}

func (s StatusID) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

func (s StatusID) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "StatusID(" + strconv.Itoa(int(s)) + ")"
}

func (s StatusID) Terminal() bool { return s == StatusDelivered || s == StatusCancelled }

func ParseStatus(id int64) (StatusID, error) {
	s := StatusID(id)
	if id < 0 || id > 1<<15-1 || !s.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidStatus, id)
	}
	return s, nil
}

// validNext is the forward-only progression the dashboard follows.
// It is only enforced when strict transitions are enabled.
var validNext = map[StatusID]map[StatusID]bool{
	StatusPending:       {StatusInPreparation: true, StatusCancelled: true},
	StatusInPreparation: {StatusReady: true, StatusCancelled: true},
	StatusReady:         {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered:     {},
	StatusCancelled:     {},
}

func CanTransition(from, to StatusID) bool {
	return validNext[from][to]
}
