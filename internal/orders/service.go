package orders

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ariefcatur/restaurant-orders/internal/authz"
	kafkax "github.com/ariefcatur/restaurant-orders/internal/kafka"
	"github.com/ariefcatur/restaurant-orders/internal/notify"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// EventSink is the outbound domain event stream. *kafka.Producer satisfies it.
type EventSink interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header) bool
}

// Service runs the order workflows. Notifier is required; Events and Cache may be nil.
type Service struct {
	Repo     *Repo
	Notifier notify.Publisher
	Events   EventSink
	Cache    StatusCache

	// DeliveryTypeID is the delivery type that adds the branch fee.
	DeliveryTypeID       int64
	RestoreStockOnCancel bool
	StrictTransitions    bool
	ServiceName          string

	inflight sync.WaitGroup
}

const sideEffectTimeout = 2 * time.Second

// CreateOrder validates and persists a checkout. Once the transaction has
// committed the order is final: the branch notification, the status cache
// and the domain event are attempted but their failures are only logged.
func (s *Service) CreateOrder(ctx context.Context, req CheckoutRequest) (*Receipt, error) {
	req = sanitizeCheckout(req)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	o, err := s.Repo.CreateOrderTx(ctx, req, s.DeliveryTypeID)
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, func(ctx context.Context) {
		s.notify(ctx, o.BranchID, notify.Event{
			Type:          notify.EventNewOrder,
			ID:            o.ID,
			NombreCliente: o.CustomerName,
			Total:         o.Total,
			Fecha:         o.CreatedAt,
			Estado:        o.StatusName,
		})
		if s.Cache != nil {
			if err := s.Cache.Set(ctx, o.ID, o.Status); err != nil {
				log.Printf("orders: cache status of %d: %v", o.ID, err)
			}
		}
		s.emit(ctx, TopicOrderCreated, EventOrderCreated, o.ID, orderCreatedPayload(o))
	})

	return &Receipt{ID: o.ID, Total: o.Total, CreatedAt: o.CreatedAt, Status: o.StatusName}, nil
}

func (s *Service) validate(req CheckoutRequest) error {
	var missing []string
	if req.CustomerName == "" {
		missing = append(missing, "nombreCliente")
	}
	if req.CustomerPhone == "" {
		missing = append(missing, "telefonoCliente")
	}
	if req.BranchID <= 0 {
		missing = append(missing, "sucursalId")
	}
	if req.PaymentMethodID <= 0 {
		missing = append(missing, "metodoPagoId")
	}
	if req.DeliveryTypeID <= 0 {
		missing = append(missing, "tipoEntregaId")
	}
	if req.DeliveryTypeID == s.DeliveryTypeID && req.CustomerAddress == "" {
		missing = append(missing, "direccionCliente")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidRequest)
	}
	for i, it := range req.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			return fmt.Errorf("%w: item %d needs a product and a positive quantity", ErrInvalidItem, i)
		}
	}
	return nil
}

// ChangeStatus moves an order to another status on behalf of caller.
func (s *Service) ChangeStatus(ctx context.Context, caller authz.Context, orderID int64, to StatusID) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidStatus, to)
	}
	policy := transitionPolicy{Strict: s.StrictTransitions, RestoreOnCancel: s.RestoreStockOnCancel}
	ch, err := s.Repo.ChangeStatusTx(ctx, orderID, to, policy, func(branchID, businessID int64) error {
		if !authz.CanActOnBranch(caller, branchID, businessID) {
			return authz.ErrForbidden
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.afterCommit(ctx, func(ctx context.Context) {
		if s.Cache != nil {
			if err := s.Cache.Invalidate(ctx, orderID); err != nil {
				log.Printf("orders: invalidate status of %d: %v", orderID, err)
			}
		}
		s.notify(ctx, ch.BranchID, notify.Event{
			Type:   notify.EventStatusChanged,
			ID:     orderID,
			Fecha:  time.Now().UTC(),
			Estado: ch.To.String(),
		})
		s.emit(ctx, TopicOrderStatusChanged, EventOrderStatusChanged, orderID, OrderStatusChangedPayload{
			OrderID:       orderID,
			BranchID:      ch.BranchID,
			From:          ch.From,
			To:            ch.To,
			StockRestored: ch.StockRestored,
		})
	})
	return nil
}

// GetOrder returns the order with its lines when caller may act on its branch.
func (s *Service) GetOrder(ctx context.Context, caller authz.Context, orderID int64) (*Order, error) {
	o, businessID, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !authz.CanActOnBranch(caller, o.BranchID, businessID) {
		return nil, authz.ErrForbidden
	}
	return o, nil
}

// StatusOf is the public tracking lookup. Cache errors fall through to Postgres.
func (s *Service) StatusOf(ctx context.Context, orderID int64) (StatusID, error) {
	if s.Cache != nil {
		st, ok, err := s.Cache.Get(ctx, orderID)
		if err != nil {
			log.Printf("orders: read cached status of %d: %v", orderID, err)
		}
		if ok {
			return st, nil
		}
	}
	st, err := s.Repo.GetOrderStatus(ctx, orderID)
	if err != nil {
		return 0, err
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, orderID, st); err != nil {
			log.Printf("orders: cache status of %d: %v", orderID, err)
		}
	}
	return st, nil
}

func (s *Service) ListBranchOrders(ctx context.Context, caller authz.Context, branchID int64, f ListFilter) ([]Order, error) {
	businessID, err := s.Repo.branchBusiness(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if !authz.CanActOnBranch(caller, branchID, businessID) {
		return nil, authz.ErrForbidden
	}
	return s.Repo.ListByBranch(ctx, branchID, f.normalized())
}

// afterCommit runs the post-commit side effects in the background, detached
// from the request and bounded by their own deadline. A panic in a side
// effect is logged and swallowed.
func (s *Service) afterCommit(ctx context.Context, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("orders: post-commit side effect panicked: %v", r)
			}
		}()
		ctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// Wait blocks until every post-commit side effect already started has finished.
func (s *Service) Wait() { s.inflight.Wait() }

func (s *Service) notify(ctx context.Context, branchID int64, ev notify.Event) {
	if err := s.Notifier.Publish(ctx, notify.BranchChannel(branchID), ev); err != nil {
		log.Printf("orders: notify branch %d of order %d: %v", branchID, ev.ID, err)
	}
}

func (s *Service) emit(ctx context.Context, topic, eventType string, orderID int64, payload any) {
	if s.Events == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       traceID(ctx),
		CorrelationID: strconv.FormatInt(orderID, 10),
		Payload:       kafkax.MustMarshal(payload),
	}
	s.Events.Publish(topic, PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func orderCreatedPayload(o *Order) OrderCreatedPayload {
	items := make([]ItemPrice, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, ItemPrice{ProductID: l.ProductID, Qty: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return OrderCreatedPayload{
		OrderID:        o.ID,
		BranchID:       o.BranchID,
		DeliveryTypeID: o.DeliveryTypeID,
		Items:          items,
		Total:          o.Total,
	}
}

type traceKey struct{}

// WithTraceID tags ctx so emitted events carry the request id.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

func traceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}
