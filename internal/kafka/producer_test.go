package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu      sync.Mutex
	msgs    []kafka.Message
	fail    error
	closed  bool
	blockCh chan struct{}
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.blockCh != nil {
		<-f.blockCh
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msgs...)
	return f.fail
}

func (f *fakeWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestProducerFlushesOnClose(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 8)
	p.Start()

	assert.True(t, p.Publish("order.created", []byte("1"), []byte(`{"a":1}`), kafka.Header{Key: "x-event-type", Value: []byte("OrderCreated")}))
	assert.True(t, p.Publish("order.status_changed", []byte("1"), []byte(`{"a":2}`)))
	p.Close()
	p.WaitClosed()

	w.mu.Lock()
	defer w.mu.Unlock()
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "order.created", w.msgs[0].Topic)
	assert.Equal(t, "order.status_changed", w.msgs[1].Topic)
	assert.Equal(t, "x-event-type", w.msgs[0].Headers[0].Key)
	assert.True(t, w.closed)
}

func TestProducerRejectsAfterClose(t *testing.T) {
	p := newProducer(&fakeWriter{}, 1)
	p.Start()
	p.Close()
	p.Close()
	p.WaitClosed()
	assert.False(t, p.Publish("t", nil, []byte("x")))
}

func TestProducerDropsWhenQueueFull(t *testing.T) {
	w := &fakeWriter{blockCh: make(chan struct{})}
	p := newProducer(w, 1)

	// not started: nothing drains the queue
	assert.True(t, p.Publish("t", nil, []byte("1")))
	assert.False(t, p.Publish("t", nil, []byte("2")))

	close(w.blockCh)
	p.Start()
	p.Close()
	p.WaitClosed()
	assert.Len(t, w.msgs, 1)
}

func TestProducerKeepsGoingAfterWriteError(t *testing.T) {
	w := &fakeWriter{fail: errors.New("broker down")}
	p := newProducer(w, 4)
	p.Start()
	p.Publish("t", nil, []byte("1"))
	p.Publish("t", nil, []byte("2"))
	p.Close()
	p.WaitClosed()
	assert.Len(t, w.msgs, 2)
}

func TestUnwrapPayload(t *testing.T) {
	type payload struct {
		OrderID int64 `json:"order_id"`
	}
	got, err := UnwrapPayload[payload](json.RawMessage(`{"order_id":7}`))
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.OrderID)

	_, err = UnwrapPayload[payload](json.RawMessage(`{`))
	assert.ErrorContains(t, err, "decode payload")
}

func TestMustMarshalPanics(t *testing.T) {
	assert.Panics(t, func() { MustMarshal(make(chan int)) })
}
