package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/restaurant-orders/internal/authz"
	"github.com/ariefcatur/restaurant-orders/internal/catalog"
	"github.com/ariefcatur/restaurant-orders/internal/notify"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type branchMap map[int64]*catalog.Branch

func (m branchMap) GetBranch(_ context.Context, id int64) (*catalog.Branch, error) {
	if b, ok := m[id]; ok {
		return b, nil
	}
	return nil, catalog.ErrNotFound
}

func newStreamServer(t *testing.T) (*httptest.Server, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := NewRouter(authz.NewTokens(secret))
	(&StreamHandler{
		Redis:    rdb,
		Branches: branchMap{5: {ID: 5, BusinessID: 1}, 6: {ID: 6, BusinessID: 1}},
	}).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, rdb
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestStreamDeliversBranchEvents(t *testing.T) {
	srv, rdb := newStreamServer(t)
	tok := token(t, staff5)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/branches/5/orders?access_token="+tok), nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	pub := &notify.RedisPublisher{Client: rdb}
	ev := notify.Event{Type: notify.EventNewOrder, ID: 99, NombreCliente: "Ana", Total: decimal.RequireFromString("28.50"), Estado: "Pendiente"}
	require.NoError(t, pub.Publish(context.Background(), notify.BranchChannel(5), ev))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got notify.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, int64(99), got.ID)
	assert.Equal(t, "Ana", got.NombreCliente)
	assert.True(t, got.Total.Equal(ev.Total))
}

func TestStreamRejectsOtherBranch(t *testing.T) {
	srv, _ := newStreamServer(t)
	tok := token(t, staff5)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/branches/6/orders?access_token="+tok), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestStreamRequiresToken(t *testing.T) {
	srv, _ := newStreamServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/branches/5/orders"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStreamUnknownBranch(t *testing.T) {
	srv, _ := newStreamServer(t)
	admin := token(t, authz.Context{Role: authz.RoleSuperAdmin})

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/branches/77/orders?access_token="+admin), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
