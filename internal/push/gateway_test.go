package push

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSubscriber struct {
	mu       sync.Mutex
	handlers map[string]nats.MsgHandler
}

func (f *fakeSubscriber) Subscribe(subj string, cb nats.MsgHandler, _ ...nats.SubOpt) (*nats.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[subj] = cb
	return nil, nil
}

func (f *fakeSubscriber) handler(subj string) nats.MsgHandler {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handlers[subj]
}

func dial(t *testing.T, g *PushGateway) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(g)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, action, topic string) reply {
	t.Helper()
	require.NoError(t, conn.WriteJSON(request{Action: action, Topic: topic}))
	var r reply
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&r))
	return r
}

func TestValidTopic(t *testing.T) {
	assert.True(t, validTopic("backtest.report.AAPL"))
	assert.True(t, validTopic("backtest.report.*"))
	assert.False(t, validTopic("backtest.report."))
	assert.False(t, validTopic("backtest.report.a.b"))
	assert.False(t, validTopic("backtest.report.>"))
	assert.False(t, validTopic("market.raw.binance.BTCUSDT"))
}

func TestPushGateway_SubscribeAndDeliver(t *testing.T) {
	subs := &fakeSubscriber{handlers: map[string]nats.MsgHandler{}}
	g := NewPushGateway(subs, zap.NewNop())
	conn := dial(t, g)

	r := send(t, conn, "subscribe", "backtest.report.AAPL")
	assert.Equal(t, "subscribed", r.Type)

	cb := subs.handler("backtest.report.AAPL")
	require.NotNil(t, cb)
	payload := []byte(`{"symbol":"AAPL"}`)
	cb(&nats.Msg{Subject: "backtest.report.AAPL", Data: payload})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, got, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(got))

	r = send(t, conn, "unsubscribe", "backtest.report.AAPL")
	assert.Equal(t, "unsubscribed", r.Type)

	g.mu.RLock()
	assert.Empty(t, g.subscriptions)
	assert.Empty(t, g.natsSubs)
	g.mu.RUnlock()
}

func TestPushGateway_Rejects(t *testing.T) {
	subs := &fakeSubscriber{handlers: map[string]nats.MsgHandler{}}
	g := NewPushGateway(subs, zap.NewNop())
	conn := dial(t, g)

	r := send(t, conn, "subscribe", "market.raw.*.*")
	assert.Equal(t, "error", r.Type)
	assert.Nil(t, subs.handler("market.raw.*.*"))

	r = send(t, conn, "publish", "backtest.report.AAPL")
	assert.Equal(t, "error", r.Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	var raw json.RawMessage
	require.NoError(t, conn.ReadJSON(&raw))
	assert.Contains(t, string(raw), "invalid request")
}
