package push

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"range-breakout/internal/infrastructure"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Subscriber is the part of nats.JetStreamContext the gateway needs.
type Subscriber interface {
	Subscribe(subj string, cb nats.MsgHandler, opts ...nats.SubOpt) (*nats.Subscription, error)
}

type Client struct {
	conn *websocket.Conn
	send chan []byte
}

type request struct {
	Action string `json:"action"` // "subscribe", "unsubscribe"
	Topic  string `json:"topic"`
}

type reply struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
	Error string `json:"error,omitempty"`
}

// PushGateway fans backtest reports out to websocket clients. One NATS
// subscription is held per topic while at least one client listens to it.
type PushGateway struct {
	logger        *zap.Logger
	js            Subscriber
	clients       map[*Client]bool
	subscriptions map[string]map[*Client]bool
	natsSubs      map[string]*nats.Subscription
	mu            sync.RWMutex
}

func NewPushGateway(js Subscriber, logger *zap.Logger) *PushGateway {
	return &PushGateway{
		logger:        logger,
		js:            js,
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		natsSubs:      make(map[string]*nats.Subscription),
	}
}

// validTopic accepts backtest.report.<SYMBOL> and the backtest.report.* wildcard.
func validTopic(topic string) bool {
	rest := strings.TrimPrefix(topic, infrastructure.ReportSubjectPrefix)
	if rest == topic || rest == "" {
		return false
	}
	return rest == "*" || !strings.ContainsAny(rest, ".*> ")
}

func (g *PushGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("failed to upgrade websocket", zap.Error(err))
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
	}

	g.mu.Lock()
	g.clients[client] = true
	g.mu.Unlock()
	infrastructure.WSConnections.Inc()

	go g.writePump(client)
	g.readPump(client)
}

func (g *PushGateway) readPump(c *Client) {
	defer func() {
		g.mu.Lock()
		delete(g.clients, c)
		for topic := range g.subscriptions {
			g.removeLocked(topic, c)
		}
		close(c.send)
		g.mu.Unlock()
		infrastructure.WSConnections.Dec()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var req request
		if err := json.Unmarshal(message, &req); err != nil {
			g.reply(c, reply{Type: "error", Error: "invalid request"})
			continue
		}
		if !validTopic(req.Topic) {
			g.reply(c, reply{Type: "error", Topic: req.Topic, Error: "unknown topic"})
			continue
		}

		switch req.Action {
		case "subscribe":
			g.mu.Lock()
			err := g.addLocked(req.Topic, c)
			g.mu.Unlock()
			if err != nil {
				g.logger.Error("failed to subscribe to NATS", zap.String("topic", req.Topic), zap.Error(err))
				g.reply(c, reply{Type: "error", Topic: req.Topic, Error: "subscribe failed"})
				continue
			}
			g.logger.Info("client subscribed to topic", zap.String("topic", req.Topic))
			g.reply(c, reply{Type: "subscribed", Topic: req.Topic})
		case "unsubscribe":
			g.mu.Lock()
			g.removeLocked(req.Topic, c)
			g.mu.Unlock()
			g.reply(c, reply{Type: "unsubscribed", Topic: req.Topic})
		default:
			g.reply(c, reply{Type: "error", Topic: req.Topic, Error: "unknown action"})
		}
	}
}

func (g *PushGateway) reply(c *Client, r reply) {
	data, _ := json.Marshal(r)
	select {
	case c.send <- data:
	default:
	}
}

func (g *PushGateway) addLocked(topic string, c *Client) error {
	if g.subscriptions[topic] == nil {
		if err := g.subscribeToNATS(topic); err != nil {
			return err
		}
		g.subscriptions[topic] = make(map[*Client]bool)
	}
	g.subscriptions[topic][c] = true
	return nil
}

func (g *PushGateway) removeLocked(topic string, c *Client) {
	clients, ok := g.subscriptions[topic]
	if !ok {
		return
	}
	delete(clients, c)
	if len(clients) > 0 {
		return
	}
	if sub := g.natsSubs[topic]; sub != nil {
		if err := sub.Unsubscribe(); err != nil {
			g.logger.Warn("failed to unsubscribe from NATS", zap.String("topic", topic), zap.Error(err))
		}
	}
	delete(g.natsSubs, topic)
	delete(g.subscriptions, topic)
	g.logger.Info("unsubscribed from NATS as no clients left", zap.String("topic", topic))
}

func (g *PushGateway) writePump(c *Client) {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (g *PushGateway) deliver(topic string, data []byte) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for c := range g.subscriptions[topic] {
		select {
		case c.send <- data:
		default:
			// Do not block, just drop if channel is full
		}
	}
}

func (g *PushGateway) subscribeToNATS(topic string) error {
	sub, err := g.js.Subscribe(topic, func(msg *nats.Msg) {
		g.deliver(topic, msg.Data)
		msg.Ack()
	}, nats.DeliverNew(), nats.ManualAck())
	if err != nil {
		return err
	}

	g.natsSubs[topic] = sub
	g.logger.Info("subscribed to NATS topic", zap.String("topic", topic))
	return nil
}
