package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/DoyleJ11/blockroyale-backend/internal/types"
)

// Gateway fans server messages out to live connections. It implements room.Gateway.
type Gateway struct {
	mu      sync.RWMutex
	clients map[string]*client
	groups  map[string]map[string]struct{}
	log     *zap.Logger
}

type client struct {
	out      chan []byte
	kicked   chan struct{}
	kickOnce sync.Once
}

func NewGateway(log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		clients: make(map[string]*client),
		groups:  make(map[string]map[string]struct{}),
		log:     log,
	}
}

// Register creates the outbox for connID. The returned kicked channel closes
// when the client fell too far behind and should be disconnected.
func (g *Gateway) Register(connID string, buffer int) (out <-chan []byte, kicked <-chan struct{}) {
	c := &client{
		out:    make(chan []byte, buffer),
		kicked: make(chan struct{}),
	}
	g.mu.Lock()
	g.clients[connID] = c
	g.mu.Unlock()
	return c.out, c.kicked
}

// Unregister removes connID from every group and closes its outbox.
func (g *Gateway) Unregister(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.clients[connID]
	if !ok {
		return
	}
	delete(g.clients, connID)
	for name, members := range g.groups {
		delete(members, connID)
		if len(members) == 0 {
			delete(g.groups, name)
		}
	}
	close(c.out)
}

func (g *Gateway) JoinGroup(connID, group string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.clients[connID]; !ok {
		return
	}
	members, ok := g.groups[group]
	if !ok {
		members = make(map[string]struct{})
		g.groups[group] = members
	}
	members[connID] = struct{}{}
}

func (g *Gateway) LeaveGroup(connID, group string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	members, ok := g.groups[group]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(g.groups, group)
	}
}

func (g *Gateway) Send(connID string, msg types.ServerMessage) {
	payload, ok := g.encode(msg)
	if !ok {
		return
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if c, ok := g.clients[connID]; ok {
		g.deliver(connID, c, payload)
	}
}

func (g *Gateway) Broadcast(group string, msg types.ServerMessage) {
	payload, ok := g.encode(msg)
	if !ok {
		return
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	for id := range g.groups[group] {
		if c, ok := g.clients[id]; ok {
			g.deliver(id, c, payload)
		}
	}
}

// GroupSize reports how many connections are in group.
func (g *Gateway) GroupSize(group string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.groups[group])
}

func (g *Gateway) encode(msg types.ServerMessage) ([]byte, bool) {
	payload, err := json.Marshal(msg)
	if err != nil {
		g.log.Error("encode server message", zap.String("type", msg.Type), zap.Error(err))
		return nil, false
	}
	return payload, true
}

// deliver never blocks. A full outbox means the client is slow: drop the message and kick it.
func (g *Gateway) deliver(connID string, c *client, payload []byte) {
	select {
	case c.out <- payload:
	default:
		c.kickOnce.Do(func() {
			g.log.Warn("client outbox full, disconnecting", zap.String("conn", connID))
			close(c.kicked)
		})
	}
}
