// Package chat is a broadcast room: every message from any peer goes to all
// connected peers, the sender included.
package chat

import (
	"context"
	"log/slog"
	"sync"
)

// Peer is one connected chat participant.
type Peer interface {
	ID() string
	Send(ctx context.Context, msg []byte) error
}

// Publisher fans messages out across service instances.
type Publisher interface {
	Publish(ctx context.Context, msg []byte) error
}

// Observer receives hub events (metrics). All methods must be cheap.
type Observer interface {
	SetChatPeers(n int)
	RecordChatMessage()
	RecordChatDrop()
}

// Hub maintains the set of connected peers.
type Hub struct {
	mu       sync.RWMutex
	peers    map[string]Peer
	relay    Publisher
	observer Observer
}

// NewHub creates a hub. observer may be nil.
func NewHub(observer Observer) *Hub {
	return &Hub{
		peers:    make(map[string]Peer),
		observer: observer,
	}
}

// SetRelay routes Broadcast through p; local delivery then happens when the
// relay hands the message back via Deliver.
func (h *Hub) SetRelay(p Publisher) {
	h.mu.Lock()
	h.relay = p
	h.mu.Unlock()
}

func (h *Hub) Connect(p Peer) {
	h.mu.Lock()
	h.peers[p.ID()] = p
	n := len(h.peers)
	h.mu.Unlock()

	slog.Debug("Chat peer connected", "peer", p.ID(), "peers", n)
	if h.observer != nil {
		h.observer.SetChatPeers(n)
	}
}

// Disconnect removes p. Removing an unknown peer is a no-op.
func (h *Hub) Disconnect(p Peer) {
	h.mu.Lock()
	_, ok := h.peers[p.ID()]
	delete(h.peers, p.ID())
	n := len(h.peers)
	h.mu.Unlock()

	if !ok {
		return
	}
	slog.Debug("Chat peer disconnected", "peer", p.ID(), "peers", n)
	if h.observer != nil {
		h.observer.SetChatPeers(n)
	}
}

// Count returns the number of connected peers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Broadcast sends msg to every peer, through the relay when one is set.
// A relay failure falls back to local delivery.
func (h *Hub) Broadcast(ctx context.Context, msg []byte) {
	if h.observer != nil {
		h.observer.RecordChatMessage()
	}

	h.mu.RLock()
	relay := h.relay
	h.mu.RUnlock()

	if relay != nil {
		err := relay.Publish(ctx, msg)
		if err == nil {
			return
		}
		slog.Warn("Chat relay publish failed, delivering locally", "error", err)
	}
	h.Deliver(ctx, msg)
}

// Deliver sends msg to a snapshot of the local peers. Peers whose Send fails
// are removed; the rest still receive the message. It returns the number of
// successful deliveries.
func (h *Hub) Deliver(ctx context.Context, msg []byte) int {
	h.mu.RLock()
	snapshot := make([]Peer, 0, len(h.peers))
	for _, p := range h.peers {
		snapshot = append(snapshot, p)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, p := range snapshot {
		if err := p.Send(ctx, msg); err != nil {
			slog.Debug("Chat send failed, dropping peer", "peer", p.ID(), "error", err)
			h.Disconnect(p)
			if h.observer != nil {
				h.observer.RecordChatDrop()
			}
			continue
		}
		delivered++
	}
	return delivered
}
