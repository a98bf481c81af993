package chat

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin policy is enforced by the CORS layer of the HTTP API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSPeer is a websocket connection in the hub.
type WSPeer struct {
	id   string
	conn *websocket.Conn

	writeMu sync.Mutex
}

func NewWSPeer(conn *websocket.Conn) *WSPeer {
	return &WSPeer{id: uuid.NewString(), conn: conn}
}

func (p *WSPeer) ID() string {
	return p.id
}

// Send writes one text frame. Concurrent calls are serialized.
func (p *WSPeer) Send(ctx context.Context, msg []byte) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := p.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return p.conn.WriteMessage(websocket.TextMessage, msg)
}

func (p *WSPeer) ping() error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (p *WSPeer) Close() error {
	return p.conn.Close()
}

// ServeWS upgrades the request and relays every text message the peer sends
// to the whole room until the connection fails.
func ServeWS(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("Websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
			return
		}

		peer := NewWSPeer(conn)
		hub.Connect(peer)

		ctx, cancel := context.WithCancel(context.Background())
		defer func() {
			cancel()
			hub.Disconnect(peer)
			peer.Close()
		}()
		go peer.keepAlive(ctx)

		conn.SetReadLimit(maxMessageSize)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		for {
			kind, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
					slog.Debug("Chat peer closed unexpectedly", "peer", peer.ID(), "error", err)
				}
				return
			}
			if kind != websocket.TextMessage {
				continue
			}
			conn.SetReadDeadline(time.Now().Add(pongWait))
			hub.Broadcast(ctx, msg)
		}
	}
}

func (p *WSPeer) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.ping(); err != nil {
				return
			}
		}
	}
}
