package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cwrk-planet/study-room/internal/domain"
	"github.com/cwrk-planet/study-room/pkg/errs"
	"github.com/cwrk-planet/study-room/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type RoomGetter interface {
	Get(ctx context.Context, id string) (*domain.Room, error)
}

// IdentifyFunc returns the guest behind a request.
type IdentifyFunc func(r *http.Request) (domain.Guest, bool)

type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	rooms    RoomGetter
	identify IdentifyFunc

	pingEvery time.Duration
	now       func() time.Time
}

func NewServer(hub *Hub, rooms RoomGetter, identify IdentifyFunc) *Server {
	return &Server{
		hub:      hub,
		rooms:    rooms,
		identify: identify,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		pingEvery: 15 * time.Second,
		now:       time.Now,
	}
}

// SetPingInterval changes the keepalive period; the read deadline is twice it.
func (s *Server) SetPingInterval(d time.Duration) {
	if d > 0 {
		s.pingEvery = d
	}
}

// HandleWS serves GET /ws/rooms/{id}.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	log := httputil.L(r.Context())

	guest, ok := s.identify(r)
	if !ok {
		err := fmt.Errorf("guest session: %w", errs.ErrUnauthorized)
		httputil.Error(w, errs.ToHTTP(err), err.Error(), nil)
		return
	}

	roomID := chi.URLParam(r, "id")
	if v, err := url.PathUnescape(roomID); err == nil {
		roomID = v
	}
	if _, err := s.rooms.Get(r.Context(), roomID); err != nil {
		status := errs.ToHTTP(err)
		if status == http.StatusInternalServerError {
			log.Error("ws room lookup failed", "room", roomID, "err", err)
		}
		httputil.Error(w, status, http.StatusText(status), nil)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the response
		log.Warn("ws upgrade failed", "err", err)
		return
	}

	// another tab of the same guest is already in the room
	returning := s.hub.Online(roomID, guest.ID)

	c := newWsConn(conn, domain.Peer{
		ID:          guest.ID,
		DisplayName: guest.Name,
		RoomID:      roomID,
		JoinedAt:    s.now().UTC(),
	})
	s.hub.Add(c)
	log.Info("peer joined", "room", roomID, "peer", guest.ID)

	if err := c.Send(Message{Type: TypeState, Payload: StatePayload{
		RoomID: roomID,
		Peers:  s.hub.Peers(roomID),
	}}); err != nil {
		log.Warn("ws send initial state failed", "room", roomID, "peer", guest.ID, "err", err)
	}
	if !returning {
		s.hub.Broadcast(roomID, Message{Type: TypePeerJoined, Payload: PeerEventPayload{
			RoomID: roomID,
			Peer:   c.peer,
			Peers:  s.hub.Peers(roomID),
		}})
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.pingLoop(r.Context(), c)
	}()
	s.readLoop(c)

	s.hub.Remove(c)
	_ = c.Close()
	wg.Wait()

	if s.hub.Online(roomID, guest.ID) {
		log.Info("peer closed a tab", "room", roomID, "peer", guest.ID)
		return
	}
	s.hub.Broadcast(roomID, Message{Type: TypePeerLeft, Payload: PeerEventPayload{
		RoomID: roomID,
		Peer:   c.peer,
		Peers:  s.hub.Peers(roomID),
	}})
	log.Info("peer left", "room", roomID, "peer", guest.ID)
}

func (s *Server) readLoop(c *wsConn) {
	c.conn.SetReadLimit(16 << 10)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) &&
				!errors.Is(err, net.ErrClosed) {
				slog.Debug("ws read failed", "room", c.peer.RoomID, "peer", c.peer.ID, "err", err)
			}
			return
		}

		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case TypeChat:
			var in ChatPayload
			if err := json.Unmarshal(msg.Payload, &in); err != nil {
				continue
			}
			text := strings.TrimSpace(in.Message)
			if text == "" || len(text) > MaxChatLen {
				continue
			}
			s.hub.Broadcast(c.peer.RoomID, Message{Type: TypeChat, Payload: ChatPayload{
				RoomID:      c.peer.RoomID,
				PeerID:      c.peer.ID,
				DisplayName: c.peer.DisplayName,
				Message:     text,
				MsgID:       uuid.NewString(),
				TSUnix:      s.now().Unix(),
			}})
		default:
			// ignore
		}
	}
}

func (s *Server) pingLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.ping(); err != nil {
				_ = c.Close()
				return
			}
		case <-ctx.Done():
			_ = c.Close()
			return
		case <-c.closed:
			return
		}
	}
}

type wsConn struct {
	conn *websocket.Conn
	peer domain.Peer

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

func newWsConn(conn *websocket.Conn, peer domain.Peer) *wsConn {
	return &wsConn{
		conn:   conn,
		peer:   peer,
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(msg Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteJSON(msg)
}

func (c *wsConn) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

func (c *wsConn) Peer() domain.Peer { return c.peer }
