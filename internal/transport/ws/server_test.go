package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cwrk-planet/study-room/internal/domain"
	"github.com/cwrk-planet/study-room/internal/memstore"
	"github.com/cwrk-planet/study-room/internal/service"
	"github.com/cwrk-planet/study-room/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func headerGuest(r *http.Request) (domain.Guest, bool) {
	id := r.Header.Get("X-Guest")
	if id == "" {
		return domain.Guest{}, false
	}
	return domain.Guest{ID: id, Name: "Guest-" + id}, true
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	rooms := service.NewRoomService(memstore.NewRoomRepository())
	_, err := rooms.Open(context.Background(), "42")
	require.NoError(t, err)

	srv := ws.NewServer(ws.NewHub(), rooms, headerGuest)
	r := chi.NewRouter()
	r.Get("/ws/rooms/{id}", srv.HandleWS)
	return httptest.NewServer(r)
}

func dial(t *testing.T, base, room, guest string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	u := "ws" + strings.TrimPrefix(base, "http") + "/ws/rooms/" + room
	h := http.Header{}
	if guest != "" {
		h.Set("X-Guest", guest)
	}
	return websocket.DefaultDialer.Dial(u, h)
}

type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// next reads until a message of the given type arrives.
func next(t *testing.T, c *websocket.Conn, typ string) json.RawMessage {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var m inbound
		require.NoError(t, c.ReadJSON(&m))
		if m.Type == typ {
			return m.Payload
		}
	}
}

func peerIDs(t *testing.T, raw json.RawMessage) []string {
	t.Helper()
	var p struct {
		Peers []domain.Peer `json:"peers"`
	}
	require.NoError(t, json.Unmarshal(raw, &p))
	ids := make([]string, 0, len(p.Peers))
	for _, peer := range p.Peers {
		ids = append(ids, peer.ID)
	}
	return ids
}

func TestHandleWS_PresenceAndChat(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ts := newTestServer(t)
	defer ts.Close()

	alice, _, err := dial(t, ts.URL, "42", "alice")
	require.NoError(t, err)
	defer alice.Close()
	assert.Equal(t, []string{"alice"}, peerIDs(t, next(t, alice, ws.TypeState)))
	next(t, alice, ws.TypePeerJoined)

	bob, _, err := dial(t, ts.URL, "42", "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, peerIDs(t, next(t, bob, ws.TypeState)))
	assert.Equal(t, []string{"alice", "bob"}, peerIDs(t, next(t, alice, ws.TypePeerJoined)))

	require.NoError(t, alice.WriteJSON(ws.Message{Type: ws.TypeChat, Payload: map[string]string{"message": "  hello  "}}))
	for _, c := range []*websocket.Conn{alice, bob} {
		var chat ws.ChatPayload
		require.NoError(t, json.Unmarshal(next(t, c, ws.TypeChat), &chat))
		assert.Equal(t, "hello", chat.Message)
		assert.Equal(t, "alice", chat.PeerID)
		assert.Equal(t, "Guest-alice", chat.DisplayName)
		assert.NotEmpty(t, chat.MsgID)
	}

	require.NoError(t, bob.Close())
	assert.Equal(t, []string{"alice"}, peerIDs(t, next(t, alice, ws.TypePeerLeft)))

	require.NoError(t, alice.Close())
	time.Sleep(50 * time.Millisecond)
}

// receive returns the next message whatever its type.
func receive(t *testing.T, c *websocket.Conn) inbound {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(3*time.Second)))
	var m inbound
	require.NoError(t, c.ReadJSON(&m))
	return m
}

func TestHandleWS_SecondTabIsNotAnnounced(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	bob, _, err := dial(t, ts.URL, "42", "bob")
	require.NoError(t, err)
	defer bob.Close()
	next(t, bob, ws.TypePeerJoined)

	tab1, _, err := dial(t, ts.URL, "42", "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "alice"}, peerIDs(t, next(t, bob, ws.TypePeerJoined)))

	tab2, _, err := dial(t, ts.URL, "42", "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "alice"}, peerIDs(t, next(t, tab2, ws.TypeState)))

	require.NoError(t, tab2.Close())
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, tab1.Close())

	m := receive(t, bob)
	assert.Equal(t, ws.TypePeerLeft, m.Type)
	assert.Equal(t, []string{"bob"}, peerIDs(t, m.Payload))
}

func TestHandleWS_IgnoresEmptyAndOversizedChat(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	c, _, err := dial(t, ts.URL, "42", "alice")
	require.NoError(t, err)
	defer c.Close()
	next(t, c, ws.TypePeerJoined)

	require.NoError(t, c.WriteJSON(ws.Message{Type: ws.TypeChat, Payload: map[string]string{"message": "   "}}))
	require.NoError(t, c.WriteJSON(ws.Message{Type: ws.TypeChat, Payload: map[string]string{"message": strings.Repeat("x", ws.MaxChatLen+1)}}))
	require.NoError(t, c.WriteJSON(ws.Message{Type: ws.TypeChat, Payload: map[string]string{"message": "ok"}}))

	var chat ws.ChatPayload
	require.NoError(t, json.Unmarshal(next(t, c, ws.TypeChat), &chat))
	assert.Equal(t, "ok", chat.Message)
}

func TestHandleWS_Rejections(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	_, resp, err := dial(t, ts.URL, "42", "")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = dial(t, ts.URL, "missing", "alice")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, resp, err = dial(t, ts.URL, "a%2Fb", "alice")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
