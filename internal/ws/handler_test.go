package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/blockroyale-backend/internal/hub"
	"github.com/DoyleJ11/blockroyale-backend/internal/results"
	"github.com/DoyleJ11/blockroyale-backend/internal/room"
	"github.com/DoyleJ11/blockroyale-backend/internal/types"
)

type testServer struct {
	url   string
	hub   *hub.Hub
	store *results.MemoryStore
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	log := zap.NewNop()
	gw := NewGateway(log)
	store := results.NewMemoryStore(10)

	ctx, cancel := context.WithCancel(context.Background())
	h := hub.NewHub(ctx, room.Options{Gateway: gw, Logger: log, Recorder: store})

	srv := httptest.NewServer(Handler(h, gw, log, Options{PingInterval: time.Second}))
	t.Cleanup(func() {
		srv.Close()
		h.Shutdown()
		cancel()
	})
	return testServer{url: "ws" + strings.TrimPrefix(srv.URL, "http"), hub: h, store: store}
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg types.ClientMessage) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, msg))
}

func recv(t *testing.T, conn *websocket.Conn) types.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var msg types.ServerMessage
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	return msg
}

func TestHandler_FullGame(t *testing.T) {
	ts := newTestServer(t)
	alice := dial(t, ts.url)
	bob := dial(t, ts.url)

	send(t, alice, types.ClientMessage{Type: types.TypeCreateRoom, Name: "alice"})
	created := recv(t, alice)
	require.Equal(t, types.TypeRoomCreated, created.Type)
	require.True(t, *created.IsHost)
	assert.Equal(t, []string{"alice"}, recv(t, alice).Players)
	code := created.RoomID

	// lower-case codes resolve too
	send(t, bob, types.ClientMessage{Type: types.TypeJoinRoom, RoomID: strings.ToLower(code), Name: "bob"})
	joined := recv(t, bob)
	require.Equal(t, types.TypeRoomJoined, joined.Type)
	assert.Equal(t, code, joined.RoomID)
	assert.False(t, *joined.IsHost)
	assert.Equal(t, []string{"alice", "bob"}, recv(t, bob).Players)
	assert.Equal(t, []string{"alice", "bob"}, recv(t, alice).Players)

	send(t, alice, types.ClientMessage{Type: types.TypeStartGame, RoomID: code})
	assert.Equal(t, types.TypeGameStart, recv(t, alice).Type)
	assert.Equal(t, types.TypeGameStart, recv(t, bob).Type)

	send(t, bob, types.ClientMessage{Type: types.TypeSendGarbage, RoomID: code, Lines: 4})
	assert.Equal(t, types.ReceiveGarbage(4), recv(t, alice))

	send(t, bob, types.ClientMessage{Type: types.TypeUpdateBoard, RoomID: code, Grid: []byte(`[[0,1],[1,0]]`)})
	board := recv(t, alice)
	assert.Equal(t, types.TypeSpectatorUpdate, board.Type)
	assert.Equal(t, "bob", board.Name)
	assert.JSONEq(t, `[[0,1],[1,0]]`, string(board.Grid))
	assert.Equal(t, types.TypeSpectatorUpdate, recv(t, bob).Type)

	send(t, alice, types.ClientMessage{Type: types.TypePlayerDied, RoomID: code})
	assert.Equal(t, types.SpectateMode(), recv(t, alice))
	assert.Equal(t, types.GameOver([]string{"bob", "alice"}), recv(t, alice))
	assert.Equal(t, types.GameOver([]string{"bob", "alice"}), recv(t, bob))

	require.Eventually(t, func() bool {
		recent, _ := ts.store.Recent(context.Background(), 1)
		return len(recent) == 1 && recent[0].Code == code
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_MalformedFramesAreIgnored(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts.url)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("not json")))
	send(t, conn, types.ClientMessage{Type: "teleport"})
	send(t, conn, types.ClientMessage{Type: types.TypeStartGame})
	send(t, conn, types.ClientMessage{Type: types.TypeSendGarbage, RoomID: "12AB", Lines: -1})
	send(t, conn, types.ClientMessage{Type: types.TypeUpdateBoard, RoomID: "12AB"})

	// frames are handled in order, so the next thing received answers the create
	send(t, conn, types.ClientMessage{Type: types.TypeCreateRoom, Name: "x"})
	assert.Equal(t, types.TypeRoomCreated, recv(t, conn).Type)
}

func TestHandler_UnknownJoinCodesAreNotFound(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts.url)

	for _, code := range []string{"99ZZ", "ab", "", "1-AB", "12ABC"} {
		send(t, conn, types.ClientMessage{Type: types.TypeJoinRoom, RoomID: code, Name: "x"})
		assert.Equal(t, types.Error("room not found"), recv(t, conn), "code %q", code)
	}
}

func TestHandler_JoinTrimsAndUpcasesCode(t *testing.T) {
	ts := newTestServer(t)
	host := dial(t, ts.url)
	guest := dial(t, ts.url)

	send(t, host, types.ClientMessage{Type: types.TypeCreateRoom, Name: "host"})
	code := recv(t, host).RoomID
	recv(t, host)

	send(t, guest, types.ClientMessage{Type: types.TypeJoinRoom, RoomID: " " + strings.ToLower(code) + " ", Name: "guest"})
	joined := recv(t, guest)
	assert.Equal(t, types.TypeRoomJoined, joined.Type)
	assert.Equal(t, code, joined.RoomID)
}

func TestHandler_DisconnectRemovesEmptyRoom(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts.url)

	send(t, conn, types.ClientMessage{Type: types.TypeCreateRoom, Name: "solo"})
	code := recv(t, conn).RoomID
	recv(t, conn)
	require.NotNil(t, ts.hub.Get(context.Background(), code))

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))

	require.Eventually(t, func() bool {
		return ts.hub.Get(context.Background(), code) == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_CreatingAnotherRoomLeavesThePreviousOne(t *testing.T) {
	ts := newTestServer(t)
	host := dial(t, ts.url)
	guest := dial(t, ts.url)

	send(t, host, types.ClientMessage{Type: types.TypeCreateRoom, Name: "host"})
	code := recv(t, host).RoomID
	recv(t, host)

	send(t, guest, types.ClientMessage{Type: types.TypeJoinRoom, RoomID: code, Name: "guest"})
	recv(t, guest)
	recv(t, guest)
	recv(t, host)

	send(t, guest, types.ClientMessage{Type: types.TypeCreateRoom, Name: "guest"})
	assert.Equal(t, types.TypeRoomCreated, recv(t, guest).Type)
	assert.Equal(t, []string{"host"}, recv(t, host).Players)
}
