package fireworks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

// fakeServer upgrades the connection and runs handler with it.
func fakeServer(t *testing.T, handler func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		handler(conn)
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func recvUpdate(t *testing.T, s *Session) Update {
	t.Helper()
	select {
	case update, ok := <-s.Updates():
		require.True(t, ok, "updates channel closed early")
		return update
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
		return Update{}
	}
}

func TestDialSendsAuthQueryParams(t *testing.T) {
	gotQuery := make(chan map[string]string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery <- map[string]string{
			"authorization": r.URL.Query().Get("authorization"),
			"model":         r.URL.Query().Get("model"),
			"language":      r.URL.Query().Get("language"),
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		conn.ReadMessage()
	}))
	defer srv.Close()

	s, err := Dial(context.Background(), Config{
		APIKey:   "fw-key",
		Endpoint: wsURL(srv),
		Model:    "whisper-v3-turbo",
		Language: "en",
	})
	require.NoError(t, err)
	defer s.Close()

	q := <-gotQuery
	assert.Equal(t, "fw-key", q["authorization"])
	assert.Equal(t, "whisper-v3-turbo", q["model"])
	assert.Equal(t, "en", q["language"])
}

func TestSegmentsMergeById(t *testing.T) {
	srv := fakeServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"segments":[{"id":"0","text":"hello"}]}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"segments":[{"id":"0","text":"hello world"},{"id":"1","text":"again"}]}`))
		// hold the connection open until the client closes
		conn.ReadMessage()
	})
	defer srv.Close()

	s, err := Dial(context.Background(), Config{APIKey: "k", Endpoint: wsURL(srv)})
	require.NoError(t, err)
	defer s.Close()

	first := recvUpdate(t, s)
	require.NoError(t, first.Err)
	assert.Equal(t, "hello", first.Text)

	second := recvUpdate(t, s)
	require.NoError(t, second.Err)
	assert.Equal(t, "hello world again", second.Text)
	require.Len(t, second.Segments, 2)
	assert.Equal(t, "0", second.Segments[0].ID)
	assert.Equal(t, "1", second.Segments[1].ID)
}

func TestMalformedMessageIsInBandError(t *testing.T) {
	srv := fakeServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{not json`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"segments":[{"id":"0","text":"recovered"}]}`))
		conn.ReadMessage()
	})
	defer srv.Close()

	s, err := Dial(context.Background(), Config{APIKey: "k", Endpoint: wsURL(srv)})
	require.NoError(t, err)
	defer s.Close()

	first := recvUpdate(t, s)
	require.Error(t, first.Err)

	// The session keeps reading after a malformed message.
	second := recvUpdate(t, s)
	require.NoError(t, second.Err)
	assert.Equal(t, "recovered", second.Text)
}

func TestSendAudioDeliversBinaryFrames(t *testing.T) {
	frames := make(chan []byte, 1)
	srv := fakeServer(t, func(conn *websocket.Conn) {
		messageType, data, err := conn.ReadMessage()
		if err == nil && messageType == websocket.BinaryMessage {
			frames <- data
		}
	})
	defer srv.Close()

	s, err := Dial(context.Background(), Config{APIKey: "k", Endpoint: wsURL(srv)})
	require.NoError(t, err)
	defer s.Close()

	pcm := []byte{0x01, 0x00, 0x02, 0x00}
	require.NoError(t, s.SendAudio(pcm))

	select {
	case got := <-frames:
		assert.Equal(t, pcm, got)
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the audio frame")
	}
}

func TestCloseEndsUpdates(t *testing.T) {
	srv := fakeServer(t, func(conn *websocket.Conn) {
		conn.ReadMessage() // wait for close
	})
	defer srv.Close()

	s, err := Dial(context.Background(), Config{APIKey: "k", Endpoint: wsURL(srv)})
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.NoError(t, s.Close()) // idempotent

	select {
	case _, ok := <-s.Updates():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("updates channel did not close")
	}
}
