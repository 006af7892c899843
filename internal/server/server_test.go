package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestConn(t *testing.T, debounce time.Duration) *websocket.Conn {
	t.Helper()
	srv := New(Config{
		Debounce:    debounce,
		CheckOrigin: func(r *http.Request) bool { return true },
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/compile", srv.HandleWS)
	hs := httptest.NewServer(mux)
	t.Cleanup(hs.Close)

	url := "ws" + strings.TrimPrefix(hs.URL, "http") + "/compile"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestLiveCompile(t *testing.T) {
	conn := newTestConn(t, 10*time.Millisecond)

	if err := conn.WriteJSON(CompileRequest{Seq: 1, Source: "ok konungr//"}); err != nil {
		t.Fatal(err)
	}

	var resp CompileResponse
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Seq != 1 {
		t.Errorf("seq = %d, want 1", resp.Seq)
	}
	if !strings.Contains(resp.XML, "<me:dipl>konungr</me:dipl>") {
		t.Errorf("xml = %s", resp.XML)
	}
	if len(resp.Diagnostics) != 0 {
		t.Errorf("diagnostics = %v", resp.Diagnostics)
	}
}

func TestLiveCompileCacheReplay(t *testing.T) {
	conn := newTestConn(t, 10*time.Millisecond)

	var resp CompileResponse
	for i := 1; i <= 2; i++ {
		if err := conn.WriteJSON(CompileRequest{Seq: i, Source: "ok"}); err != nil {
			t.Fatal(err)
		}
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatal(err)
		}
	}
	if !resp.Cached {
		t.Error("repeat input should replay from cache")
	}
}

func TestLiveCompileLastRevisionWins(t *testing.T) {
	conn := newTestConn(t, 200*time.Millisecond)

	// Two revisions inside one debounce window: only the newest compiles.
	if err := conn.WriteJSON(CompileRequest{Seq: 1, Source: "fyrsta"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(CompileRequest{Seq: 2, Source: "sidasta"}); err != nil {
		t.Fatal(err)
	}

	var resp CompileResponse
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Seq != 2 {
		t.Errorf("seq = %d, want 2", resp.Seq)
	}
	if !strings.Contains(resp.XML, "sidasta") {
		t.Errorf("xml should reflect the newest revision\n%s", resp.XML)
	}
}

func TestLiveCompileMalformedSourceStillCompiles(t *testing.T) {
	conn := newTestConn(t, 10*time.Millisecond)

	if err := conn.WriteJSON(CompileRequest{Seq: 1, Source: "ok -{en"}); err != nil {
		t.Fatal(err)
	}
	var resp CompileResponse
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Diagnostics) != 1 {
		t.Errorf("diagnostics = %v, want one", resp.Diagnostics)
	}
	if resp.XML == "" {
		t.Error("malformed input should still produce output")
	}
}
