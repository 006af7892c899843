// Package server runs the live compile service: editors hold a WebSocket
// open, send source revisions as they type, and receive compiled XML back.
// Rapid revisions are debounced and only the newest one is compiled; results
// are replayed from an LRU cache keyed by input fingerprint.
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/motheatensoul/tei-scribe-sub000/core/annotation"
	"github.com/motheatensoul/tei-scribe-sub000/core/cache"
	"github.com/motheatensoul/tei-scribe-sub000/core/compile"
	"github.com/motheatensoul/tei-scribe-sub000/core/dsl"
	"github.com/motheatensoul/tei-scribe-sub000/core/template"
	"github.com/motheatensoul/tei-scribe-sub000/internal/logging"
)

const (
	readDeadline  = 60 * time.Second
	writeDeadline = 10 * time.Second
	pingInterval  = 54 * time.Second
	maxMessage    = 4 << 20
)

// CompileRequest is one revision sent by the client. Seq is echoed back so
// the client can match responses to revisions.
type CompileRequest struct {
	Seq         int                 `json:"seq"`
	Source      string              `json:"source"`
	Template    *template.Template  `json:"template,omitempty"`
	Annotations []annotation.Record `json:"annotations,omitempty"`
	Punctuation string              `json:"punctuation,omitempty"`
}

// CompileResponse carries the result of compiling one revision.
type CompileResponse struct {
	Seq         int              `json:"seq"`
	XML         string           `json:"xml"`
	Diagnostics []dsl.Diagnostic `json:"diagnostics"`
	Cached      bool             `json:"cached"`
	DurationMs  int64            `json:"duration_ms"`
}

// Config configures a Server.
type Config struct {
	// Debounce is how long a revision sits before compiling, so a burst of
	// keystrokes costs one compile. Zero means DefaultDebounce.
	Debounce time.Duration

	// CacheSize is the LRU capacity. Zero means the cache default.
	CacheSize int

	// CheckOrigin overrides the upgrade origin check. Nil allows same-host
	// origins only.
	CheckOrigin func(r *http.Request) bool
}

// DefaultDebounce is the revision settle time used when none is configured.
const DefaultDebounce = 150 * time.Millisecond

// Server is the live compile service. It is safe for concurrent use; each
// connection gets its own session goroutine.
type Server struct {
	debounce time.Duration
	results  cache.Cache[string, compile.Result]
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients int
}

// New creates a Server.
func New(cfg Config) *Server {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	cacheCfg := cache.DefaultConfig()
	if cfg.CacheSize > 0 {
		cacheCfg.MaxSize = cfg.CacheSize
	}
	return &Server{
		debounce: cfg.Debounce,
		results:  cache.NewLRU[string, compile.Result](cacheCfg),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.CheckOrigin,
		},
	}
}

// ListenAndServe serves the live compile endpoint at /compile until the
// listener fails.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/compile", s.HandleWS)
	logging.ServerStartup(addr)
	return http.ListenAndServe(addr, mux)
}

// HandleWS upgrades the connection and runs a compile session on it.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("websocket upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	s.clients++
	n := s.clients
	s.mu.Unlock()
	logging.WebSocketEvent("client_connected", n)

	s.session(conn)

	s.mu.Lock()
	s.clients--
	n = s.clients
	s.mu.Unlock()
	logging.WebSocketEvent("client_disconnected", n)
}

// session reads revisions and writes results until the connection closes.
// Reading happens on its own goroutine; compiling and writing stay on this
// one, so a newer revision arriving mid-debounce simply replaces the pending
// one and only the newest is ever compiled.
func (s *Server) session(conn *websocket.Conn) {
	defer conn.Close()

	requests := make(chan CompileRequest, 16)
	done := make(chan struct{})
	defer close(done)
	go s.readLoop(conn, requests, done)

	timer := time.NewTimer(s.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	var pending *CompileRequest
	for {
		select {
		case req, ok := <-requests:
			if !ok {
				return
			}
			// Drain any backlog; only the newest revision matters.
			for {
				select {
				case newer, ok := <-requests:
					if !ok {
						return
					}
					req = newer
					continue
				default:
				}
				break
			}
			if pending == nil {
				timer.Reset(s.debounce)
			}
			pending = &req

		case <-timer.C:
			if pending == nil {
				continue
			}
			resp := s.compile(*pending)
			pending = nil
			conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteJSON(resp); err != nil {
				return
			}

		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) readLoop(conn *websocket.Conn, requests chan<- CompileRequest, done <-chan struct{}) {
	defer close(requests)

	conn.SetReadLimit(maxMessage)
	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error("websocket unexpected close", "error", err)
			}
			return
		}
		var req CompileRequest
		if err := json.Unmarshal(data, &req); err != nil {
			logging.Warn("malformed compile request", "error", err)
			continue
		}
		select {
		case requests <- req:
		case <-done:
			return
		}
	}
}

// compile runs or replays one compilation.
func (s *Server) compile(req CompileRequest) CompileResponse {
	in := compile.Input{
		Source:       req.Source,
		Template:     req.Template,
		Annotations:  req.Annotations,
		Segmentation: dsl.SegmentOptions{Punctuation: req.Punctuation},
	}
	key := in.Fingerprint()

	start := time.Now()
	result, cached := s.results.Get(key)
	if !cached {
		result = compile.Compile(in)
		s.results.Put(key, result)
	}
	elapsed := time.Since(start)

	logging.CompileEvent("websocket", len(result.Diagnostics), elapsed, "cached", cached)
	return CompileResponse{
		Seq:         req.Seq,
		XML:         result.XML,
		Diagnostics: result.Diagnostics,
		Cached:      cached,
		DurationMs:  elapsed.Milliseconds(),
	}
}

// Stats exposes the result cache statistics.
func (s *Server) Stats() cache.Stats {
	return s.results.Stats()
}
