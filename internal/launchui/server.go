// Package launchui serves the single-client WebSocket handshake that walks
// an operator through policy selection, IMU/motor permission, and policy
// start/stop before the control loop begins ticking. Grounded on
// original_source/firmware/launchInterface/websocket.py, reworked onto
// gorilla/websocket in the request/response style of the teacher firmware's
// HTTP+WebSocket server. See spec.md §4.G.
package launchui

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gorilla/websocket"
)

// Envelope is the wire shape of every message exchanged with the client:
// a type tag plus an arbitrary payload.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Server waits for exactly one WebSocket client, then exposes blocking
// request/response helpers the launch sequence drives in order.
type Server struct {
	addr     string
	upgrader websocket.Upgrader

	httpSrv *http.Server
	conn    chan *websocket.Conn
}

// New constructs a launch UI server bound to addr (host:port); it does not
// start listening until Run is called.
func New(addr string) *Server {
	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conn: make(chan *websocket.Conn, 1),
	}
}

// Handler returns the HTTP handler serving the /ws upgrade endpoint,
// usable standalone in tests without starting Run's listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{Addr: s.addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpSrv.Shutdown(shutCtx)
	}()

	log.Printf("[launchui] listening on %s", s.addr)
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[launchui] upgrade error: %v", err)
		return
	}
	log.Printf("[launchui] client connected from %s", r.RemoteAddr)
	select {
	case s.conn <- c:
	default:
		c.Close()
	}
}

// WaitForClient blocks until a client has connected, or ctx is cancelled.
func (s *Server) WaitForClient(ctx context.Context) (*websocket.Conn, error) {
	select {
	case c := <-s.conn:
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Session wraps one connected client for the duration of a launch sequence.
type Session struct {
	conn *websocket.Conn
}

// NewSession wraps an established connection.
func NewSession(conn *websocket.Conn) *Session {
	return &Session{conn: conn}
}

func (s *Session) send(msgType string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.conn.WriteJSON(Envelope{Type: msgType, Data: raw})
}

func (s *Session) waitFor(expected ...string) (*Envelope, error) {
	var env Envelope
	if err := s.conn.ReadJSON(&env); err != nil {
		return nil, err
	}
	if env.Type == "abort" {
		return &env, nil
	}
	for _, t := range expected {
		if env.Type == t {
			return &env, nil
		}
	}
	s.send("error", map[string]string{"message": fmt.Sprintf("expected one of %v, got %s", expected, env.Type)})
	return nil, nil
}

// KinferEntry describes one policy archive file offered to the client.
type KinferEntry struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Modified int64  `json:"modified"`
}

// SelectPolicy lists every .kinfer file under policyDir, sends them to the
// client, and blocks until one is selected or the client aborts. Returns ""
// on abort.
func (s *Session) SelectPolicy(policyDir string) (string, error) {
	entries, err := os.ReadDir(policyDir)
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}
	var files []KinferEntry
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".kinfer" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, KinferEntry{
			Name:     e.Name(),
			Path:     filepath.Join(policyDir, e.Name()),
			Size:     info.Size(),
			Modified: info.ModTime().Unix(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Modified > files[j].Modified })

	if len(files) == 0 {
		s.send("error", map[string]string{"message": "no kinfer files found in " + policyDir})
		return "", nil
	}
	if err := s.send("kinfer_list", map[string]any{"files": files, "count": len(files)}); err != nil {
		return "", err
	}

	for {
		env, err := s.waitFor("select_kinfer")
		if err != nil {
			return "", err
		}
		if env == nil {
			continue
		}
		if env.Type == "abort" {
			return "", nil
		}
		var sel struct {
			Path string `json:"path"`
		}
		json.Unmarshal(env.Data, &sel)
		if sel.Path == "" {
			continue
		}
		if _, err := os.Stat(sel.Path); err != nil {
			s.send("error", map[string]string{"message": "invalid kinfer path: " + sel.Path})
			continue
		}
		s.send("kinfer_selected", map[string]string{"path": sel.Path})
		return sel.Path, nil
	}
}

// AskIMUPermission reports imuPresent and, if false, asks whether to
// continue without an IMU. Returns false if the client aborts.
func (s *Session) AskIMUPermission(imuPresent bool) (bool, error) {
	if imuPresent {
		return true, s.send("imu_success", nil)
	}
	if err := s.send("imu_not_found", map[string]string{"message": "no IMU hardware detected, continue without IMU?"}); err != nil {
		return false, err
	}
	for {
		env, err := s.waitFor("continue_without_imu")
		if err != nil {
			return false, err
		}
		if env == nil {
			continue
		}
		if env.Type == "abort" {
			s.send("abort", nil)
			return false, nil
		}
		return true, s.send("imu_success", nil)
	}
}

// AskMotorPermission reports actuatorInfo and blocks until the client
// authorizes enabling motors or aborts.
func (s *Session) AskMotorPermission(actuatorInfo any) (bool, error) {
	if err := s.send("request_motor_enable", actuatorInfo); err != nil {
		return false, err
	}
	for {
		env, err := s.waitFor("enable_motors")
		if err != nil {
			return false, err
		}
		if env == nil {
			continue
		}
		if env.Type == "abort" {
			s.send("aborted", nil)
			return false, nil
		}
		return true, s.send("enabling_motors", nil)
	}
}

// AskPolicyStartPermission blocks until the client authorizes starting the
// control loop or aborts.
func (s *Session) AskPolicyStartPermission() (bool, error) {
	if err := s.send("request_policy_start", map[string]string{"message": "ready to start policy?"}); err != nil {
		return false, err
	}
	for {
		env, err := s.waitFor("start_policy")
		if err != nil {
			return false, err
		}
		if env == nil {
			continue
		}
		if env.Type == "abort" {
			s.send("aborted", nil)
			return false, nil
		}
		return true, s.send("policy_started", nil)
	}
}

// ReportTick sends a lightweight per-tick status update. Write errors are
// swallowed; a disconnected client should not interrupt the control loop.
func (s *Session) ReportTick(tick int64, dtMillis float64) {
	s.send("policy_status", map[string]any{"step_id": tick, "dt_ms": dtMillis})
}

// CheckForStop polls non-blockingly for a stop or abort message from the
// client.
func (s *Session) CheckForStop() bool {
	s.conn.SetReadDeadline(time.Now().Add(time.Millisecond))
	defer s.conn.SetReadDeadline(time.Time{})

	var env Envelope
	if err := s.conn.ReadJSON(&env); err != nil {
		return false
	}
	switch env.Type {
	case "stop_policy":
		s.send("policy_stopped", nil)
		return true
	case "abort":
		s.send("aborted", nil)
		return true
	}
	return false
}

// Close closes the underlying connection.
func (s *Session) Close() error {
	return s.conn.Close()
}
