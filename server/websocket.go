package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lab1702/solar-web/config"
	"github.com/lab1702/solar-web/metrics"
	"github.com/lab1702/solar-web/solar"
	"golang.org/x/time/rate"
)

// Message types
const (
	MsgTypeSelect    = "select"
	MsgTypeSpeed     = "speed"
	MsgTypeToggle    = "toggle"
	MsgTypeDragStart = "dragstart"
	MsgTypeDrag      = "drag"
	MsgTypeDragEnd   = "dragend"
	MsgTypeZoom      = "zoom"
	MsgTypeResize    = "resize"
	MsgTypeWeight    = "weight"
	MsgTypeScene     = "scene"
	MsgTypeFrame     = "frame"
	MsgTypeError     = "error"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
	inputBuffer    = 1024
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client is one connected viewer. session and sceneVersion belong to the frame
// loop goroutine and must not be touched from the pumps.
type Client struct {
	ID      int
	conn    *websocket.Conn
	send    chan ServerMessage
	server  *Server
	limiter *rate.Limiter

	session      *solar.Session
	sceneVersion int
}

// input is a decoded viewer message waiting for the next frame boundary
type input struct {
	client *Client
	msg    ClientMessage
	at     time.Time
	err    error
}

// CometSource supplies extra bodies once at startup
type CometSource interface {
	Load(ctx context.Context) ([]solar.BodySpec, error)
}

// Options configures a Server
type Options struct {
	FrameRate      int
	AllowedOrigins []string
	Input          config.InputConfig
}

// Server owns every viewer session and drives them from a single frame loop
type Server struct {
	mu         sync.RWMutex
	clients    map[int]*Client
	comets     []solar.BodySpec
	register   chan *Client
	unregister chan *Client
	inputs     chan input
	cometFeed  chan []solar.BodySpec
	done       chan struct{}
	nextID     int
	frame      atomic.Int64

	interval time.Duration
	origins  []string
	input    config.InputConfig
	metrics  *metrics.Collector
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewServer creates a server; call Run to start its frame loop. A nil collector
// gets a private one.
func NewServer(opts Options, m *metrics.Collector) *Server {
	if m == nil {
		m = metrics.NewCollector()
	}
	frameRate := opts.FrameRate
	if frameRate <= 0 {
		frameRate = solar.FPS
	}
	s := &Server{
		clients:    make(map[int]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inputs:     make(chan input, inputBuffer),
		cometFeed:  make(chan []solar.BodySpec, 1),
		done:       make(chan struct{}),
		interval:   time.Second / time.Duration(frameRate),
		origins:    opts.AllowedOrigins,
		input:      opts.Input,
		metrics:    m,
		log:        slog.With("component", "server"),
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin:       s.isValidOrigin,
		EnableCompression: true,
	}
	return s
}

// isValidOrigin checks if the origin is allowed to connect
func (s *Server) isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No origin header - could be a non-browser client
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		s.log.Warn("Invalid origin URL", "origin", origin)
		return false
	}

	if r.Host == originURL.Host {
		return true
	}

	// Allow localhost connections for development
	if strings.HasPrefix(originURL.Host, "localhost:") ||
		strings.HasPrefix(originURL.Host, "127.0.0.1:") ||
		originURL.Host == "localhost" ||
		originURL.Host == "127.0.0.1" {
		return true
	}

	for _, allowed := range s.origins {
		if strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			return true
		}
	}

	s.log.Warn("Rejected WebSocket connection", "origin", origin)
	return false
}

// Run drives the frame loop until ctx is cancelled. Viewer inputs queued since
// the previous tick are applied first, then every session advances by the
// measured elapsed time and renders to its connection.
func (s *Server) Run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	last := time.Now()

	s.log.Info("Frame loop started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			s.log.Info("Frame loop stopped", "frames", s.frame.Load())
			return

		case client := <-s.register:
			s.addClient(client)

		case client := <-s.unregister:
			s.removeClient(client)

		case specs := <-s.cometFeed:
			s.addComets(specs)

		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			s.tick(elapsed)
		}
	}
}

func (s *Server) tick(elapsed time.Duration) {
	start := time.Now()
	s.drainInputs()
	for _, c := range s.clients {
		c.session.Tick(elapsed)
	}
	s.frame.Add(1)
	s.metrics.RecordTick(time.Since(start))
}

func (s *Server) drainInputs() {
	for {
		select {
		case in := <-s.inputs:
			if _, ok := s.clients[in.client.ID]; !ok {
				continue
			}
			if in.err != nil {
				in.client.sendError("", "malformed message")
				s.metrics.RecordInput("unknown", "invalid")
				continue
			}
			in.client.handleMessage(in.msg, in.at)
		default:
			return
		}
	}
}

func (s *Server) addClient(c *Client) {
	scene, err := solar.NewScene(s.bodyTable())
	if err != nil {
		s.log.Error("Failed to build scene", "client", c.ID, "error", err)
		close(c.send)
		return
	}
	c.session = solar.NewSession(scene, solar.RendererFunc(c.render))
	c.sceneVersion = scene.Version()

	s.mu.Lock()
	s.clients[c.ID] = c
	n := len(s.clients)
	s.mu.Unlock()

	c.trySend(ServerMessage{Type: MsgTypeScene, Data: scene.Layout()})
	s.metrics.SetViewers(n)
	s.log.Info("Client connected", "client", c.ID, "viewers", n)
}

func (s *Server) removeClient(c *Client) {
	s.mu.Lock()
	_, ok := s.clients[c.ID]
	if ok {
		delete(s.clients, c.ID)
		close(c.send)
	}
	n := len(s.clients)
	s.mu.Unlock()

	if ok {
		s.metrics.SetViewers(n)
		s.log.Info("Client disconnected", "client", c.ID, "viewers", n)
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	for id, c := range s.clients {
		delete(s.clients, id)
		close(c.send)
	}
	s.mu.Unlock()
	s.metrics.SetViewers(0)
}

// addComets remembers comets for future viewers and queues them on every
// current scene; they join at each session's next frame.
func (s *Server) addComets(specs []solar.BodySpec) {
	if len(specs) == 0 {
		return
	}
	s.mu.Lock()
	s.comets = append(s.comets, specs...)
	s.mu.Unlock()

	for _, c := range s.clients {
		c.session.Scene.Enqueue(specs...)
	}
	s.log.Info("Comets added", "count", len(specs), "viewers", len(s.clients))
}

// bodyTable is the static table plus every comet loaded so far
func (s *Server) bodyTable() []solar.BodySpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table := make([]solar.BodySpec, 0, len(solar.DefaultBodies)+len(s.comets))
	table = append(table, solar.DefaultBodies...)
	return append(table, s.comets...)
}

// LoadComets fetches comets from src and hands them to the frame loop. It is
// meant to run in its own goroutine; a failure only means no extra bodies.
func (s *Server) LoadComets(ctx context.Context, src CometSource) {
	specs, err := src.Load(ctx)
	if err != nil {
		s.log.Warn("Comet feed unavailable, continuing without comets", "error", err)
		return
	}
	select {
	case s.cometFeed <- specs:
	case <-ctx.Done():
	case <-s.done:
	}
}

// Viewers returns the number of connected viewers
func (s *Server) Viewers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Frame returns the number of frames driven so far
func (s *Server) Frame() int64 {
	return s.frame.Load()
}

// HandleWebSocket handles WebSocket connections
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade error", "error", err)
		return
	}

	s.mu.Lock()
	clientID := s.nextID
	s.nextID++
	s.mu.Unlock()

	client := &Client{
		ID:     clientID,
		conn:   conn,
		send:   make(chan ServerMessage, sendBuffer),
		server: s,
	}
	client.limiter = newLimiter(s.input)

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// render is the session's render surface: the scene layout when it changed,
// then the frame.
func (c *Client) render(f *solar.Frame) {
	if f.SceneVersion != c.sceneVersion {
		c.sceneVersion = f.SceneVersion
		c.trySend(ServerMessage{Type: MsgTypeScene, Data: c.session.Scene.Layout()})
	}
	c.trySend(ServerMessage{Type: MsgTypeFrame, Data: f})
}

// trySend queues a message without blocking the frame loop
func (c *Client) trySend(msg ServerMessage) {
	select {
	case c.send <- msg:
	default:
		c.server.metrics.RecordDroppedFrame()
		c.server.log.Debug("Client send buffer full, dropping message", "client", c.ID, "type", msg.Type)
	}
}

func (c *Client) sendError(request, message string) {
	c.trySend(ServerMessage{Type: MsgTypeError, Data: ErrorData{Message: message, Request: request}})
}

// newLimiter returns a per-connection token bucket, or nil when throttling is off
func newLimiter(cfg config.InputConfig) *rate.Limiter {
	if !cfg.Enabled {
		return nil
	}
	return rate.NewLimiter(rate.Limit(cfg.EventsPerSecond), cfg.BurstSize)
}

// allow applies the input limiter. Drag end and resize always pass so a
// throttled viewer cannot get stuck in manual control or a stale viewport.
func (c *Client) allow(msgType string) bool {
	if c.limiter == nil || msgType == MsgTypeDragEnd || msgType == MsgTypeResize {
		return true
	}
	return c.limiter.Allow()
}

// admit is allow plus accounting for messages the limiter drops
func (c *Client) admit(msgType string) bool {
	if c.allow(msgType) {
		return true
	}
	label := metricType(msgType)
	c.server.metrics.RecordInput(label, resultThrottled)
	logInputDecision(c.ID, label, resultThrottled)
	return false
}

// readPump decodes incoming messages and queues them for the frame loop
func (c *Client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.log.Warn("WebSocket error", "client", c.ID, "error", err)
			}
			return
		}

		in := input{client: c, at: time.Now()}
		if in.err = json.Unmarshal(data, &in.msg); in.err == nil && !c.admit(in.msg.Type) {
			continue
		}

		select {
		case c.server.inputs <- in:
		case <-c.server.done:
			return
		default:
			c.server.log.Warn("Input queue full, dropping message", "client", c.ID, "type", in.msg.Type)
		}
	}
}

// writePump sends messages to the client
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
