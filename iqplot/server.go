package iqplot

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	// sendBuffer is the number of frames a client may fall behind before it
	// is dropped as too slow.
	sendBuffer = 8

	// writeTimeout bounds a single WebSocket write to a stalled client.
	writeTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local plotting tool, any origin may connect
	},
}

type point struct {
	I     float64 `json:"i"`
	Q     float64 `json:"q"`
	Label string  `json:"label,omitempty"`
}

type frame struct {
	Type   string  `json:"type"`
	Style  string  `json:"style,omitempty"`
	Points []point `json:"points"`
}

// client is one connected browser. All writes to its connection go through
// the send channel so that exactly one goroutine, writeLoop, touches the
// connection; gorilla/websocket allows a single concurrent writer.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Server is a Renderer that serves a constellation diagram page over HTTP
// and pushes rendered frames to every connected browser over a WebSocket.
// New clients immediately receive the most recent frame.
type Server struct {
	addr string

	mu      sync.Mutex
	clients map[*client]bool
	last    []byte
}

// NewServer returns a plot server that will listen on addr.
func NewServer(addr string) *Server {
	return &Server{
		addr:    addr,
		clients: make(map[*client]bool),
	}
}

// Start serves the plot page and WebSocket endpoint. It blocks until the
// listener fails.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("/ws", s.handleWS)
	log.Info("iqplot server listening", "addr", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

// Render implements Renderer by queueing the frame to every connected
// client. It never blocks on the network: a client whose send buffer is full
// is dropped as too slow.
func (s *Server) Render(points []complex128, style string, labels []string) error {
	if labels != nil && len(labels) != len(points) {
		return fmt.Errorf("iqplot: %d labels for %d points", len(labels), len(points))
	}
	f := frame{Type: "constellation", Style: style, Points: make([]point, len(points))}
	for i, p := range points {
		f.Points[i] = point{I: real(p), Q: imag(p)}
		if labels != nil {
			f.Points[i].Label = labels[i]
		}
	}
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("iqplot: marshal frame: %w", err)
	}

	// Queue under the lock: removeClient closes send channels under the
	// same lock, so a queued send can never hit a closed channel.
	s.mu.Lock()
	s.last = data
	var slow []*client
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	s.mu.Unlock()

	for _, c := range slow {
		log.Warn("iqplot client too slow, dropping")
		s.removeClient(c)
	}
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("iqplot websocket upgrade failed", "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	s.mu.Lock()
	s.clients[c] = true
	if s.last != nil {
		// Buffer is empty, this cannot block.
		c.send <- s.last
	}
	n := len(s.clients)
	s.mu.Unlock()
	log.Info("iqplot client connected", "clients", n)

	go s.writeLoop(c)
	go s.readLoop(c)
}

// writeLoop is the only goroutine that writes to a client's connection. It
// drains the send channel until removeClient closes it.
func (s *Server) writeLoop(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Warn("iqplot client write failed, dropping", "err", err)
			s.removeClient(c)
		}
	}
}

// readLoop drains control frames until the client goes away.
func (s *Server) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			s.removeClient(c)
			return
		}
	}
}

// removeClient unregisters a client and closes its send channel, ending its
// writeLoop. Safe to call more than once.
func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	close(c.send)
	c.conn.Close()
	log.Info("iqplot client disconnected", "clients", len(s.clients))
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, plotPage)
}

const plotPage = `<!DOCTYPE html>
<html>
<head><title>iqplot</title>
<style>
body { background: #111; color: #ccc; font-family: monospace; }
canvas { display: block; margin: 2em auto; background: #181818; }
</style>
</head>
<body>
<canvas id="iq" width="600" height="600"></canvas>
<script>
const canvas = document.getElementById("iq");
const ctx = canvas.getContext("2d");
const scale = canvas.width / 4; // axes span [-2, 2]

function draw(frame) {
	ctx.clearRect(0, 0, canvas.width, canvas.height);
	ctx.strokeStyle = "#333";
	ctx.beginPath();
	ctx.moveTo(0, canvas.height / 2); ctx.lineTo(canvas.width, canvas.height / 2);
	ctx.moveTo(canvas.width / 2, 0); ctx.lineTo(canvas.width / 2, canvas.height);
	ctx.stroke();
	ctx.fillStyle = "#6cf";
	ctx.font = "12px monospace";
	for (const p of frame.points) {
		const x = canvas.width / 2 + p.i * scale;
		const y = canvas.height / 2 - p.q * scale;
		if (p.label) {
			ctx.fillText(p.label, x, y);
		} else {
			ctx.beginPath();
			ctx.arc(x, y, 3, 0, 2 * Math.PI);
			ctx.fill();
		}
	}
}

const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (ev) => draw(JSON.parse(ev.data));
</script>
</body>
</html>
`
