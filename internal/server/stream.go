package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ali-sdg/cosmos-walker/internal/surface"
	"github.com/ali-sdg/cosmos-walker/internal/terrain"
)

const writeWait = 5 * time.Second

// Message types sent on the surface stream.
const (
	MessageMesh  = "mesh"
	MessageFrame = "frame"
	MessageState = "state"
)

// StreamMessage is one server-to-client message on the surface stream.
type StreamMessage struct {
	Type   string               `json:"type"`
	Mesh   *surface.MeshExport  `json:"mesh,omitempty"`
	Frame  *surface.FrameExport `json:"frame,omitempty"`
	Paused *bool                `json:"paused,omitempty"`
}

// Control is a client-to-server message on the surface stream.
type Control struct {
	Paused bool `json:"paused"`
}

// handleSurfaceStream sends the surface once, then one frame per tick while
// the body is animated and the client has not paused it. All writes happen on
// this goroutine; a reader goroutine forwards controls.
func (s *Server) handleSurfaceStream(w http.ResponseWriter, r *http.Request) {
	b, ok := s.lookupLandable(w, r)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade: %v", err)
		return
	}
	defer conn.Close()
	log := s.log.Named(b.ID)
	log.Info("stream opened from %s", r.RemoteAddr)
	defer log.Info("stream closed")

	if err := s.send(conn, StreamMessage{Type: MessageMesh, Mesh: s.surface(b)}); err != nil {
		log.Warn("send mesh: %v", err)
		return
	}

	controls := make(chan Control)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var c Control
			if err := conn.ReadJSON(&c); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Debug("read: %v", err)
				}
				return
			}
			select {
			case controls <- c:
			case <-r.Context().Done():
				return
			}
		}
	}()

	// Each connection animates its own mesh so clients can pause independently.
	var (
		mesh    *surface.Mesh
		ticks   <-chan time.Time
		elapsed time.Duration
		paused  bool
	)
	if terrain.Animated(b) {
		mesh = surface.New(s.terrain, s.mesh)
		mesh.Build(b)
		ticker := time.NewTicker(s.frame)
		defer ticker.Stop()
		ticks = ticker.C
	}

	for {
		select {
		case <-r.Context().Done():
			s.closeStream(conn)
			return
		case <-done:
			return
		case c := <-controls:
			paused = c.Paused
			log.Debug("paused=%t", paused)
			if err := s.send(conn, StreamMessage{Type: MessageState, Paused: &paused}); err != nil {
				log.Warn("send state: %v", err)
				return
			}
		case <-ticks:
			if paused {
				continue
			}
			elapsed += s.frame
			t := elapsed.Seconds()
			mesh.Animate(t)
			if err := s.send(conn, StreamMessage{Type: MessageFrame, Frame: surface.Frame(mesh, t)}); err != nil {
				log.Warn("send frame: %v", err)
				return
			}
		}
	}
}

func (s *Server) send(conn *websocket.Conn, msg StreamMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

func (s *Server) closeStream(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
