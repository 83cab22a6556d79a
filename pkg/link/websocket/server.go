// Package websocket carries command buffers over websocket,
// one binary frame per command, for browser based senders.
package websocket

import (
	"context"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/tiller.go/pkg/framework"
	"github.com/robotalks/tiller.go/pkg/link"
	"github.com/robotalks/tiller.go/pkg/msgs"
)

// Routes
const (
	PathCommand = "/ws"
	PathValue   = "/value"
	PathStatus  = "/status"
)

// Server is the device side of the websocket link.
type Server struct {
	Addr string
	// Source provides the read-back value.
	Source link.ValueSource

	listener net.Listener
	status   *msgs.MotorStatus
	lock     sync.Mutex
}

// Name implements link.Link.
func (s *Server) Name() string {
	return "ws:" + s.Addr
}

// Advertise implements link.Link.
func (s *Server) Advertise() error {
	return nil
}

// ListenAddr returns the address actually listened, or nil before Run.
func (s *Server) ListenAddr() net.Addr {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Handler builds the routes. Connections are closed when ctx is done.
func (s *Server) Handler(ctx context.Context, ctl fx.LoopControl) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Handle(PathCommand, websocket.Server{
		// browsers on any origin are accepted.
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler: func(conn *websocket.Conn) {
			s.serveConn(ctx, ctl, conn)
		},
	})
	r.Get(PathValue, s.serveValue)
	r.Get(PathStatus, s.serveStatus)
	return r
}

// SendEvent implements link.StatusNotifier, keeping the latest status.
func (s *Server) SendEvent(ctx context.Context, msg fx.Message) error {
	if status, ok := msg.(*msgs.MotorStatus); ok {
		s.lock.Lock()
		s.status = status
		s.lock.Unlock()
	}
	return nil
}

// AddToLoop implements LoopAdder.
func (s *Server) AddToLoop(l *fx.Loop) {
	l.AddRunnable(s)
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.lock.Lock()
	s.listener = ln
	s.lock.Unlock()
	glog.Infof("%s: listening on %s", s.Name(), ln.Addr())

	srv := &http.Server{Handler: s.Handler(ctx, fx.LoopCtlFrom(ctx))}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	select {
	case <-ctx.Done():
		srv.Close()
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) serveConn(ctx context.Context, ctl fx.LoopControl, conn *websocket.Conn) {
	peer := conn.Request().RemoteAddr
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	link.Post(ctl, &link.Connected{Link: s, Peer: peer})
	var err error
	for {
		var pkt []byte
		if err = websocket.Message.Receive(conn, &pkt); err != nil {
			break
		}
		link.Post(ctl, link.Write(s, peer, pkt))
	}
	conn.Close()
	glog.V(1).Infof("%s: peer %s closed: %v", s.Name(), peer, err)
	link.Post(ctl, &link.Disconnected{Link: s, Peer: peer})
}

func (s *Server) serveValue(w http.ResponseWriter, r *http.Request) {
	var val []byte
	if s.Source != nil {
		val = s.Source.Value()
	}
	if val == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(val)
}

func (s *Server) serveStatus(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	status := s.status
	s.lock.Unlock()
	if status == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	render.JSON(w, r, status)
}
