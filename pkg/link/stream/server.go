package stream

import (
	"context"
	"net"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/tiller.go/pkg/framework"
)

// Server accepts TCP connections, each one is a peer.
type Server struct {
	Addr string

	listener net.Listener
	lock     sync.Mutex
}

// Name implements link.Link.
func (s *Server) Name() string {
	return "tcp:" + s.Addr
}

// Advertise implements link.Link. The listener keeps accepting,
// nothing to do.
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

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	ctl := fx.LoopCtlFrom(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		wg.Add(1)
		go func(conn net.Conn) {
			defer wg.Done()
			peer := conn.RemoteAddr().String()
			if err := Serve(ctx, ctl, s, peer, conn); err != nil {
				glog.V(1).Infof("%s: peer %s: %v", s.Name(), peer, err)
			}
		}(conn)
	}
}
