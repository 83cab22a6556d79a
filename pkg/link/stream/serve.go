package stream

import (
	"context"
	"io"

	fx "github.com/robotalks/tiller.go/pkg/framework"
	"github.com/robotalks/tiller.go/pkg/link"
)

// Serve reads packets from conn and posts them as link events
// until the stream ends or ctx is done. Connected is posted first
// and Disconnected last.
func Serve(ctx context.Context, ctl fx.LoopControl, l link.Link, peer string, conn io.ReadWriteCloser) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	link.Post(ctl, &link.Connected{Link: l, Peer: peer})
	rw := New(conn)
	var err error
	for {
		var pkt []byte
		if pkt, err = rw.ReadPacket(); err != nil {
			break
		}
		link.Post(ctl, link.Write(l, peer, pkt))
	}
	conn.Close()
	if err == io.EOF || ctx.Err() != nil {
		err = nil
	}
	link.Post(ctl, &link.Disconnected{Link: l, Peer: peer, Err: err})
	return err
}
