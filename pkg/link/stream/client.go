package stream

import (
	"net"
	"time"
)

// Client writes commands to a Server.
type Client struct {
	Conn net.Conn
	rw   *ReadWriter
}

// DialTimeout is the timeout when connecting.
var DialTimeout = 5 * time.Second

// Dial connects to a Server at addr (host:port).
func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, DialTimeout)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn) *Client {
	return &Client{Conn: conn, rw: New(conn)}
}

// WriteCommand implements link.CommandWriter.
func (c *Client) WriteCommand(buf []byte) error {
	return c.rw.WritePacket(buf)
}

// Close implements io.Closer.
func (c *Client) Close() error {
	return c.Conn.Close()
}
