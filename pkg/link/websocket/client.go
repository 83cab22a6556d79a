package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"

	"golang.org/x/net/websocket"

	"github.com/robotalks/tiller.go/pkg/msgs"
)

// Client writes commands to a Server.
type Client struct {
	Conn     *websocket.Conn
	ValueURL string
	// StatusURL is used by ReadStatus.
	StatusURL string
}

// Dial connects to a Server, e.g. ws://host:port/ws.
func Dial(serverURL string) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}
	if u.Path == "" {
		u.Path = PathCommand
	}
	origin := url.URL{Scheme: "http", Host: u.Host}
	if u.Scheme == "wss" {
		origin.Scheme = "https"
	}
	conn, err := websocket.Dial(u.String(), "", origin.String())
	if err != nil {
		return nil, err
	}
	valueURL, statusURL := origin, origin
	valueURL.Path, statusURL.Path = PathValue, PathStatus
	return &Client{Conn: conn, ValueURL: valueURL.String(), StatusURL: statusURL.String()}, nil
}

// WriteCommand implements link.CommandWriter.
func (c *Client) WriteCommand(buf []byte) error {
	return websocket.Message.Send(c.Conn, buf)
}

// Read requests the last written buffer.
func (c *Client) Read(ctx context.Context) ([]byte, error) {
	return get(ctx, c.ValueURL)
}

// ReadStatus requests the latest status, nil if not available yet.
func (c *Client) ReadStatus(ctx context.Context) (*msgs.MotorStatus, error) {
	data, err := get(ctx, c.StatusURL)
	if err != nil || data == nil {
		return nil, err
	}
	var status msgs.MotorStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return ioutil.ReadAll(resp.Body)
	case http.StatusNoContent:
		return nil, nil
	default:
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
}

// Close implements io.Closer.
func (c *Client) Close() error {
	return c.Conn.Close()
}
