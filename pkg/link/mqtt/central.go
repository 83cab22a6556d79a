package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/tiller.go/pkg/msgs"
)

// Central is the sender side of the MQTT link.
type Central struct {
	BrokerURL       string
	DiscoverTimeout time.Duration
}

// DefaultDiscoverTimeout defines the default timeout of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// NewCentral creates a Central.
func NewCentral(brokerURL string) (*Central, error) {
	if _, _, err := ClientOptionsFromURL(brokerURL); err != nil {
		return nil, err
	}
	return &Central{BrokerURL: brokerURL, DiscoverTimeout: DefaultDiscoverTimeout}, nil
}

func (c *Central) newQueue() *Queue {
	opts, topicPrefix, _ := ClientOptionsFromURL(c.BrokerURL)
	return NewQueue(opts, topicPrefix)
}

// Discover lists devices with a retained advertisement.
func (c *Central) Discover(ctx context.Context) (res []Info, err error) {
	q := c.newQueue()
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	defer q.Close()

	infoCh, done := make(chan Info, 16), make(chan struct{})
	defer close(done)
	q.Sub("+/+/"+TopicMeta, metaHandler(infoCh, done))

	dur := c.DiscoverTimeout
	if dur <= 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.After(dur)
	for {
		select {
		case info := <-infoCh:
			res = append(res, info)
		case <-timeout:
			return
		case <-ctx.Done():
			return res, ctx.Err()
		}
	}
}

// Connect connects to a device.
func (c *Central) Connect(ctx context.Context, ref Ref) (*Conn, error) {
	conn := &Conn{
		Queue:    c.newQueue(),
		Ref:      ref,
		statusCh: make(chan *msgs.MotorStatus, 1),
		valueCh:  make(chan []byte, 1),
	}
	conn.Queue.Sub(ref.Topic(TopicMsg), conn.handleMsg)
	conn.Queue.Sub(ref.Topic(TopicValue), conn.handleValue)
	token := conn.Queue.Connect()
	connected := make(chan struct{})
	go func() {
		token.Wait()
		close(connected)
	}()
	select {
	case <-ctx.Done():
		go func() {
			<-connected
			conn.Queue.Close()
		}()
		return nil, ctx.Err()
	case <-connected:
	}
	if err := token.Error(); err != nil {
		conn.Queue.Close()
		return nil, err
	}
	return conn, nil
}

// metaHandler collects advertisements until done is closed.
func metaHandler(infoCh chan<- Info, done <-chan struct{}) Handler {
	return func(topic string, payload []byte) {
		items := strings.Split(topic, "/")
		if len(items) != 3 || len(payload) == 0 {
			return
		}
		info := Info{Ref: Ref{Type: items[0], ID: items[1]}}
		if err := json.Unmarshal(payload, &info.Meta); err != nil {
			glog.Warningf("%s: invalid meta: %v", topic, err)
		}
		select {
		case infoCh <- info:
		case <-done:
		}
	}
}

// Conn is the connection to a device.
type Conn struct {
	Queue *Queue
	Ref   Ref

	statusCh chan *msgs.MotorStatus
	valueCh  chan []byte
}

// WriteCommand implements link.CommandWriter.
func (c *Conn) WriteCommand(buf []byte) error {
	token := c.Queue.Pub(c.Ref.Topic(TopicCmd), buf)
	token.Wait()
	return token.Error()
}

// Read requests the last written buffer.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	// drop a stale reply.
	select {
	case <-c.valueCh:
	default:
	}
	token := c.Queue.Pub(c.Ref.Topic(TopicRead), nil)
	if token.Wait(); token.Error() != nil {
		return nil, token.Error()
	}
	select {
	case val := <-c.valueCh:
		return val, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Status receives the status events. Only the latest is kept.
func (c *Conn) Status() <-chan *msgs.MotorStatus {
	return c.statusCh
}

// Close implements io.Closer.
func (c *Conn) Close() error {
	return c.Queue.Close()
}

func (c *Conn) handleMsg(topic string, payload []byte) {
	msg, err := msgs.Decode(payload)
	if err != nil {
		glog.V(1).Infof("%s: bad message: %v", topic, err)
		return
	}
	if status, ok := msg.(*msgs.MotorStatus); ok {
		replaceLatest(c.statusCh, status)
	}
}

func (c *Conn) handleValue(topic string, payload []byte) {
	val := make([]byte, len(payload))
	copy(val, payload)
	select {
	case c.valueCh <- val:
	default:
	}
}

func replaceLatest(ch chan *msgs.MotorStatus, status *msgs.MotorStatus) {
	for {
		select {
		case ch <- status:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
