package mqtt

import (
	"context"
	"encoding/json"

	"github.com/golang/glog"

	fx "github.com/robotalks/tiller.go/pkg/framework"
	"github.com/robotalks/tiller.go/pkg/link"
	"github.com/robotalks/tiller.go/pkg/msgs"
)

// Peripheral is the device side of the MQTT link.
// It advertises the device with retained meta and turns
// messages on the cmd topic into link events.
type Peripheral struct {
	Queue *Queue
	Info  Info
	// Source provides the read-back value.
	Source link.ValueSource

	metaJSON []byte
}

// NewPeripheral creates a Peripheral.
func NewPeripheral(brokerURL string, info Info) (*Peripheral, error) {
	labels := map[string]string{LabelProtocol: ProtocolVersion}
	for k, v := range info.Meta.Labels {
		labels[k] = v
	}
	info.Meta.Labels = labels
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	// the broker clears the advertisement if the device is gone.
	opts.SetBinaryWill(topicPrefix+info.Ref.Topic(TopicMeta), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("tiller:" + info.Ref.Name())
	}
	return &Peripheral{
		Queue:    NewQueue(opts, topicPrefix),
		Info:     info,
		metaJSON: meta,
	}, nil
}

// Name implements link.Link.
func (p *Peripheral) Name() string {
	return "mqtt:" + p.Info.Ref.Name()
}

// Advertise implements link.Link. When the broker connection is lost,
// the advertisement is published again on reconnect.
func (p *Peripheral) Advertise() error {
	if !p.Queue.Client.IsConnected() {
		glog.V(1).Infof("%s: advertise deferred until reconnected", p.Name())
		return nil
	}
	p.Queue.PubWith(p.Info.Ref.Topic(TopicMeta), p.metaJSON, 1, true)
	return nil
}

// SendEvent implements link.StatusNotifier.
func (p *Peripheral) SendEvent(ctx context.Context, msg fx.Message) error {
	data, err := msgs.Encode(msg)
	if err != nil {
		return err
	}
	p.Queue.Pub(p.Info.Ref.Topic(TopicMsg), data)
	return nil
}

// AddToLoop implements LoopAdder.
func (p *Peripheral) AddToLoop(l *fx.Loop) {
	l.AddRunnable(p)
}

// Run implements Runnable.
func (p *Peripheral) Run(ctx context.Context) error {
	loopCtl := fx.LoopCtlFrom(ctx)
	p.Queue.OnConnect = func(q *Queue, _ error) {
		p.Advertise()
		link.Post(loopCtl, &link.Connected{Link: p, Peer: "broker"})
	}
	p.Queue.OnDisconnect = func(q *Queue, err error) {
		link.Post(loopCtl, &link.Disconnected{Link: p, Peer: "broker", Err: err})
	}
	subs := []*Subscription{
		p.Queue.Sub(p.Info.Ref.Topic(TopicCmd), func(topic string, payload []byte) {
			link.Post(loopCtl, link.Write(p, "broker", payload))
		}),
		p.Queue.Sub(p.Info.Ref.Topic(TopicRead), func(string, []byte) {
			p.publishValue()
		}),
	}

	if token := p.Queue.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	<-ctx.Done()
	for _, sub := range subs {
		sub.Close()
	}
	p.Queue.PubWith(p.Info.Ref.Topic(TopicMeta), nil, 1, true).Wait()
	p.Queue.Close()
	return ctx.Err()
}

func (p *Peripheral) publishValue() {
	var val []byte
	if p.Source != nil {
		val = p.Source.Value()
	}
	if val == nil {
		val = []byte{}
	}
	p.Queue.Pub(p.Info.Ref.Topic(TopicValue), val)
}
