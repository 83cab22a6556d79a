// Package link connects transports delivering command buffers
// to the motor Interpreter.
//
// Transports (MQTT, websocket, serial/TCP streams) post events to the
// framework loop. The loop delivers them in arrival order to a single
// Dispatcher, so the Interpreter never runs concurrently.
package link

import (
	"context"
	"io"

	fx "github.com/robotalks/tiller.go/pkg/framework"
)

// Link is a transport delivering command buffers.
type Link interface {
	// Name identifies the link in logs.
	Name() string
	// Advertise makes the device discoverable again after a peer is lost.
	Advertise() error
}

// CommandWriter sends command buffers to a device.
type CommandWriter interface {
	WriteCommand(buf []byte) error
}

// ValueReader reads back the last buffer written to a device.
type ValueReader interface {
	Read(ctx context.Context) ([]byte, error)
}

// Conn is a sender side connection to a device.
type Conn interface {
	CommandWriter
	io.Closer
}

// Event is one of *Connected, *Disconnected or *Written.
type Event interface {
	fx.Message
	Source() Link
	linkEvent()
}

// Connected is posted when a peer connects.
type Connected struct {
	Link Link
	Peer string
}

// Disconnected is posted when a peer is lost.
type Disconnected struct {
	Link Link
	Peer string
	Err  error
}

// Written is posted for every buffer written by a peer.
type Written struct {
	Link Link
	Peer string
	Data []byte
}

// NewMessage implements Message.
func (e *Connected) NewMessage() fx.Message { return &Connected{} }

// NewMessage implements Message.
func (e *Disconnected) NewMessage() fx.Message { return &Disconnected{} }

// NewMessage implements Message.
func (e *Written) NewMessage() fx.Message { return &Written{} }

// Source implements Event.
func (e *Connected) Source() Link { return e.Link }

// Source implements Event.
func (e *Disconnected) Source() Link { return e.Link }

// Source implements Event.
func (e *Written) Source() Link { return e.Link }

func (e *Connected) linkEvent()    {}
func (e *Disconnected) linkEvent() {}
func (e *Written) linkEvent()      {}

// Post posts an event to the loop and wakes it up.
func Post(ctl fx.LoopControl, ev Event) {
	ctl.PostMessage(ev)
	ctl.TriggerNext()
}

// Write copies buf into a Written event, as transports reuse their buffers.
func Write(l Link, peer string, buf []byte) *Written {
	data := make([]byte, len(buf))
	copy(data, buf)
	return &Written{Link: l, Peer: peer, Data: data}
}
