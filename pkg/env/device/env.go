// Package device sets up the actuator: outputs, dispatcher and links.
package device

import (
	"flag"
	"fmt"
	"log"

	cenv "github.com/caarlos0/env"

	"github.com/robotalks/tiller.go/pkg/env"
	fx "github.com/robotalks/tiller.go/pkg/framework"
	"github.com/robotalks/tiller.go/pkg/link"
	"github.com/robotalks/tiller.go/pkg/link/mqtt"
	"github.com/robotalks/tiller.go/pkg/link/stream"
	"github.com/robotalks/tiller.go/pkg/link/websocket"
	"github.com/robotalks/tiller.go/pkg/motor"
	"github.com/robotalks/tiller.go/pkg/motor/pwm"
)

// Config provides options to setup the actuator.
type Config struct {
	Type        string `env:"TILLER_TYPE"`
	ID          string `env:"TILLER_ID"`
	Description string `env:"TILLER_DESCRIPTION"`

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string `env:"TILLER_MQTT_URL"`
	// WebsocketAddr is the listen address of websocket link.
	WebsocketAddr string `env:"TILLER_WS_ADDR"`
	// TCPAddr is the listen address of stream link.
	TCPAddr string `env:"TILLER_TCP_ADDR"`
	// SerialPath is the serial device of stream link.
	SerialPath string `env:"TILLER_SERIAL"`
	SerialBaud int    `env:"TILLER_SERIAL_BAUD"`

	// BoardPath is the board YAML file. Simulated outputs are used if empty.
	BoardPath string `env:"TILLER_BOARD"`

	StopOnDisconnect bool `env:"TILLER_STOP_ON_DISCONNECT"`
}

var (
	defaultConfig = Config{
		Type:          "tiller",
		Description:   "Tiller Pilot",
		MQTTBrokerURL: "mqtt://localhost:1883/boat/",
		WebsocketAddr: ":8080",
		SerialBaud:    stream.DefaultBaud,
	}

	envErr error
)

func init() {
	defaultConfig.ID = env.MachineID()
	envErr = cenv.Parse(&defaultConfig)
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Type, "type", defaultConfig.Type, "Controller type")
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Controller ID")
	flag.StringVar(&defaultConfig.Description, "desc", defaultConfig.Description, "Controller description")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.StringVar(&defaultConfig.WebsocketAddr, "ws", defaultConfig.WebsocketAddr, "Websocket listen address, empty to disable")
	flag.StringVar(&defaultConfig.TCPAddr, "tcp", defaultConfig.TCPAddr, "TCP listen address")
	flag.StringVar(&defaultConfig.SerialPath, "serial", defaultConfig.SerialPath, "Serial device")
	flag.IntVar(&defaultConfig.SerialBaud, "baud", defaultConfig.SerialBaud, "Serial baud rate")
	flag.StringVar(&defaultConfig.BoardPath, "board", defaultConfig.BoardPath, "Board YAML file, simulated outputs if empty")
	flag.BoolVar(&defaultConfig.StopOnDisconnect, "stop-on-disconnect", defaultConfig.StopOnDisconnect, "Stop the motor when a peer is lost")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Env is the running actuator.
type Env struct {
	Config     *Config
	Output     *motor.Output
	Sims       [motor.NumChannels]*pwm.Sim
	Dispatcher *link.Dispatcher
	Links      []link.Link
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	if envErr != nil {
		return nil, fmt.Errorf("invalid environment: %v", envErr)
	}
	info := mqtt.Info{
		Ref:  mqtt.Ref{Type: c.Type, ID: c.ID},
		Meta: mqtt.Meta{Description: c.Description},
	}
	if !info.Ref.IsValid() {
		return nil, fmt.Errorf("controller type and id must be specified")
	}

	e := &Env{Config: c}
	var notifiers link.Notifiers
	if c.BoardPath != "" {
		board, err := pwm.LoadBoard(c.BoardPath)
		if err != nil {
			return nil, err
		}
		if e.Output, err = pwm.Open(board); err != nil {
			return nil, err
		}
	} else {
		e.Output, e.Sims = pwm.OpenSim()
	}
	e.Dispatcher = link.NewDispatcher(e.Output)
	e.Dispatcher.StopOnDisconnect = c.StopOnDisconnect

	if c.MQTTBrokerURL != "" {
		p, err := mqtt.NewPeripheral(c.MQTTBrokerURL, info)
		if err != nil {
			return nil, fmt.Errorf("create MQTT peripheral error: %v", err)
		}
		p.Source = e.Dispatcher
		notifiers = append(notifiers, p)
		e.Links = append(e.Links, p)
	}
	if c.WebsocketAddr != "" {
		s := &websocket.Server{Addr: c.WebsocketAddr, Source: e.Dispatcher}
		notifiers = append(notifiers, s)
		e.Links = append(e.Links, s)
	}
	if c.TCPAddr != "" {
		e.Links = append(e.Links, &stream.Server{Addr: c.TCPAddr})
	}
	if c.SerialPath != "" {
		e.Links = append(e.Links, &stream.Port{Path: c.SerialPath, Baud: c.SerialBaud})
	}
	if len(e.Links) == 0 {
		return nil, fmt.Errorf("at least one link is required")
	}
	e.Dispatcher.Notifier = notifiers
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

// AddToLoop adds the dispatcher and links to loop.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Dispatcher)
	for _, l := range e.Links {
		if adder, ok := l.(fx.LoopAdder); ok {
			loop.Add(adder)
		}
	}
}
