// Package connector sets up sender side connections to actuators.
package connector

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"

	cenv "github.com/caarlos0/env"

	"github.com/robotalks/tiller.go/pkg/link"
	"github.com/robotalks/tiller.go/pkg/link/mqtt"
	"github.com/robotalks/tiller.go/pkg/link/stream"
	"github.com/robotalks/tiller.go/pkg/link/websocket"
)

// Config provides common options to connect actuators.
type Config struct {
	Type string `env:"TILLER_TYPE"`
	ID   string `env:"TILLER_ID"`

	// URL specifies how to reach the actuator, the scheme selects the link:
	//
	//	mqtt://host:port/topic-prefix/
	//	ws://host:port/ws
	//	tcp://host:port
	URL string `env:"TILLER_URL"`
}

// ErrDiscoveryUnsupported indicates the link can't discover actuators.
var ErrDiscoveryUnsupported = errors.New("discovery not supported")

var (
	defaultConfig = Config{
		URL: "mqtt://localhost:1883/boat/",
	}

	envErr error
)

func init() {
	envErr = cenv.Parse(&defaultConfig)
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Type, "tiller-type", defaultConfig.Type, "Actuator type to connect.")
	flag.StringVar(&defaultConfig.ID, "tiller-id", defaultConfig.ID, "Actuator ID to connect.")
	flag.StringVar(&defaultConfig.URL, "url", defaultConfig.URL, "Actuator URL (mqtt://, ws:// or tcp://).")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Ref is the actuator reference from config.
func (c *Config) Ref() mqtt.Ref {
	return mqtt.Ref{Type: c.Type, ID: c.ID}
}

// Scheme parses the URL scheme.
func (c *Config) Scheme() (string, error) {
	if envErr != nil {
		return "", fmt.Errorf("invalid environment: %v", envErr)
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %v", err)
	}
	switch u.Scheme {
	case "mqtt", "ws", "wss", "tcp":
		return u.Scheme, nil
	default:
		return "", fmt.Errorf("unknown URL scheme: %q", u.Scheme)
	}
}

// Discover lists actuators, only supported by MQTT.
func (c *Config) Discover(ctx context.Context) ([]mqtt.Info, error) {
	scheme, err := c.Scheme()
	if err != nil {
		return nil, err
	}
	if scheme != "mqtt" {
		return nil, ErrDiscoveryUnsupported
	}
	central, err := mqtt.NewCentral(c.URL)
	if err != nil {
		return nil, err
	}
	return central.Discover(ctx)
}

// Connect connects the actuator. ref is only used by MQTT.
func (c *Config) Connect(ctx context.Context, ref mqtt.Ref) (link.Conn, error) {
	scheme, err := c.Scheme()
	if err != nil {
		return nil, err
	}
	var conn link.Conn
	switch scheme {
	case "mqtt":
		if !ref.IsValid() {
			return nil, fmt.Errorf("actuator type and id must be specified")
		}
		var central *mqtt.Central
		if central, err = mqtt.NewCentral(c.URL); err != nil {
			return nil, err
		}
		conn, err = central.Connect(ctx, ref)
	case "tcp":
		u, _ := url.Parse(c.URL)
		conn, err = stream.Dial(u.Host)
	default:
		conn, err = websocket.Dial(c.URL)
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// MustConnect connects the configured actuator or fails.
func (c *Config) MustConnect() link.Conn {
	conn, err := c.Connect(context.TODO(), c.Ref())
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}
