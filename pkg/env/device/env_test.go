package device

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/tiller.go/pkg/link"
	"github.com/robotalks/tiller.go/pkg/link/mqtt"
	"github.com/robotalks/tiller.go/pkg/link/stream"
	"github.com/robotalks/tiller.go/pkg/link/websocket"
	"github.com/robotalks/tiller.go/pkg/motor"
)

func TestNewEnv(t *testing.T) {
	conf := &Config{
		Type:             "tiller",
		ID:               "a1",
		MQTTBrokerURL:    "mqtt://localhost:1883/boat/",
		WebsocketAddr:    ":0",
		TCPAddr:          ":0",
		SerialPath:       "/dev/ttyUSB0",
		SerialBaud:       9600,
		StopOnDisconnect: true,
	}
	e, err := conf.NewEnv()
	require.NoError(t, err)
	require.True(t, e.Dispatcher.StopOnDisconnect)
	require.Len(t, e.Links, 4)
	require.IsType(t, &mqtt.Peripheral{}, e.Links[0])
	require.IsType(t, &websocket.Server{}, e.Links[1])
	require.IsType(t, &stream.Server{}, e.Links[2])
	require.IsType(t, &stream.Port{}, e.Links[3])
	notifiers := e.Dispatcher.Notifier.(link.Notifiers)
	require.Len(t, notifiers, 2)
	require.Equal(t, e.Dispatcher, notifiers[0].(*mqtt.Peripheral).Source)
	require.Equal(t, e.Dispatcher, notifiers[1].(*websocket.Server).Source)
	require.Equal(t, 9600, e.Links[3].(*stream.Port).Baud)
	require.Equal(t, motor.Levels{}, e.Output.Levels())
	for _, sim := range e.Sims {
		require.NotNil(t, sim)
	}
}

func TestNewEnvErrors(t *testing.T) {
	dir, err := ioutil.TempDir("", "tiller-env")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	badBoard := filepath.Join(dir, "board.yaml")
	require.NoError(t, ioutil.WriteFile(badBoard, []byte("resolution_bits: 10\n"), 0644))

	testCases := []struct {
		name string
		conf Config
	}{
		{"no id", Config{Type: "tiller", TCPAddr: ":0"}},
		{"bad ref", Config{Type: "til/ler", ID: "a1", TCPAddr: ":0"}},
		{"no links", Config{Type: "tiller", ID: "a1"}},
		{"bad mqtt url", Config{Type: "tiller", ID: "a1", MQTTBrokerURL: "mqtt://h:%zz"}},
		{"missing board", Config{Type: "tiller", ID: "a1", TCPAddr: ":0", BoardPath: filepath.Join(dir, "none.yaml")}},
		{"invalid board", Config{Type: "tiller", ID: "a1", TCPAddr: ":0", BoardPath: badBoard}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.conf.NewEnv()
			require.Error(t, err)
		})
	}
}
