package mqtt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMetaHandler(t *testing.T) {
	infoCh, done := make(chan Info, 1), make(chan struct{})
	handler := metaHandler(infoCh, done)

	handler("tiller/a1/meta", []byte(`{"description":"Tiller Pilot"}`))
	handler("tiller/meta", []byte(`{}`))
	handler("tiller/a2/meta", nil)
	info := <-infoCh
	require.Equal(t, Ref{Type: "tiller", ID: "a1"}, info.Ref)
	require.Equal(t, "Tiller Pilot", info.Meta.Description)

	// fill the channel, then a late advertisement must not block.
	handler("tiller/a2/meta", []byte(`{}`))
	close(done)
	returned := make(chan struct{})
	go func() {
		handler("tiller/a3/meta", []byte(`{}`))
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("handler blocked after discovery finished")
	}
	require.Equal(t, "a2", (<-infoCh).Ref.ID)
}

func TestCentralConnectFails(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	testCases := []struct {
		name string
		ctx  context.Context
	}{
		{"refused", context.Background()},
		{"canceled", canceled},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewCentral("mqtt://127.0.0.1:1/boat/")
			require.NoError(t, err)
			conn, err := c.Connect(tc.ctx, Ref{Type: "tiller", ID: "a1"})
			require.Error(t, err)
			require.Nil(t, conn)
		})
	}
}
