package msgs

import (
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/tiller.go/pkg/framework"
	"github.com/robotalks/tiller.go/pkg/motor"
)

type plainMsg struct{}

func (m *plainMsg) NewMessage() fx.Message { return &plainMsg{} }

func TestMotorStatusEnvelope(t *testing.T) {
	status := NewMotorStatus(motor.Levels{Indicator: 200, A: 200})
	status.Applied, status.Malformed = 3, 1
	data, err := Encode(status)
	require.NoError(t, err)

	typed, err := DecodeTyped(data)
	require.NoError(t, err)
	require.True(t, typed.IsEvent())
	require.Equal(t, MotorStatusTypeID, typed.TypeId)

	msg, err := Decode(data)
	require.NoError(t, err)
	decoded, ok := msg.(*MotorStatus)
	require.True(t, ok)
	require.Equal(t, status, decoded)
	require.Equal(t, motor.Levels{Indicator: 200, A: 200}, decoded.Levels())
}

func TestDecodeErrors(t *testing.T) {
	_, err := TypedFrom(&plainMsg{})
	require.Equal(t, ErrNotSerializable, err)

	data, err := (&Typed{TypeId: GroupCustom | 0x42}).Encode()
	require.NoError(t, err)
	_, err = Decode(data)
	require.Equal(t, &ErrUnknownType{TypeID: GroupCustom | 0x42}, err)

	_, err = DecodeTyped([]byte{0xff, 0xff})
	require.Error(t, err)
}
