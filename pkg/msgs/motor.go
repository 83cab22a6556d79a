package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/tiller.go/pkg/framework"
	"github.com/robotalks/tiller.go/pkg/motor"
)

// MotorStatus is an event reflecting the channel levels.
type MotorStatus struct {
	Indicator uint32 `protobuf:"varint,1,opt,name=indicator,proto3" json:"indicator"`
	LevelA    uint32 `protobuf:"varint,2,opt,name=level_a,proto3" json:"level_a"`
	LevelB    uint32 `protobuf:"varint,3,opt,name=level_b,proto3" json:"level_b"`
	Applied   uint64 `protobuf:"varint,4,opt,name=applied,proto3" json:"applied,omitempty"`
	Malformed uint64 `protobuf:"varint,5,opt,name=malformed,proto3" json:"malformed,omitempty"`
}

// MotorStatusTypeID is the type ID of MotorStatus.
const MotorStatusTypeID uint32 = GroupMotor | TypeIDKindEvent | 0x0000

// NewMotorStatus creates MotorStatus from levels.
func NewMotorStatus(levels motor.Levels) *MotorStatus {
	return &MotorStatus{
		Indicator: uint32(levels.Indicator),
		LevelA:    uint32(levels.A),
		LevelB:    uint32(levels.B),
	}
}

// Levels converts back to motor.Levels.
func (m *MotorStatus) Levels() motor.Levels {
	return motor.Levels{
		Indicator: uint8(m.Indicator),
		A:         uint8(m.LevelA),
		B:         uint8(m.LevelB),
	}
}

// NewMessage implements Message.
func (m *MotorStatus) NewMessage() fx.Message { return &MotorStatus{} }

// TypeID implements SerializableMessage.
func (m *MotorStatus) TypeID() uint32 { return MotorStatusTypeID }

// Serializable implements SerializableMessage.
func (m *MotorStatus) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *MotorStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *MotorStatus) Reset() { *m = MotorStatus{} }

// String implements proto.Message.
func (m *MotorStatus) String() string { return proto.CompactTextString(m) }
