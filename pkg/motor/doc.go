// Package motor provides the command decoder and the drive outputs
// of the tiller actuator.
//
// A command is a two-byte buffer written by the remote side:
//
//	byte 0: intensity, 0 (off) to 255 (full)
//	byte 1: direction selector, 1 selects DirectionA, anything else DirectionB
//
// The Interpreter decodes one buffer per call and writes the resulting
// levels to the three channels through a Driver. The indicator always
// mirrors the intensity. Exactly one of the two direction channels carries
// the intensity, the other is forced to 0.
package motor
