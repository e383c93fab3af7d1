// Package protocol implements the trace link between the firmware and the
// host: VLQ encoded records carried in CRC protected frames.
package protocol

// Version of the trace record format
const Version = "1"

// Frame layout: [len][seq] payload [crc hi][crc lo][sync]
const (
	MessageMax         = 256 // Scratch buffer size
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 96
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E

	// Trace frames carry 0x20 in the high bits of the sequence byte
	MessageDest       = 0x20
	MessageSeqMask    = 0x0F
	MessagePayloadMax = MessageLengthMax - MessageLengthMin
)
