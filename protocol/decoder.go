package protocol

// DecoderStats counts what the decoder saw on the link
type DecoderStats struct {
	Frames    uint32 // frames with a valid CRC
	Resyncs   uint32 // times framing was lost
	BadRecord uint32 // valid frames whose payload did not decode
	Lost      uint32 // frames missing according to the sequence numbers
}

// Decoder extracts trace records from a byte stream. It tolerates garbage
// between frames and resynchronizes on the sync byte.
type Decoder struct {
	synchronized bool
	expectSeq    int // -1 until the first frame
	stats        DecoderStats
}

// NewDecoder creates a decoder waiting for its first frame
func NewDecoder() *Decoder {
	return &Decoder{synchronized: true, expectSeq: -1}
}

// Stats returns the link counters
func (d *Decoder) Stats() DecoderStats {
	return d.stats
}

// Receive decodes every complete frame in input, hands each record to fn
// and pops the consumed bytes. A partial frame at the end stays in input.
func (d *Decoder) Receive(input InputBuffer, fn func(Record)) {
	data := input.Data()

	for len(data) > 0 {
		if !d.synchronized {
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}

			if syncPos >= 0 {
				data = data[syncPos+1:]
				d.synchronized = true
			} else {
				data = nil
			}
			continue
		}

		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}

		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			d.desync()
			continue
		}

		seq := data[MessagePositionSeq]
		if seq&^MessageSeqMask != MessageDest {
			d.desync()
			continue
		}

		if len(data) < msgLen {
			break
		}

		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			d.desync()
			continue
		}

		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			d.desync()
			continue
		}

		payload := data[MessageHeaderSize : msgLen-MessageTrailerSize]
		data = data[msgLen:]
		d.stats.Frames++
		d.trackSequence(seq & MessageSeqMask)

		rec, err := DecodeRecord(payload)
		if err != nil {
			d.stats.BadRecord++
			continue
		}
		rec.Sequence = seq & MessageSeqMask
		fn(rec)
	}

	consumed := input.Available() - len(data)
	if consumed > 0 {
		input.Pop(consumed)
	}
}

func (d *Decoder) desync() {
	d.synchronized = false
	d.stats.Resyncs++
}

// trackSequence counts frames skipped since the previous one. Gaps of 16 or
// more frames alias and are undercounted.
func (d *Decoder) trackSequence(seq uint8) {
	if d.expectSeq >= 0 {
		d.stats.Lost += uint32((seq - uint8(d.expectSeq)) & MessageSeqMask)
	}
	d.expectSeq = int((seq + 1) & MessageSeqMask)
}
