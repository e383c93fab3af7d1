// Package trace reads the firmware's trace stream from a serial port or a
// capture file
package trace

import (
	"errors"
	"io"
	"sync"
	"time"

	"cadence/protocol"
)

// Reader decodes records from a port in a background goroutine
type Reader struct {
	port io.ReadCloser

	mu  sync.Mutex
	in  *protocol.FifoBuffer
	dec *protocol.Decoder

	records chan protocol.Record
	stop    chan struct{}
	done    chan struct{}
	err     error
}

// NewReader starts reading from port. Records are dropped, oldest first,
// when the consumer falls behind.
func NewReader(port io.ReadCloser) *Reader {
	r := &Reader{
		port:    port,
		in:      protocol.NewFifoBuffer(1024),
		dec:     protocol.NewDecoder(),
		records: make(chan protocol.Record, 64),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go r.readLoop()
	return r
}

// Records returns the channel of decoded records. It is closed when the
// port reaches EOF or the reader is closed.
func (r *Reader) Records() <-chan protocol.Record {
	return r.records
}

// Stats returns the decoder counters
func (r *Reader) Stats() protocol.DecoderStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dec.Stats()
}

// Err returns the error that ended the read loop, nil for EOF or Close
func (r *Reader) Err() error {
	<-r.done
	return r.err
}

// Close stops the read loop and closes the port
func (r *Reader) Close() error {
	select {
	case <-r.stop:
	default:
		close(r.stop)
	}
	err := r.port.Close()
	<-r.done
	return err
}

func (r *Reader) readLoop() {
	defer close(r.done)
	defer close(r.records)

	buffer := make([]byte, 256)
	for {
		select {
		case <-r.stop:
			return
		default:
		}

		n, err := r.port.Read(buffer)
		if n > 0 {
			r.process(buffer[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			select {
			case <-r.stop:
				return
			default:
			}
			r.err = err
			return
		}
		if n == 0 {
			// Read timeout on an idle port
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func (r *Reader) process(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for len(data) > 0 {
		n := r.in.Write(data)
		data = data[n:]
		r.dec.Receive(r.in, r.deliver)
		if n == 0 && len(data) > 0 {
			// Buffer full of undecodable bytes
			r.in.Reset()
		}
	}
}

func (r *Reader) deliver(rec protocol.Record) {
	select {
	case r.records <- rec:
		return
	default:
	}
	select {
	case <-r.records:
	default:
	}
	r.records <- rec
}

// Decode reads a complete capture from src and hands every record to fn
func Decode(src io.Reader, fn func(protocol.Record)) (protocol.DecoderStats, error) {
	dec := protocol.NewDecoder()
	in := protocol.NewFifoBuffer(1024)
	buffer := make([]byte, 256)
	for {
		n, err := src.Read(buffer)
		data := buffer[:n]
		for len(data) > 0 {
			w := in.Write(data)
			data = data[w:]
			dec.Receive(in, fn)
			if w == 0 && len(data) > 0 {
				in.Reset()
			}
		}
		if errors.Is(err, io.EOF) {
			return dec.Stats(), nil
		}
		if err != nil {
			return dec.Stats(), err
		}
	}
}
