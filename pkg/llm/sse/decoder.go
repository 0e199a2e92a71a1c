// Package sse decodes server-sent event streams. It is the single line
// decoder shared by every vendor adapter: adapters only differ in how they
// extract a text delta from a decoded event.
package sse

import (
	"bytes"
	"io"
)

// Event is one decoded server-sent event. Name is the value of the last
// "event:" field ("" for bare data events, as OpenAI-compatible vendors send);
// Data is the concatenated "data:" payload.
type Event struct {
	Name string
	Data []byte
}

// Done reports the terminal "data: [DONE]" sentinel, which must never be
// parsed as JSON.
func (e *Event) Done() bool {
	return string(e.Data) == "[DONE]"
}

// Decoder reads events from r. Partial lines are buffered across reads, so
// the decoded sequence is identical no matter how the byte stream is chunked.
// On stream end a residual partial line is processed and any pending event
// flushed before io.EOF is surfaced.
type Decoder struct {
	r       io.Reader
	buf     []byte
	readBuf []byte
	readErr error
	flushed bool

	// event under construction
	name    string
	data    []byte
	hasData bool
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:       r,
		readBuf: make([]byte, 4096),
	}
}

// Next returns the next complete event, or io.EOF when the stream is done.
func (d *Decoder) Next() (*Event, error) {
	for {
		// Drain complete lines already buffered.
		for {
			i := bytes.IndexByte(d.buf, '\n')
			if i < 0 {
				break
			}
			line := d.buf[:i]
			d.buf = d.buf[i+1:]
			if ev := d.processLine(line); ev != nil {
				return ev, nil
			}
		}

		if d.readErr != nil {
			if !d.flushed {
				d.flushed = true
				if ev := d.flush(); ev != nil {
					return ev, nil
				}
			}
			return nil, d.readErr
		}

		n, err := d.r.Read(d.readBuf)
		if n > 0 {
			d.buf = append(d.buf, d.readBuf[:n]...)
		}
		if err != nil {
			d.readErr = err
		}
	}
}

// flush handles stream end: the trailing unterminated line is treated as a
// complete line, then any pending event is emitted.
func (d *Decoder) flush() *Event {
	if len(d.buf) > 0 {
		line := d.buf
		d.buf = nil
		if ev := d.processLine(line); ev != nil {
			return ev
		}
	}
	if d.hasData {
		return d.takeEvent()
	}
	return nil
}

func (d *Decoder) processLine(line []byte) *Event {
	line = bytes.TrimSuffix(line, []byte{'\r'})

	// Blank line dispatches the pending event.
	if len(line) == 0 {
		if d.hasData {
			return d.takeEvent()
		}
		d.name = ""
		return nil
	}

	// Comment line.
	if line[0] == ':' {
		return nil
	}

	field := line
	var value []byte
	if i := bytes.IndexByte(line, ':'); i >= 0 {
		field = line[:i]
		value = line[i+1:]
		if len(value) > 0 && value[0] == ' ' {
			value = value[1:]
		}
	}

	switch string(field) {
	case "event":
		d.name = string(value)
	case "data":
		if d.hasData {
			d.data = append(d.data, '\n')
		}
		d.data = append(d.data, value...)
		d.hasData = true
	}
	return nil
}

func (d *Decoder) takeEvent() *Event {
	ev := &Event{Name: d.name, Data: d.data}
	d.name = ""
	d.data = nil
	d.hasData = false
	return ev
}
