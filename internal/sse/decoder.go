// Package sse decodes an OpenAI-style text/event-stream body that
// arrives in byte chunks with arbitrary boundaries.
package sse

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

// Event is one decoded item from the upstream stream. For delta events
// Data holds the raw JSON payload (so a relay can forward the frame
// unchanged) and Text the extracted content fragment. Done marks the
// terminal sentinel; a Done event carries no payload.
type Event struct {
	Data string
	Text string
	Done bool
}

type deltaChunk struct {
	Choices []struct {
		Delta struct {
			Content *string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Decoder splits a chunked byte stream into data lines and decodes
// them. It buffers the trailing partial line between Feed calls. Once
// the terminal sentinel has been seen the decoder ignores all further
// input.
type Decoder struct {
	buf  []byte
	done bool
}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed consumes one chunk and returns the events completed by it, in
// stream order. Lines that do not carry the data prefix, or whose
// payload is not valid JSON, are dropped without error: a best-effort
// live stream prefers losing one malformed fragment over aborting.
func (d *Decoder) Feed(p []byte) []Event {
	if d.done || len(p) == 0 {
		return nil
	}
	d.buf = append(d.buf, p...)

	var events []Event
	for {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			break
		}
		line := string(d.buf[:i])
		d.buf = d.buf[i+1:]

		ev, ok := d.decodeLine(line)
		if !ok {
			continue
		}
		events = append(events, ev)
		if ev.Done {
			d.done = true
			break
		}
	}
	return events
}

// Done reports whether the terminal sentinel has been decoded.
func (d *Decoder) Done() bool { return d.done }

func (d *Decoder) decodeLine(line string) (Event, bool) {
	line = strings.TrimSuffix(line, "\r")
	if !strings.HasPrefix(line, dataPrefix) {
		return Event{}, false
	}
	payload := line[len(dataPrefix):]
	if payload == doneSentinel {
		return Event{Done: true}, true
	}

	var chunk deltaChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return Event{}, false
	}
	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == nil {
		// Role announcements and finish-reason frames carry no text.
		return Event{}, false
	}
	return Event{Data: payload, Text: *chunk.Choices[0].Delta.Content}, true
}
