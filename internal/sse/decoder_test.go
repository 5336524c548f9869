package sse

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func delta(text string) string {
	return fmt.Sprintf("data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n", text)
}

func collect(d *Decoder, chunks ...string) []Event {
	var out []Event
	for _, c := range chunks {
		out = append(out, d.Feed([]byte(c))...)
	}
	return out
}

func texts(events []Event) []string {
	var out []string
	for _, ev := range events {
		if !ev.Done {
			out = append(out, ev.Text)
		}
	}
	return out
}

func TestDecoderSplitLineAcrossChunks(t *testing.T) {
	d := NewDecoder()
	events := collect(d,
		"data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n",
		"lo\ndata: {\"choices\":[{\"delta\":{\"content\":\"!\"}}]}\n\ndata: [DONE]\n\n",
	)

	// The stray "lo" line has no data prefix and is silently dropped.
	require.Len(t, events, 3)
	assert.Equal(t, []string{"Hel", "!"}, texts(events))
	assert.True(t, events[2].Done)
	assert.True(t, d.Done())
}

func TestDecoderChunkingInvariance(t *testing.T) {
	full := delta("alpha") + "noise\n" + delta("") + delta("beta") +
		"data: {broken json\n" + delta("gamma") + "data: [DONE]\n\n"

	want := collect(NewDecoder(), full)
	require.NotEmpty(t, want)

	// Any chunking of the same byte stream must decode identically.
	for size := 1; size <= 17; size++ {
		d := NewDecoder()
		var got []Event
		for i := 0; i < len(full); i += size {
			end := i + size
			if end > len(full) {
				end = len(full)
			}
			got = append(got, d.Feed([]byte(full[i:end]))...)
		}
		assert.Equal(t, want, got, "chunk size %d", size)
	}
}

func TestDecoderDropsMalformedJSON(t *testing.T) {
	d := NewDecoder()
	events := collect(d, "data: {not json}\n"+delta("ok")+"data: [DONE]\n")
	require.Len(t, events, 2)
	assert.Equal(t, "ok", events[0].Text)
	assert.True(t, events[1].Done)
}

func TestDecoderSkipsContentlessDeltas(t *testing.T) {
	d := NewDecoder()
	events := collect(d,
		"data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n",
		"data: {\"choices\":[]}\n",
		delta("x"),
	)
	require.Len(t, events, 1)
	assert.Equal(t, "x", events[0].Text)
}

func TestDecoderPreservesRawPayload(t *testing.T) {
	d := NewDecoder()
	payload := "{\"id\":\"c1\",\"choices\":[{\"delta\":{\"content\":\"hi\"}}]}"
	events := collect(d, "data: "+payload+"\n")
	require.Len(t, events, 1)
	assert.Equal(t, payload, events[0].Data)
}

func TestDecoderStopsAfterDone(t *testing.T) {
	d := NewDecoder()
	events := collect(d, "data: [DONE]\n"+delta("late"))
	require.Len(t, events, 1)
	assert.True(t, events[0].Done)

	assert.Empty(t, d.Feed([]byte(delta("more"))))
}

func TestDecoderHandlesCRLF(t *testing.T) {
	d := NewDecoder()
	events := collect(d, "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\r\ndata: [DONE]\r\n")
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].Text)
	assert.True(t, events[1].Done)
}
