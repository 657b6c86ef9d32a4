package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modtap/tap"
)

func TestLookupNamedActions(t *testing.T) {
	for _, a := range []tap.Action{tap.ActionEisu, tap.ActionKana} {
		code, err := LookupAction(a)
		require.NoError(t, err, "action %s", a)
		assert.Positive(t, code, "action %s", a)
	}
}

func TestLookupRawKeyAction(t *testing.T) {
	code, err := LookupAction(tap.Action("key:93"))
	require.NoError(t, err)
	assert.Equal(t, 93, code)
}

func TestLookupRejectsBadActions(t *testing.T) {
	for _, a := range []tap.Action{"", "katakana", "key:", "key:abc", "key:-2", "key:0"} {
		_, err := LookupAction(a)
		assert.Error(t, err, "action %q", a)
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New("telepathy", []tap.Action{tap.ActionEisu})
	assert.Error(t, err)
}

func recordingKeySink(codes *[]int) *keySink {
	return &keySink{
		press: func(code int) error {
			*codes = append(*codes, code)
			return nil
		},
		queue:   make(chan int, 8),
		done:    make(chan struct{}),
		drained: make(chan struct{}),
	}
}

func TestKeySinkDrainsQueueOnClose(t *testing.T) {
	var codes []int
	s := recordingKeySink(&codes)

	// Enqueue before the sender even runs, so Close races ahead of
	// delivery; everything accepted must still be injected.
	s.Emit(tap.ActionEisu)
	s.Emit(tap.ActionKana)
	s.Emit(tap.Action("key:93"))
	go s.send()
	require.NoError(t, s.Close())

	want := []int{actionKeys[tap.ActionEisu], actionKeys[tap.ActionKana], 93}
	assert.Equal(t, want, codes)
}

func TestKeySinkEmitAfterCloseIsDropped(t *testing.T) {
	var codes []int
	s := recordingKeySink(&codes)
	go s.send()
	require.NoError(t, s.Close())

	s.Emit(tap.ActionEisu)
	assert.Empty(t, codes)
}
