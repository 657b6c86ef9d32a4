//go:build !linux

package output

import (
	"errors"

	"modtap/tap"
)

func newFcitxSink(actions []tap.Action) (Sink, error) {
	return nil, errors.New("fcitx output driver requires linux")
}
