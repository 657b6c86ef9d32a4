//go:build linux

package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modtap/tap"
)

func TestFcitxMethods(t *testing.T) {
	m, err := fcitxMethod(tap.ActionEisu)
	require.NoError(t, err)
	assert.Equal(t, "org.fcitx.Fcitx.Controller1.Deactivate", m)

	m, err = fcitxMethod(tap.ActionKana)
	require.NoError(t, err)
	assert.Equal(t, "org.fcitx.Fcitx.Controller1.Activate", m)

	_, err = fcitxMethod(tap.Action("key:94"))
	assert.Error(t, err)
}
