package dbglog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Default_Lifecycle(t *testing.T) {
	require.Nil(t, Default())
	assert.ErrorIs(t, Teardown(), ErrNoDefault)

	require.NoError(t, Init(DEFAULT_LOG_MASK))
	first := Default()
	require.NotNil(t, first)
	assert.Equal(t, DEFAULT_LOG_MASK, first.Mask())
	assert.ErrorIs(t, Init(MASK_ALL), ErrDefaultInUse)
	assert.Same(t, first, Default(), "failed Init replaced the default")

	other, _, _ := newTestLogger(t, MASK_ALL)
	assert.ErrorIs(t, Install(other), ErrDefaultInUse)

	require.NoError(t, Teardown())
	assert.Nil(t, Default())
	require.NoError(t, Install(other))
	assert.Same(t, other, Default())
	require.NoError(t, Teardown())
}

func Test_Default_NoInstance(t *testing.T) {
	require.Nil(t, Default())
	var guard OnceGuard
	assert.NotPanics(t, func() { SetMask(MASK_ALL) })
	assert.ErrorIs(t, SetMaskString("I1"), ErrNoDefault)
	assert.False(t, Check(LVL_FATAL))
	assert.False(t, CheckOnce(LVL_FATAL, &guard))
	assert.False(t, Log(LVL_FATAL, "lost", testLoc))
	assert.False(t, LogOnce(&guard, LVL_FATAL, "lost", testLoc))
	assert.False(t, Logf(LVL_FATAL, "lost %d", 1))

	err := Fail(LVL_ERR1, "no logger %s", "here")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "no logger here @{default_test.go:Test_Default_NoInstance():"), err.Error())
}

func Test_Default_Helpers(t *testing.T) {
	l, out, _ := newTestLogger(t, MASK_NONE)
	require.NoError(t, Install(l))
	defer Teardown()

	SetMask(Mask(LVL_INFO1))
	assert.Equal(t, Mask(LVL_INFO1), l.Mask())
	require.NoError(t, SetMaskString("W1E1"))
	assert.Equal(t, "W1E1", l.MaskString())

	assert.True(t, Check(LVL_ERR1))
	assert.False(t, Check(LVL_INFO1))

	var guard OnceGuard
	assert.True(t, LogOnce(&guard, LVL_WARN1, "once", testLoc))
	assert.False(t, LogOnce(&guard, LVL_WARN1, "once", testLoc))
	assert.True(t, Log(LVL_ERR1, "plain", testLoc))
	assert.True(t, Logf(LVL_ERR1, "formatted %d", 2))
	assert.False(t, Logf(LVL_INFO1, "masked"))
	err := Fail(LVL_ERR1, "failed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed @{default_test.go:Test_Default_Helpers():")

	lines := out.Lines()
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], " W1: once {main.go:run():42}")
	assert.Contains(t, lines[1], " E1: plain {main.go:run():42}")
	assert.Contains(t, lines[2], " E1: formatted 2 {default_test.go:Test_Default_Helpers():")
	assert.Contains(t, lines[3], " E1: failed {default_test.go:Test_Default_Helpers():")
}
