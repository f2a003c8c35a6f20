package walleterr_test

import (
	"testing"

	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/walleterr"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	_, ok := walleterr.KindOf(nil)
	require.False(t, ok)

	k, ok := walleterr.KindOf(walleterr.Conflict.New("InsufficientAssets", nil))
	require.True(t, ok)
	require.Equal(t, walleterr.KindConflict, k)

	// Uncoded errors are Fatal.
	k, _ = walleterr.KindOf(er.New("something odd"))
	require.Equal(t, walleterr.KindFatal, k)
}

func TestKindOfLooksThroughForeignCodes(t *testing.T) {
	other := er.NewErrorType("other").Code("ErrDisk")
	err := other.New("write failed", walleterr.Timeout.Default())
	require.True(t, walleterr.Is(err, walleterr.KindTimeout))
	require.Equal(t, "iris.Timeout", walleterr.Code(err))
}

func TestCodeAndUserText(t *testing.T) {
	require.Equal(t, "", walleterr.Code(nil))
	err := walleterr.Unauthorized.New("invalid_password", nil)
	require.Equal(t, "iris.Unauthorized", walleterr.Code(err))
	require.Equal(t, "invalid_password", walleterr.UserText(err))
	require.Equal(t, "node is unreachable", walleterr.UserText(walleterr.NodeUnreachable.Default()))
	require.Equal(t, "Fatal", walleterr.KindFatal.String())
}
