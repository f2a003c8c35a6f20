package shell_test

import (
	"testing"

	"github.com/pkt-cash/iriswallet/shell"
	"github.com/stretchr/testify/require"
)

func TestLoaderCount(t *testing.T) {
	var lc shell.LoaderCount
	require.False(t, lc.Visible())
	require.False(t, lc.Hide())

	require.True(t, lc.Show("Starting node"))
	require.False(t, lc.Show(""))
	require.Equal(t, "Starting node", lc.Text())
	require.False(t, lc.Show("Syncing"))
	require.Equal(t, "Syncing", lc.Text())
	require.Equal(t, 3, lc.Depth())

	require.False(t, lc.Hide())
	require.False(t, lc.Hide())
	require.True(t, lc.Visible())
	require.True(t, lc.Hide())
	require.False(t, lc.Visible())
	require.Equal(t, "", lc.Text())
}
