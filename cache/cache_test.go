package cache_test

import (
	"testing"

	"github.com/pkt-cash/iriswallet/cache"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/util"
	"github.com/stretchr/testify/require"
)

func TestPutGetInvalidate(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.Open(dir)
	util.RequireNoErr(t, err)

	in := []model.AssetDescriptor{{AssetID: "rgb:a", Kind: model.RGB20, Ticker: "USDT", OnchainBalanceFuture: 10}}
	util.RequireNoErr(t, c.Put(cache.Assets, "rgb20", in))
	util.RequireNoErr(t, c.Put(cache.Channels, "all", []string{"c1"}))

	var out []model.AssetDescriptor
	ok, err := c.Get(cache.Assets, "rgb20", &out)
	util.RequireNoErr(t, err)
	require.True(t, ok)
	require.Equal(t, in, out)

	ok, err = c.Get(cache.Assets, "rgb25", &out)
	util.RequireNoErr(t, err)
	require.False(t, ok)

	util.RequireNoErr(t, c.Invalidate(cache.Assets))
	require.Equal(t, 0, c.Len(cache.Assets))
	require.Equal(t, 1, c.Len(cache.Channels))
	util.RequireNoErr(t, c.Close())

	c, err = cache.Open(dir)
	util.RequireNoErr(t, err)
	defer c.Close()
	var ch []string
	ok, err = c.Get(cache.Channels, "all", &ch)
	util.RequireNoErr(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"c1"}, ch)
}

func TestTypeMismatchIsAMiss(t *testing.T) {
	c, err := cache.Open(t.TempDir())
	util.RequireNoErr(t, err)
	defer c.Close()
	util.RequireNoErr(t, c.Put(cache.Transfers, "x", "a string"))
	var n int
	ok, err := c.Get(cache.Transfers, "x", &n)
	util.RequireNoErr(t, err)
	require.False(t, ok)
	require.Equal(t, 0, c.Len(cache.Transfers))
}

func TestUnknownKind(t *testing.T) {
	c, err := cache.Open(t.TempDir())
	util.RequireNoErr(t, err)
	defer c.Close()
	util.RequireCode(t, cache.ErrUnknownKind, c.Put(cache.Kind("peers"), "x", 1))
}
