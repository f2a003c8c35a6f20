package settings_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/settings"
	"github.com/pkt-cash/iriswallet/util"
	"github.com/pkt-cash/iriswallet/walleterr"
	"github.com/stretchr/testify/require"
)

func TestSetGetPersist(t *testing.T) {
	dir := t.TempDir()
	s, err := settings.Open(dir)
	util.RequireNoErr(t, err)

	_, ok, err := settings.Get(s, settings.WalletKind)
	util.RequireNoErr(t, err)
	require.False(t, ok)

	util.RequireNoErr(t, settings.Set(s, settings.WalletKind, model.Embedded))
	util.RequireNoErr(t, settings.Set(s, settings.NetworkKey, model.Regtest))
	util.RequireNoErr(t, settings.Set(s, settings.BackupConfigured, true))
	util.RequireNoErr(t, settings.Set(s, settings.HiddenAssets, []string{"rgb:a"}))
	util.RequireNoErr(t, settings.Set(s, settings.LNEndpoint, "http://127.0.0.1:3001"))

	s2, err := settings.Open(dir)
	util.RequireNoErr(t, err)
	kind, ok, err := settings.Get(s2, settings.WalletKind)
	util.RequireNoErr(t, err)
	require.True(t, ok)
	require.Equal(t, model.Embedded, kind)
	require.Equal(t, model.Regtest, settings.GetOr(s2, settings.NetworkKey, model.Mainnet))
	require.Equal(t, []string{"rgb:a"}, settings.GetOr(s2, settings.HiddenAssets, nil))
	require.True(t, settings.GetOr(s2, settings.BackupConfigured, false))
	require.ElementsMatch(t, []string{"wallet_kind", "network", "backup_configured", "hidden_assets", "ln_endpoint"}, s2.Names())

	require.False(t, util.Exists(filepath.Join(dir, settings.FileName+".tmp")))
}

func TestValidation(t *testing.T) {
	s, err := settings.Open(t.TempDir())
	util.RequireNoErr(t, err)
	util.RequireCode(t, walleterr.InputInvalid, settings.Set(s, settings.NetworkKey, model.Network("signet")))
	util.RequireCode(t, walleterr.InputInvalid, settings.Set(s, settings.LNEndpoint, "not a url"))
	util.RequireCode(t, walleterr.InputInvalid, settings.Set(s, settings.FeeRate, 0))
	util.RequireCode(t, walleterr.InputInvalid, settings.Set(s, settings.FaucetURLs, []string{"nope"}))
	util.RequireNoErr(t, settings.Set(s, settings.FeeRate, 5))
	require.Equal(t, uint64(5), settings.GetOr(s, settings.FeeRate, 1))
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := settings.Open(dir)
	util.RequireNoErr(t, err)
	util.RequireNoErr(t, settings.Delete(s, settings.LastLNEndpoint))
	util.RequireNoErr(t, settings.Set(s, settings.LastLNEndpoint, "http://node:3001"))
	util.RequireNoErr(t, settings.Delete(s, settings.LastLNEndpoint))
	s2, err := settings.Open(dir)
	util.RequireNoErr(t, err)
	_, ok, err := settings.Get(s2, settings.LastLNEndpoint)
	util.RequireNoErr(t, err)
	require.False(t, ok)
}

func TestCorruptFileIsFatal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, settings.FileName), []byte("{not json"), 0600))
	_, err := settings.Open(dir)
	util.RequireCode(t, walleterr.Fatal, err)
}

func TestWrongTypeIsFatal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, settings.FileName), []byte(`{"backup_configured":"yes"}`), 0600))
	s, err := settings.Open(dir)
	util.RequireNoErr(t, err)
	_, _, err = settings.Get(s, settings.BackupConfigured)
	util.RequireCode(t, walleterr.Fatal, err)
	require.False(t, settings.GetOr(s, settings.BackupConfigured, false))
}

func TestConcurrentWriters(t *testing.T) {
	dir := t.TempDir()
	s, err := settings.Open(dir)
	util.RequireNoErr(t, err)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			util.RequireNoErr(t, settings.Set(s, settings.FeeRate, uint64(i+1)))
		}(i)
	}
	wg.Wait()
	s2, err := settings.Open(dir)
	util.RequireNoErr(t, err)
	require.Equal(t, settings.GetOr(s, settings.FeeRate, 0), settings.GetOr(s2, settings.FeeRate, 0))
}
