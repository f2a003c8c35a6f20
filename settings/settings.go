// Package settings is the persistent key/value state of the wallet, kept in
// <data_dir>/settings.json.
//
// Every write rewrites the whole file through a temporary file and a rename,
// so a crash leaves either the old or the new state on disk.
package settings

import (
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/lock"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/walleterr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const FileName = "settings.json"

// Key names a setting and fixes the type of its value. Tag is a validator
// tag applied to every value written.
type Key[T any] struct {
	Name string
	Tag  string
}

var (
	WalletKind       = Key[model.WalletKind]{Name: "wallet_kind", Tag: "oneof=embedded remote"}
	NetworkKey       = Key[model.Network]{Name: "network", Tag: "oneof=mainnet testnet regtest"}
	LNEndpoint       = Key[string]{Name: "ln_endpoint", Tag: "required,url"}
	NodeDataDir      = Key[string]{Name: "node_data_dir", Tag: "required"}
	BackupConfigured = Key[bool]{Name: "backup_configured"}
	LastLNEndpoint   = Key[string]{Name: "last_ln_endpoint", Tag: "omitempty,url"}
	TermsAccepted    = Key[bool]{Name: "terms_accepted"}
	FeeRate          = Key[uint64]{Name: "fee_rate", Tag: "gte=1,lte=1000"}
	HiddenAssets     = Key[[]string]{Name: "hidden_assets", Tag: "dive,required"}
	FaucetURLs       = Key[[]string]{Name: "faucet_urls", Tag: "dive,url"}
)

type Store struct {
	path  string
	check *validator.Validate
	m     lock.GenMutex[map[string]jsoniter.RawMessage]
}

// Open loads the settings of dataDir, a missing file is an empty store and
// an unreadable one is Fatal.
func Open(dataDir string) (*Store, er.R) {
	if errr := os.MkdirAll(dataDir, 0700); errr != nil {
		return nil, walleterr.Fatal.New("settings directory is not writable", er.E(errr))
	}
	path := filepath.Join(dataDir, FileName)
	values := make(map[string]jsoniter.RawMessage)
	b, errr := os.ReadFile(path)
	switch {
	case os.IsNotExist(errr):
		log.Debugf("No settings at [%s], starting empty", path)
	case errr != nil:
		return nil, walleterr.Fatal.New("reading settings", er.E(errr))
	default:
		if errr := json.Unmarshal(b, &values); errr != nil {
			return nil, walleterr.Fatal.New("settings file ["+path+"] is corrupt", er.E(errr))
		}
	}
	return &Store{
		path:  path,
		check: validator.New(),
		m:     lock.NewGenMutex(values, "settings"),
	}, nil
}

func (s *Store) Path() string {
	return s.path
}

// Get returns the value of k and whether it was set.
func Get[T any](s *Store, k Key[T]) (T, bool, er.R) {
	var out T
	var found bool
	err := s.m.In(func(values *map[string]jsoniter.RawMessage) er.R {
		raw, ok := (*values)[k.Name]
		if !ok {
			return nil
		}
		if errr := json.Unmarshal(raw, &out); errr != nil {
			return walleterr.Fatal.New("setting ["+k.Name+"] has the wrong type", er.E(errr))
		}
		found = true
		return nil
	})
	return out, found, err
}

// GetOr returns the value of k, or def when it is unset or unreadable.
func GetOr[T any](s *Store, k Key[T], def T) T {
	v, ok, err := Get(s, k)
	if err != nil {
		log.Warnf("Reading setting [%s]: %s", k.Name, err.Message())
		return def
	}
	if !ok {
		return def
	}
	return v
}

// Set validates v and persists it before returning.
func Set[T any](s *Store, k Key[T], v T) er.R {
	if k.Tag != "" {
		if errr := s.check.Var(v, k.Tag); errr != nil {
			return walleterr.InputInvalid.New("setting ["+k.Name+"] rejected: "+errr.Error(), nil)
		}
	}
	raw, errr := json.Marshal(v)
	if errr != nil {
		return walleterr.Fatal.New("encoding setting ["+k.Name+"]", er.E(errr))
	}
	return s.m.In(func(values *map[string]jsoniter.RawMessage) er.R {
		next := clone(*values)
		next[k.Name] = raw
		if err := writeAtomic(s.path, next); err != nil {
			return err
		}
		*values = next
		return nil
	})
}

// Delete removes k, deleting an unset key is not an error.
func Delete[T any](s *Store, k Key[T]) er.R {
	return s.m.In(func(values *map[string]jsoniter.RawMessage) er.R {
		if _, ok := (*values)[k.Name]; !ok {
			return nil
		}
		next := clone(*values)
		delete(next, k.Name)
		if err := writeAtomic(s.path, next); err != nil {
			return err
		}
		*values = next
		return nil
	})
}

// Names lists the keys which are set.
func (s *Store) Names() []string {
	var out []string
	s.m.In(func(values *map[string]jsoniter.RawMessage) er.R {
		for k := range *values {
			out = append(out, k)
		}
		return nil
	})
	return out
}

func clone(m map[string]jsoniter.RawMessage) map[string]jsoniter.RawMessage {
	out := make(map[string]jsoniter.RawMessage, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func writeAtomic(path string, values map[string]jsoniter.RawMessage) er.R {
	b, errr := json.MarshalIndent(values, "", "  ")
	if errr != nil {
		return walleterr.Fatal.New("encoding settings", er.E(errr))
	}
	tmp := path + ".tmp"
	f, errr := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if errr != nil {
		return walleterr.Fatal.New("writing settings", er.E(errr))
	}
	if _, errr := f.Write(b); errr != nil {
		f.Close()
		os.Remove(tmp)
		return walleterr.Fatal.New("writing settings", er.E(errr))
	}
	if errr := f.Sync(); errr != nil {
		f.Close()
		os.Remove(tmp)
		return walleterr.Fatal.New("syncing settings", er.E(errr))
	}
	if errr := f.Close(); errr != nil {
		os.Remove(tmp)
		return walleterr.Fatal.New("closing settings", er.E(errr))
	}
	if errr := os.Rename(tmp, path); errr != nil {
		os.Remove(tmp)
		return walleterr.Fatal.New("replacing settings", er.E(errr))
	}
	syncDir(filepath.Dir(path))
	return nil
}

func syncDir(dir string) {
	d, errr := os.Open(dir)
	if errr != nil {
		return
	}
	_ = d.Sync()
	d.Close()
}
