// Package cache keeps the last answer of the slow list calls (assets,
// transfers, channels) in <data_dir>/cache.db so pages can render something
// before the node replies.
package cache

import (
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/walleterr"
	bolt "go.etcd.io/bbolt"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const FileName = "cache.db"

type Kind string

const (
	Assets    Kind = "assets"
	Transfers Kind = "transfers"
	Channels  Kind = "channels"
)

var Kinds = []Kind{Assets, Transfers, Channels}

var Err = er.NewErrorType("iris.cache")

var ErrUnknownKind = Err.CodeWithDetail("ErrUnknownKind", "no such cache bucket")

type entry struct {
	At   time.Time           `json:"at"`
	Data jsoniter.RawMessage `json:"data"`
}

type Cache struct {
	db  *bolt.DB
	now func() time.Time
}

// Open opens or creates the cache database of dataDir.
func Open(dataDir string) (*Cache, er.R) {
	path := filepath.Join(dataDir, FileName)
	db, errr := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if errr != nil {
		return nil, walleterr.Fatal.New("opening cache ["+path+"]", er.E(errr))
	}
	errr = db.Update(func(tx *bolt.Tx) error {
		for _, k := range Kinds {
			if _, errr := tx.CreateBucketIfNotExists([]byte(k)); errr != nil {
				return errr
			}
		}
		return nil
	})
	if errr != nil {
		db.Close()
		return nil, walleterr.Fatal.New("creating cache buckets", er.E(errr))
	}
	return &Cache{db: db, now: time.Now}, nil
}

func known(kind Kind) er.R {
	for _, k := range Kinds {
		if k == kind {
			return nil
		}
	}
	return ErrUnknownKind.New(string(kind), nil)
}

// Put stores v under key, replacing whatever was there.
func (c *Cache) Put(kind Kind, key string, v interface{}) er.R {
	if err := known(kind); err != nil {
		return err
	}
	data, errr := json.Marshal(v)
	if errr != nil {
		return er.E(errr)
	}
	b, errr := json.Marshal(entry{At: c.now(), Data: data})
	if errr != nil {
		return er.E(errr)
	}
	return er.E(c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(kind)).Put([]byte(key), b)
	}))
}

// Get decodes the value under key into v. A value which no longer decodes is
// dropped and reported as missing.
func (c *Cache) Get(kind Kind, key string, v interface{}) (bool, er.R) {
	_, ok, err := c.GetAt(kind, key, v)
	return ok, err
}

// GetAt is Get plus the time the value was stored.
func (c *Cache) GetAt(kind Kind, key string, v interface{}) (time.Time, bool, er.R) {
	if err := known(kind); err != nil {
		return time.Time{}, false, err
	}
	var raw []byte
	errr := c.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket([]byte(kind)).Get([]byte(key)); b != nil {
			raw = append([]byte(nil), b...)
		}
		return nil
	})
	if errr != nil {
		return time.Time{}, false, er.E(errr)
	}
	if raw == nil {
		return time.Time{}, false, nil
	}
	var e entry
	if errr := json.Unmarshal(raw, &e); errr == nil {
		if errr = json.Unmarshal(e.Data, v); errr == nil {
			return e.At, true, nil
		}
	}
	log.Warnf("Dropping unreadable cache entry [%s/%s]", kind, key)
	return time.Time{}, false, c.Delete(kind, key)
}

func (c *Cache) Delete(kind Kind, key string) er.R {
	if err := known(kind); err != nil {
		return err
	}
	return er.E(c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(kind)).Delete([]byte(key))
	}))
}

// Invalidate empties one bucket.
func (c *Cache) Invalidate(kind Kind) er.R {
	if err := known(kind); err != nil {
		return err
	}
	return er.E(c.db.Update(func(tx *bolt.Tx) error {
		if errr := tx.DeleteBucket([]byte(kind)); errr != nil && errr != bolt.ErrBucketNotFound {
			return errr
		}
		_, errr := tx.CreateBucket([]byte(kind))
		return errr
	}))
}

// Len counts the entries of one bucket.
func (c *Cache) Len(kind Kind) int {
	n := 0
	c.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket([]byte(kind)); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n
}

func (c *Cache) Close() er.R {
	return er.E(c.db.Close())
}
