package kvstore

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dgraph-io/badger/options"

	"github.com/dgraph-io/badger"
)

const avatarTTL = time.Hour * 24

// Store caches fetched user avatars on disk so rendering a timecard does
// not hammer the CDN. Entries expire after a day; badger GC runs hourly.
type Store struct {
	db  *badger.DB
	log *zap.Logger
}

func NewStore(log *zap.Logger) (*Store, error) {
	s := &Store{
		log: log,
	}

	opts := badger.DefaultOptions("./data")
	opts.Truncate = true
	opts.ValueLogLoadingMode = options.FileIO
	opts.NumVersionsToKeep = 1
	db, err := badger.Open(opts)
	if err != nil {
		s.log.Info("error", zap.Error(err))
		return nil, err
	}
	s.db = db

	go func(s *Store) {
		gcTimer := time.NewTicker(time.Hour)
		for range gcTimer.C {
			err := s.db.RunValueLogGC(0.5)
			if err != nil {
				s.log.Error("failed to run gc", zap.Error(err))
			}
		}
	}(s)

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SetAvatar keys by user and avatar hash, so a changed avatar misses the
// cache and gets refetched.
func (s *Store) SetAvatar(userID, avatarID string, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		e := &badger.Entry{
			Key:       []byte(fmt.Sprintf("avatar:%v:%v", userID, avatarID)),
			Value:     data,
			ExpiresAt: uint64(time.Now().Add(avatarTTL).Unix()),
		}
		return txn.SetEntry(e)
	})
}

func (s *Store) GetAvatar(userID, avatarID string) ([]byte, error) {
	var body []byte
	if err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(fmt.Sprintf("avatar:%v:%v", userID, avatarID)))
		if err != nil {
			return err
		}
		body, err = item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return nil
	}); err != nil {
		if err != badger.ErrKeyNotFound {
			s.log.Error("failed to read avatar", zap.Error(err))
		}
		return nil, err
	}
	return body, nil
}

// FetchAvatar reads an avatar through the cache, going to the CDN only on
// a miss.
func (s *Store) FetchAvatar(userID, avatarID, url string) ([]byte, error) {
	if data, err := s.GetAvatar(userID, avatarID); err == nil {
		return data, nil
	}

	res, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %v fetching avatar", res.StatusCode)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if err := s.SetAvatar(userID, avatarID, data); err != nil {
		s.log.Error("failed to cache avatar", zap.Error(err))
	}
	return data, nil
}

func (s *Store) RunGC() error {
	return s.db.RunValueLogGC(0.5)
}
