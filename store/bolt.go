package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"lyricsync-go/logcolors"
	"lyricsync-go/utils"
)

const bucketName = "lyrics"

// BoltStore persists entries in a bbolt file and mirrors them in a sync.Map
// so reads never touch disk. Values are optionally gzip-compressed at rest.
type BoltStore struct {
	db                 *bolt.DB
	memCache           sync.Map
	dbPath             string
	compressionEnabled bool
}

// NewBoltStore opens (or creates) the database at dbPath and preloads every
// entry into the in-memory mirror.
func NewBoltStore(dbPath string, compressionEnabled bool) (*BoltStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %v", err)
	}

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open store database: %v", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create store bucket: %v", err)
	}

	s := &BoltStore{
		db:                 db,
		dbPath:             dbPath,
		compressionEnabled: compressionEnabled,
	}

	if err := s.loadToMemory(); err != nil {
		log.Warnf("%s Failed to preload store to memory: %v", logcolors.LogCache, err)
	}

	log.Infof("%s Persistent store initialized at %s (compression: %v)",
		logcolors.LogCacheInit, dbPath, compressionEnabled)
	return s, nil
}

func (s *BoltStore) loadToMemory() error {
	count := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			s.memCache.Store(string(k), string(v))
			count++
			return nil
		})
	})
	if err != nil {
		return err
	}

	log.Infof("%s Loaded %d entries from disk to memory", logcolors.LogCacheInit, count)
	return nil
}

// Set stores a value in both the memory mirror and on disk.
func (s *BoltStore) Set(key, value string) error {
	stored := value
	if s.compressionEnabled {
		compressed, err := utils.CompressString(value)
		if err != nil {
			log.Errorf("%s Error compressing value for key %s: %v", logcolors.LogCache, key, err)
			return err
		}
		stored = compressed
	}

	s.memCache.Store(key, stored)

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Put([]byte(key), []byte(stored))
	})
}

// Get retrieves a value from the memory mirror, falling back to disk.
func (s *BoltStore) Get(key string) (string, bool) {
	if v, ok := s.memCache.Load(key); ok {
		return s.decode(key, v.(string))
	}

	var stored string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		data := b.Get([]byte(key))
		if data == nil {
			return fmt.Errorf("key not found")
		}
		stored = string(data)
		return nil
	})
	if err != nil {
		return "", false
	}

	s.memCache.Store(key, stored)
	return s.decode(key, stored)
}

func (s *BoltStore) decode(key, stored string) (string, bool) {
	if !s.compressionEnabled {
		return stored, true
	}
	decompressed, err := utils.DecompressString(stored)
	if err != nil {
		log.Errorf("%s Error decompressing value for key %s: %v", logcolors.LogCache, key, err)
		return "", false
	}
	return decompressed, true
}

// List returns every key in the store.
func (s *BoltStore) List() ([]string, error) {
	keys := []string{}
	s.memCache.Range(func(k, _ interface{}) bool {
		keys = append(keys, k.(string))
		return true
	})
	return keys, nil
}

// Clear removes one key, or everything when key is empty.
func (s *BoltStore) Clear(key string) error {
	if key == "" {
		s.memCache.Range(func(k, _ interface{}) bool {
			s.memCache.Delete(k)
			return true
		})
		return s.db.Update(func(tx *bolt.Tx) error {
			if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
				return err
			}
			_, err := tx.CreateBucket([]byte(bucketName))
			return err
		})
	}

	s.memCache.Delete(key)
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Delete([]byte(key))
	})
}

// Stats returns the number of keys and their approximate size in KB.
func (s *BoltStore) Stats() (numKeys int, sizeInKB int) {
	s.memCache.Range(func(k, v interface{}) bool {
		numKeys++
		sizeInKB += len(k.(string)) + len(v.(string))
		return true
	})
	sizeInKB = sizeInKB / 1024
	return
}

// Close closes the database connection
func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
