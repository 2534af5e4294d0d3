package store

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/internal/utils"
)

const (
	deviceStateDirPerm     = fs.FileMode(0o700)
	deviceStateFilePerm    = fs.FileMode(0o600)
	deviceStateOpenTimeout = 5 * time.Second
)

var (
	deviceBucket = []byte("device")
	deviceIDKey  = []byte("device_id")
	localKeyKey  = []byte("local_key")
)

type boltDeviceState struct {
	db       *bolt.DB
	keyChain crypto.KeyChainService
	uuids    *utils.UUIDGenerator

	mu sync.Mutex
}

// OpenDeviceState opens (or creates) the bbolt file at path. The local key
// is generated with keyChain the first time it is requested.
func OpenDeviceState(path string, keyChain crypto.KeyChainService) (DeviceState, error) {
	if err := os.MkdirAll(filepath.Dir(path), deviceStateDirPerm); err != nil {
		return nil, fmt.Errorf("%w: creating directory: %w", ErrDeviceState, err)
	}

	db, err := bolt.Open(path, deviceStateFilePerm, &bolt.Options{Timeout: deviceStateOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrDeviceState, path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(deviceBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: initializing: %w", ErrDeviceState, err)
	}

	return &boltDeviceState{db: db, keyChain: keyChain, uuids: utils.NewUUIDGenerator()}, nil
}

func (s *boltDeviceState) DeviceID() (string, error) {
	generate := func() ([]byte, error) {
		return []byte(s.uuids.Generate()), nil
	}

	id, err := s.getOrCreate(deviceIDKey, generate, func(v []byte) bool {
		return utils.IsValidUUID(strings.TrimSpace(string(v)))
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(id)), nil
}

func (s *boltDeviceState) LocalKey() ([]byte, error) {
	return s.getOrCreate(localKeyKey, s.keyChain.GenerateDEK, func(v []byte) bool { return len(v) == 32 })
}

// getOrCreate returns the stored value for key, replacing it when valid rejects it.
func (s *boltDeviceState) getOrCreate(key []byte, generate func() ([]byte, error), valid func([]byte) bool) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(deviceBucket).Get(key); len(v) > 0 && valid(v) {
			// bbolt values are only valid inside the transaction
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrDeviceState, key, err)
	}
	if value != nil {
		return value, nil
	}

	value, err = generate()
	if err != nil {
		return nil, fmt.Errorf("%w: generating %s: %w", ErrDeviceState, key, err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(deviceBucket).Put(key, value)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: writing %s: %w", ErrDeviceState, key, err)
	}

	return value, nil
}

func (s *boltDeviceState) Close() error {
	return s.db.Close()
}
