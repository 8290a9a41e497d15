package cart

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	redis "github.com/redis/go-redis/v9"

	"apexpos/backend/internal/domain"
)

// StorageKey is the namespace the terminal state is saved under.
const StorageKey = "apex-pos-storage"

// State is what survives a terminal restart.
type State struct {
	Cart            Cart                `json:"cart"`
	User            *domain.SessionUser `json:"user"`
	IsAuthenticated bool                `json:"isAuthenticated"`
	Token           string              `json:"token,omitempty"`
	ExpiresAt       string              `json:"expiresAt,omitempty"`
}

type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Load reads the saved state. A missing key yields an empty state.
func Load(ctx context.Context, s Storage) (State, error) {
	raw, ok, err := s.Get(ctx, StorageKey)
	if err != nil || !ok {
		return State{}, err
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, errors.Wrap(err, "decode terminal state")
	}
	return state, nil
}

func Save(ctx context.Context, s Storage, state State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "encode terminal state")
	}
	return s.Set(ctx, StorageKey, payload)
}

// FileStorage keeps one JSON file per key in a directory.
type FileStorage struct {
	dir string
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "create storage dir")
	}
	return &FileStorage{dir: dir}, nil
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileStorage) Get(_ context.Context, key string) ([]byte, bool, error) {
	raw, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "read %s", key)
	}
	return raw, true, nil
}

// Set replaces the file through a rename so a crash never leaves half a
// state behind.
func (f *FileStorage) Set(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "write %s", key)
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "write %s", key)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "write %s", key)
	}
	return errors.Wrapf(os.Rename(tmp.Name(), f.path(key)), "write %s", key)
}

// RedisStorage shares terminal state through redis, so a till can pick up
// where another left off.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStorage(addr string, password string, db int, ttl time.Duration) *RedisStorage {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisStorage{client: client, ttl: ttl}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}

func (r *RedisStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *RedisStorage) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}
