// Package filestore abstracts the object store holding document bytes. The
// viewer core only ever reads; uploads belong to the owner-side CRUD surface.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/openvault/openvault/internal/config"
)

type Store interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

type Factory func(args json.RawMessage) (Store, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

func New(cfg config.FileStoreConfig) (Store, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Type))
	if key == "" {
		return nil, fmt.Errorf("file_store.type is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported file store type: %s", cfg.Type)
	}
	return factory(cfg.Data)
}

func decodeConfig(args json.RawMessage, dst interface{}) error {
	if len(args) == 0 {
		return fmt.Errorf("store config is required")
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return fmt.Errorf("decode store config: %w", err)
	}
	return nil
}
