package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type localConfig struct {
	Dir string `json:"dir"`
}

type localStore struct {
	dir string
}

func init() {
	Register("local", createLocalStore)
}

func createLocalStore(args json.RawMessage) (Store, error) {
	config := &localConfig{}
	if err := decodeConfig(args, config); err != nil {
		return nil, err
	}
	if config.Dir == "" {
		return nil, fmt.Errorf("local store dir is required")
	}
	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return nil, err
	}
	return &localStore{dir: config.Dir}, nil
}

func (s *localStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	cleaned := filepath.Clean("/" + key)
	full := filepath.Join(s.dir, cleaned)
	if !strings.HasPrefix(full, filepath.Clean(s.dir)+string(os.PathSeparator)) {
		return nil, fmt.Errorf("invalid object key: %s", key)
	}
	return os.Open(full)
}
