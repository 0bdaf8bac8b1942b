package accesskeys

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

const (
	EnvRCPath  = "SERVERLESSRC_PATH"
	rcFileName = ".serverlessrc"
)

var _ Provider = &FileProvider{}

// FileProvider reads access keys stored by the framework after `serverless login`.
type FileProvider struct {
	Path string
}

type rcFile struct {
	UserID string            `json:"userId"`
	Users  map[string]rcUser `json:"users"`
}

type rcUser struct {
	Dashboard struct {
		AccessKeys map[string]string `json:"accessKeys"`
	} `json:"dashboard"`
}

// DefaultRCPath returns SERVERLESSRC_PATH if set, otherwise ~/.serverlessrc.
func DefaultRCPath() string {
	if path, ok := os.LookupEnv(EnvRCPath); ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return rcFileName
	}
	return filepath.Join(home, rcFileName)
}

func NewFileProvider() *FileProvider {
	return &FileProvider{
		Path: DefaultRCPath(),
	}
}

func (f *FileProvider) AccessKeyForTenant(_ context.Context, tenant string) (string, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debugf("No serverless rc file at %s", f.Path)
		return "", ErrNoAccessKey
	} else if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Path, err)
	}

	rc := &rcFile{}
	err = json.Unmarshal(data, rc)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", f.Path, err)
	}

	user, ok := rc.Users[rc.UserID]
	if !ok {
		return "", ErrNoAccessKey
	}

	key := user.Dashboard.AccessKeys[tenant]
	if len(key) == 0 {
		return "", ErrNoAccessKey
	}

	return key, nil
}
