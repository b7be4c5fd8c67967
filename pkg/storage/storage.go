package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"winenow.app/WineNowNote/configs"
)

// Store is the blob storage a photo upload delegates to. Implementations
// return a public URL for the stored object; deletion of blobs is out of
// scope, orphaned objects are left behind.
type Store interface {
	Put(ctx context.Context, key string, content io.Reader) (string, error)
}

// NoteKey builds the namespaced key for a tasting note photo. The
// extension is taken from the uploaded filename, defaulting to .jpg.
func NoteKey(userID uint, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}

	return fmt.Sprintf("tasting_notes/%d/%s%s", userID, uuid.New().String(), ext)
}

// LocalStore keeps blobs on the local filesystem under a media directory
// and serves them from a configured base URL.
type LocalStore struct {
	mediaDir string
	baseURL  string
	logger   *zap.Logger
}

func NewLocalStore(conf *configs.Config, logger *zap.Logger) *LocalStore {
	return &LocalStore{
		mediaDir: conf.Storage.MediaDir,
		baseURL:  strings.TrimRight(conf.Storage.BaseURL, "/"),
		logger:   logger,
	}
}

func (s *LocalStore) Put(_ context.Context, key string, content io.Reader) (string, error) {
	target := filepath.Join(s.mediaDir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}

	file, err := os.Create(target)
	if err != nil {
		return "", err
	}

	_, err = io.Copy(file, content)
	err = multierr.Append(err, file.Close())

	if err != nil {
		s.logger.Error("failed to store blob", zap.String("key", key), zap.Error(err))

		return "", err
	}

	return s.baseURL + "/" + path.Clean(key), nil
}
