package localmedia

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/meumosaico/backend/internal/platform/logger"
	"github.com/meumosaico/backend/internal/utils"
)

// PreviewStore owns the lifecycle of ephemeral preview images. Every
// key returned by Create is owned by the caller, who must Release it
// on every exit path: when the photo is removed, when its answer is
// replaced and when the session is cleared.
type PreviewStore interface {
	Create(ctx context.Context, raw []byte) (key string, err error)
	Release(key string) error
	URL(key string) string
	KeyFromURL(url string) string
}

type previewStore struct {
	log      *logger.Logger
	root     string
	baseURL  string
	maxEdge  int
	quality  int
}

func NewPreviewStore(log *logger.Logger) (PreviewStore, error) {
	storeLog := log.With("service", "PreviewStore")

	root := utils.GetEnv("PREVIEW_DIR", filepath.Join(os.TempDir(), "meumosaico-previews"), log)
	baseURL := utils.GetEnv("PREVIEW_BASE_URL", "/media/previews", log)
	maxEdge := utils.GetEnvAsInt("PREVIEW_MAX_EDGE", 480, log)

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create preview dir: %w", err)
	}

	return &previewStore{
		log:     storeLog,
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxEdge: maxEdge,
		quality: 85,
	}, nil
}

func (s *previewStore) Create(ctx context.Context, raw []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode preview source: %w", err)
	}

	thumb := imaging.Fit(img, s.maxEdge, s.maxEdge, imaging.Lanczos)

	key := uuid.New().String() + ".jpg"
	path := filepath.Join(s.root, key)
	if err := imaging.Save(thumb, path, imaging.JPEGQuality(s.quality)); err != nil {
		return "", fmt.Errorf("save preview: %w", err)
	}

	s.log.Debug("Preview created", "key", key)
	return key, nil
}

func (s *previewStore) Release(key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	// Keys are uuid-derived file names; reject anything path-like.
	if strings.ContainsAny(key, "/\\") {
		return fmt.Errorf("invalid preview key %q", key)
	}
	err := os.Remove(filepath.Join(s.root, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("release preview %s: %w", key, err)
	}
	s.log.Debug("Preview released", "key", key)
	return nil
}

func (s *previewStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.baseURL + "/" + key
}

func (s *previewStore) KeyFromURL(url string) string {
	if url == "" {
		return ""
	}
	return path.Base(url)
}
