package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/meumosaico/backend/internal/platform/logger"
	"github.com/meumosaico/backend/internal/utils"
)

type Config struct {
	Port           string
	AllowedOrigins []string

	PreviewDir   string
	PreviewRoute string

	Denylist       []string
	MaxUploadBytes int64
}

func LoadConfig(log *logger.Logger) Config {
	port := utils.GetEnv("PORT", "8080", log)
	origins := splitCSV(utils.GetEnv("ALLOWED_ORIGINS", "", log))
	previewDir := utils.GetEnv("PREVIEW_DIR", filepath.Join(os.TempDir(), "meumosaico-previews"), log)
	previewRoute := utils.GetEnv("PREVIEW_BASE_URL", "/media/previews", log)
	denylist := splitCSV(utils.GetEnv("CONTENT_DENYLIST", "", log))
	maxUploadKB := utils.GetEnvAsInt("MAX_UPLOAD_KB", 10240, log)

	return Config{
		Port:           port,
		AllowedOrigins: origins,
		PreviewDir:     previewDir,
		PreviewRoute:   previewRoute,
		Denylist:       denylist,
		MaxUploadBytes: int64(maxUploadKB) * 1024,
	}
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
