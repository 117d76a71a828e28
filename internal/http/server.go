package http

import (
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// Server owns the engine plus the filesystem prerequisite of the
// preview static route: the preview directory must exist before gin
// serves it.
type Server struct {
	Engine *gin.Engine
}

func NewServer(cfg RouterConfig) (*Server, error) {
	if cfg.PreviewDir != "" {
		if err := os.MkdirAll(cfg.PreviewDir, 0o755); err != nil {
			return nil, fmt.Errorf("create preview dir %s: %w", cfg.PreviewDir, err)
		}
	}
	return &Server{Engine: NewRouter(cfg)}, nil
}

// Run starts listening, falling back to :8080 when no usable address
// was configured.
func (s *Server) Run(address string) error {
	if strings.TrimSpace(strings.TrimPrefix(address, ":")) == "" {
		address = ":8080"
	}
	return s.Engine.Run(address)
}
