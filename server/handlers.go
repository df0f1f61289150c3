package server

import (
	"encoding/json"
	"net/http"

	"FrameLoom/cache"
	"FrameLoom/config"
	"FrameLoom/core/media"
	"FrameLoom/repository"
)

// APIHandler 处理所有API请求
type APIHandler struct {
	projectRepo repository.ProjectRepository
	mediaRepo   repository.MediaRepository
	prober      media.Prober
	projCache   *cache.ProjectCache
	cfg         *config.Config
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(
	projectRepo repository.ProjectRepository,
	mediaRepo repository.MediaRepository,
	prober media.Prober,
	projCache *cache.ProjectCache,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		projectRepo: projectRepo,
		mediaRepo:   mediaRepo,
		prober:      prober,
		projCache:   projCache,
		cfg:         cfg,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
