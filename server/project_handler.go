package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"FrameLoom/logger"
	"FrameLoom/model"
	"FrameLoom/repository"

	"github.com/gorilla/mux"
)

// CreateProjectHandler creates an empty project with the configured
// editor defaults.
func (h *APIHandler) CreateProjectHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "a project name is required")
		return
	}

	res := model.Resolution{Width: h.cfg.OutputWidth, Height: h.cfg.OutputHeight}
	project, err := h.projectRepo.Create(r.Context(), req.Name, res, h.cfg.FrameRate)
	if err != nil {
		logger.Error("create project failed", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	if err := h.projCache.InvalidateProjectList(r.Context()); err != nil {
		logger.Warn("project list cache invalidation failed", logger.ErrorField(err))
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": project.ID, "name": project.Name})
}

// ListProjectsHandler returns project summaries, served from the redis
// cache when warm.
func (h *APIHandler) ListProjectsHandler(w http.ResponseWriter, r *http.Request) {
	if cached, err := h.projCache.GetProjectList(r.Context()); err == nil && cached != nil {
		writeJSON(w, http.StatusOK, cached)
		return
	} else if err != nil {
		logger.Warn("project list cache read failed", logger.ErrorField(err))
	}

	list, err := h.projectRepo.List(r.Context())
	if err != nil {
		logger.Error("list projects failed", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}

	if err := h.projCache.SetProjectList(r.Context(), list); err != nil {
		logger.Warn("project list cache write failed", logger.ErrorField(err))
	}
	writeJSON(w, http.StatusOK, list)
}

// GetProjectHandler returns the full project graph for loading into the
// editor core.
func (h *APIHandler) GetProjectHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	project, err := h.projectRepo.Get(r.Context(), id)
	if errors.Is(err, repository.ErrProjectNotFound) {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		logger.Error("load project failed", logger.String("projectId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to load project")
		return
	}

	// Media uploaded since the last save lives in the asset table only.
	if assets, err := h.mediaRepo.GetMediaByProjectID(id); err != nil {
		logger.Warn("media asset lookup failed", logger.String("projectId", id), logger.ErrorField(err))
	} else {
		known := make(map[string]bool, len(project.MediaFiles))
		for _, m := range project.MediaFiles {
			known[m.ID] = true
		}
		for _, m := range assets {
			if !known[m.ID] {
				project.MediaFiles = append(project.MediaFiles, m)
			}
		}
	}

	writeJSON(w, http.StatusOK, project)
}

// SaveProjectHandler persists a timeline snapshot.
func (h *APIHandler) SaveProjectHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Name       string             `json:"name"`
		Duration   int64              `json:"duration"`
		Tracks     []*model.Track     `json:"tracks"`
		Clips      []*model.Clip      `json:"clips"`
		MediaFiles []*model.MediaFile `json:"mediaFiles"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid project payload")
		return
	}

	snapshot := &model.Project{
		Duration:   req.Duration,
		Tracks:     req.Tracks,
		Clips:      req.Clips,
		MediaFiles: req.MediaFiles,
	}
	project, err := h.projectRepo.Save(r.Context(), id, req.Name, snapshot)
	if errors.Is(err, repository.ErrProjectNotFound) {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		logger.Error("save project failed", logger.String("projectId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to save project")
		return
	}

	if err := h.projCache.InvalidateProjectList(r.Context()); err != nil {
		logger.Warn("project list cache invalidation failed", logger.ErrorField(err))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": project.ID, "updatedAt": project.UpdatedAt})
}

// DeleteProjectHandler removes a project and its media asset records.
func (h *APIHandler) DeleteProjectHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := h.projectRepo.Delete(r.Context(), id)
	if errors.Is(err, repository.ErrProjectNotFound) {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		logger.Error("delete project failed", logger.String("projectId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to delete project")
		return
	}

	if err := h.mediaRepo.DeleteMediaByProjectID(id); err != nil {
		logger.Warn("media record cleanup failed", logger.String("projectId", id), logger.ErrorField(err))
	}
	if err := h.projCache.InvalidateProjectList(r.Context()); err != nil {
		logger.Warn("project list cache invalidation failed", logger.ErrorField(err))
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "project deleted", "id": id})
}
