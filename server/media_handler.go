package server

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"FrameLoom/logger"
	"FrameLoom/model"
	"FrameLoom/storage"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxUploadSize = 2 << 30 // 2GB

// UploadMediaHandler accepts a media file, probes its metadata and stores
// the bytes in object storage. The returned descriptor is what the
// timeline core imports.
func (h *APIHandler) UploadMediaHandler(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	mediaID := uuid.NewString()

	// ffprobe needs a path, so the upload goes through local scratch first.
	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		logger.Error("failed to create upload dir", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}
	ext := filepath.Ext(header.Filename)
	scratchPath := filepath.Join(h.cfg.UploadDir, mediaID+ext)
	scratch, err := os.Create(scratchPath)
	if err != nil {
		logger.Error("failed to create scratch file", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}
	size, err := io.Copy(scratch, file)
	scratch.Close()
	defer os.Remove(scratchPath)
	if err != nil {
		logger.Error("failed to buffer upload", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	probe, err := h.prober.Probe(r.Context(), scratchPath)
	if err != nil {
		logger.Warn("media probe rejected upload",
			logger.String("filename", header.Filename), logger.ErrorField(err))
		writeError(w, http.StatusUnprocessableEntity, "file is not decodable media")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}

	objectName := fmt.Sprintf("%s/%s%s", projectID, mediaID, ext)
	reader, err := os.Open(scratchPath)
	if err != nil {
		logger.Error("failed to reopen scratch file", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}
	defer reader.Close()

	url, err := storage.UploadObject(r.Context(), h.cfg, objectName, contentType, reader, size)
	if err != nil {
		logger.Error("object storage upload failed",
			logger.String("object", objectName), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	mf := &model.MediaFile{
		ID:       mediaID,
		Name:     header.Filename,
		Type:     probe.Type,
		MimeType: contentType,
		Size:     size,
		Duration: probe.DurationMs,
		Width:    probe.Width,
		Height:   probe.Height,
		URL:      url,
	}
	if err := h.mediaRepo.CreateMedia(projectID, mf); err != nil {
		logger.Error("failed to persist media record",
			logger.String("mediaId", mediaID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	logger.Info("media uploaded",
		logger.String("projectId", projectID),
		logger.String("mediaId", mediaID),
		logger.String("type", string(mf.Type)),
		logger.Int64("size", size))
	writeJSON(w, http.StatusCreated, mf)
}

// ListMediaHandler returns the media asset records of a project.
func (h *APIHandler) ListMediaHandler(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]
	assets, err := h.mediaRepo.GetMediaByProjectID(projectID)
	if err != nil {
		logger.Error("media listing failed",
			logger.String("projectId", projectID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to list media")
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

// DeleteMediaHandler removes one media asset record. Clips referencing the
// asset are the editor core's concern; the HTTP layer only drops the record.
func (h *APIHandler) DeleteMediaHandler(w http.ResponseWriter, r *http.Request) {
	mediaID := mux.Vars(r)["mediaId"]

	existing, err := h.mediaRepo.GetMediaByID(mediaID)
	if err != nil {
		logger.Error("media lookup failed", logger.String("mediaId", mediaID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to delete media")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "media not found")
		return
	}

	if err := h.mediaRepo.DeleteMedia(mediaID); err != nil {
		logger.Error("media delete failed", logger.String("mediaId", mediaID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to delete media")
		return
	}

	if name := objectNameFromURL(existing.URL); name != "" {
		if err := storage.RemoveObject(r.Context(), h.cfg, name); err != nil {
			logger.Warn("object storage cleanup failed",
				logger.String("object", name), logger.ErrorField(err))
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "media deleted", "id": mediaID})
}

// objectNameFromURL recovers the storage object name from a served media
// URL. Returns "" for URLs that do not point at object storage.
func objectNameFromURL(url string) string {
	if !strings.HasPrefix(url, "/media/") {
		return ""
	}
	return strings.TrimPrefix(url, "/media/")
}
