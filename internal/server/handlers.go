package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/hyperjump/metamuse/internal/config"
	"github.com/hyperjump/metamuse/internal/extract"
	"go.uber.org/zap"
)

const defaultMaxUploadSize = 32 << 20

type textRequest struct {
	Text *string `json:"text"`
}

func (s *Server) maxUploadSize() int64 {
	if s.config != nil && s.config.MaxUploadSize > 0 {
		return s.config.MaxUploadSize
	}
	return defaultMaxUploadSize
}

// handleMetadata accepts either a multipart upload in the "file" field or a
// JSON body {"text": "..."} and responds with the inferred record.
func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize())

	var text string
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		var ok bool
		if text, ok = s.extractUpload(w, r); !ok {
			return
		}
	} else {
		var req textRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			if isTooLarge(err) {
				s.respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Text == nil {
			s.respondError(w, http.StatusBadRequest, "text or file is required")
			return
		}
		text = *req.Text
	}

	rec := s.generator.Generate(r.Context(), text)
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) extractUpload(w http.ResponseWriter, r *http.Request) (string, bool) {
	file, header, err := r.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return "", false
		}
		s.respondError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return "", false
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read upload")
		return "", false
	}
	ext := filepath.Ext(header.Filename)
	s.logger.Debug("metadata upload", zap.String("filename", header.Filename), zap.Int("bytes", len(content)))

	text, err := s.extractor.ExtractBytes(r.Context(), content, ext)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, extract.ErrUnsupportedFormat) {
			status = http.StatusUnsupportedMediaType
		}
		s.logger.Debug("upload extraction failed", zap.String("filename", header.Filename), zap.Error(err))
		s.respondError(w, status, err.Error())
		return "", false
	}
	return text, true
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	dirs := s.watch.Directories()
	if dirs == nil {
		dirs = []string{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"directories": dirs})
}

type watchAddRequest struct {
	Path string `json:"path"`
	Sync *bool  `json:"sync,omitempty"`
}

func (s *Server) handleWatchDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	var req watchAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "directory not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !info.IsDir() {
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	processExisting := true
	if req.Sync != nil {
		processExisting = *req.Sync
	}
	s.logger.Debug("watch add directory request", zap.String("path", abs), zap.Bool("process_existing", processExisting))
	if err := s.watch.AddDirectory(abs, processExisting); err != nil {
		s.logger.Error("watch add directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "added"})
}

func (s *Server) handleWatchDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		var body struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Path != "" {
			path = body.Path
		}
	}
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required (query or body)")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	s.logger.Debug("watch remove directory request", zap.String("path", abs))
	if err := s.watch.RemoveDirectory(abs); err != nil {
		s.logger.Error("watch remove directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusOK, map[string]string{"path": abs, "status": "removed"})
}

func (s *Server) persistWatchDirectories() {
	if s.configPath == "" || s.watchConfig == nil {
		return
	}
	s.watchConfigMu.Lock()
	defer s.watchConfigMu.Unlock()
	s.watchConfig.Watch.Directories = s.watch.Directories()
	if err := config.Save(s.configPath, s.watchConfig); err != nil {
		s.logger.Warn("failed to persist watch config", zap.Error(err))
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
