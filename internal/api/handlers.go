package api

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/adapters/excel"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/core"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/learning"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/profile"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/tabular"
	apperrors "github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/errors"
)

// maxUploadSize caps dataset uploads at 50MB
const maxUploadSize = 50 << 20

func (s *Server) handleDatasetUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, apperrors.InvalidInput("missing file upload"))
		return
	}
	defer file.Close()

	tmpPath := filepath.Join(os.TempDir(), filepath.Base(header.Filename))
	tmp, err := os.Create(tmpPath)
	if err != nil {
		s.writeError(w, apperrors.InternalError("could not buffer upload"))
		return
	}
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		s.writeError(w, apperrors.InternalError("could not buffer upload"))
		return
	}
	tmp.Close()

	ds, err := excel.NewDataReader(tmpPath, s.logger).Read()
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	s.datasets.Put(ds)

	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      ds.ID,
		"name":    ds.Name,
		"columns": ds.Columns,
		"rows":    ds.RowCount(),
	})
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"datasets": s.datasets.List()})
}

func (s *Server) handleProfileDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	profiles, err := s.service.ProfileDataset(r.Context(), ds)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, profiles)
}

func (s *Server) handleProfileColumn(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	prof, err := s.service.ProfileColumn(r.Context(), ds, chi.URLParam(r, "column"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, prof)
}

func (s *Server) handleClassifyColumn(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	classification, err := s.service.ClassifyColumn(r.Context(), ds, chi.URLParam(r, "column"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"classification": classification,
		"band":           classification.Band(),
	})
}

func (s *Server) handleOverrideColumnType(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	var body struct {
		NewType string `json:"new_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, apperrors.InvalidInput("malformed request body"))
		return
	}
	err := s.service.OverrideColumnType(r.Context(), ds, chi.URLParam(r, "column"), profile.SemanticType(body.NewType))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDetectHierarchies(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	relations, err := s.service.DetectHierarchies(r.Context(), ds)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"relations": relations})
}

func (s *Server) handleBuildHierarchyTree(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	parent := r.URL.Query().Get("parent")
	child := r.URL.Query().Get("child")
	if parent == "" {
		s.writeError(w, apperrors.InvalidInput("parent query parameter is required"))
		return
	}
	nodes, err := s.service.BuildHierarchyTree(r.Context(), ds, parent, child)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"nodes": nodes})
}

func (s *Server) handleSuggestChart(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	var body struct {
		Query string `json:"query"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&body)
	}
	suggestion, err := s.service.SuggestChart(r.Context(), ds, body.Query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, suggestion)
}

func (s *Server) handleRecordFeedback(w http.ResponseWriter, r *http.Request) {
	var record learning.FeedbackRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		s.writeError(w, apperrors.InvalidInput("malformed feedback record"))
		return
	}
	if err := s.service.RecordFeedback(r.Context(), record); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

func (s *Server) handleRunLearningJob(w http.ResponseWriter, r *http.Request) {
	if s.scheduler != nil {
		started := s.scheduler.Trigger()
		status := "started"
		if !started {
			status = "already running"
		}
		s.writeJSON(w, http.StatusAccepted, map[string]string{"status": status})
		return
	}
	if err := s.service.RunLearningJob(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

func (s *Server) handleActiveRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.service.ActiveRules(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"rules": rules})
}

// dataset resolves the {id} url parameter, writing the error response
// itself when the dataset is unknown.
func (s *Server) dataset(w http.ResponseWriter, r *http.Request) (*tabular.Dataset, bool) {
	id := core.DatasetID(chi.URLParam(r, "id"))
	ds, err := s.datasets.Get(id)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return ds, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := apperrors.GetCode(err)
	switch code {
	case "VALIDATION_ERROR", "INVALID_INPUT":
		status = http.StatusBadRequest
	case "NOT_FOUND":
		status = http.StatusNotFound
	}
	s.logger.Warn("request failed: %v", err)
	s.writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  code,
	})
}
