// pkg/server/handlers.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/David-Botos/erp-ingress/pkg/ingest"
	"github.com/David-Botos/erp-ingress/pkg/reader"
	"github.com/David-Botos/erp-ingress/pkg/schema"
)

// Multipart form field names
const (
	fieldFile         = "file"
	fieldSnapshotDate = "snapshot_date"

	fieldZMM345E         = "zmm345e_file"
	fieldStorageLocation = "storage_location_file"
	fieldMaterialGroup   = "material_group_file"
	fieldMaterialType    = "material_type_file"
	fieldMKVZ            = "mkvz_file"
)

// maxMemory is the part of a multipart form kept in memory; the rest spills to disk
const maxMemory = 32 << 20

// UploadResponse is returned for every accepted upload
type UploadResponse struct {
	Status       string            `json:"status"`
	Source       string            `json:"source"`
	BatchID      string            `json:"batch_id"`
	SnapshotDate string            `json:"snapshot_date"`
	Counts       *ingest.RowCounts `json:"counts"`
}

// ErrorResponse is returned for rejected requests
type ErrorResponse struct {
	Status   string   `json:"status"`
	Category string   `json:"category,omitempty"`
	Detail   string   `json:"detail"`
	Missing  []string `json:"missing,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "SAP reporting backend running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), s.config.HealthTimeout)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			s.logger.Error("Health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Status: "error", Detail: err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUploadBySource(w http.ResponseWriter, r *http.Request) {
	source := mux.Vars(r)["source"]
	src, err := s.service.Catalog().Source(source)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.handleUpload(src.Tag)(w, r)
}

// handleUpload ingests the single file of a source upload
func (s *Server) handleUpload(source string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batch, ok := s.parseUpload(w, r)
		if !ok {
			return
		}

		sheet, err := s.receiveSheet(r, fieldFile, batch.ID)
		if err != nil {
			s.writeError(w, err)
			return
		}

		counts, err := s.service.Ingest(r.Context(), source, sheet, batch)
		if err != nil {
			s.writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, UploadResponse{
			Status:       "ok",
			Source:       counts.Source,
			BatchID:      batch.ID,
			SnapshotDate: batch.Snapshot(),
			Counts:       counts,
		})
	}
}

// handleMasterUpload builds the material master from five files under one batch
func (s *Server) handleMasterUpload(w http.ResponseWriter, r *http.Request) {
	batch, ok := s.parseUpload(w, r)
	if !ok {
		return
	}

	var sheets ingest.MasterSheets
	targets := []struct {
		field string
		sheet **reader.Sheet
	}{
		{fieldZMM345E, &sheets.ZMM345E},
		{fieldStorageLocation, &sheets.StorageLocation},
		{fieldMaterialGroup, &sheets.MaterialGroup},
		{fieldMaterialType, &sheets.MaterialType},
		{fieldMKVZ, &sheets.MKVZ},
	}
	for _, t := range targets {
		sheet, err := s.receiveSheet(r, t.field, batch.ID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		*t.sheet = sheet
	}

	counts, err := s.service.BuildMaster(r.Context(), sheets, batch)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Status:       "ok",
		Source:       ingest.SourceMaterialMaster,
		BatchID:      batch.ID,
		SnapshotDate: batch.Snapshot(),
		Counts:       counts,
	})
}

// parseUpload reads the multipart form and creates the batch
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) (ingest.Batch, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		s.writeError(w, fmt.Errorf("%w: failed to parse upload: %w", ingest.ErrInvalidInput, err))
		return ingest.Batch{}, false
	}

	batch, err := s.batches.NewBatch(r.FormValue(fieldSnapshotDate))
	if err != nil {
		s.writeError(w, err)
		return ingest.Batch{}, false
	}
	return batch, true
}

// receiveSheet saves one uploaded file under the batch id and reads it
func (s *Server) receiveSheet(r *http.Request, field, batchID string) (*reader.Sheet, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%w: missing file field %q", ingest.ErrInvalidInput, field)
	}
	defer file.Close()

	path, err := s.saveUpload(file, batchID, header.Filename)
	if err != nil {
		return nil, err
	}

	sheet, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ingest.ErrInvalidInput, err)
	}
	return sheet, nil
}

// saveUpload writes an upload to <UploadDir>/<batch id>_<file name>
func (s *Server) saveUpload(src io.Reader, batchID, filename string) (string, error) {
	if err := os.MkdirAll(s.config.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		name = "upload"
	}
	path := filepath.Join(s.config.UploadDir, batchID+"_"+name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	return path, nil
}

// statusFor maps an ingestion error to an HTTP status code
func statusFor(err error) int {
	if errors.Is(err, ingest.ErrUnknownSource) {
		return http.StatusNotFound
	}
	switch ingest.CategorizeError(err) {
	case ingest.ErrorCategorySchemaMismatch:
		return http.StatusUnprocessableEntity
	case ingest.ErrorCategoryInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	resp := ErrorResponse{
		Status:   "error",
		Category: ingest.CategorizeError(err).String(),
		Detail:   err.Error(),
	}

	var mismatch *schema.SchemaMismatchError
	if errors.As(err, &mismatch) {
		resp.Missing = mismatch.Missing
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("Upload failed", zap.Int("status", status), zap.Error(err))
	} else {
		s.logger.Warn("Upload rejected", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
