package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"lodge-backoffice/internal/importer"
	"lodge-backoffice/internal/services"
)

type ImportHandler struct {
	importService  *services.ImportService
	maxUploadBytes int64
}

func NewImportHandler(importService *services.ImportService, maxUploadBytes int64) *ImportHandler {
	return &ImportHandler{
		importService:  importService,
		maxUploadBytes: maxUploadBytes,
	}
}

// Preview parses and calculates the uploaded sheet without writing anything,
// returning every row with its warnings plus the rows excluded by hard
// errors. The UI renders this before asking the operator to confirm.
func (h *ImportHandler) Preview(w http.ResponseWriter, r *http.Request) {
	fileName, payload, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	batch, err := h.importService.Preview(fileName, payload)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, batch)
}

// Import runs the confirmed import and returns the run's audit record.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	fileName, payload, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	log, err := h.importService.Import(r.Context(), fileName, payload)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, importer.ErrUnsupportedFormat) ||
			errors.Is(err, importer.ErrEmptyFile) ||
			errors.Is(err, importer.ErrNothingToImport) {
			status = http.StatusBadRequest
		}
		respondWithError(w, status, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, log)
}

func (h *ImportHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	logs, err := h.importService.RecentLogs(r.Context(), limit, offset)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, logs)
}

func (h *ImportHandler) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid form data")
		return "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "A spreadsheet file is required")
		return "", nil, false
	}
	defer file.Close()

	payload, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return "", nil, false
	}
	if int64(len(payload)) > h.maxUploadBytes {
		respondWithError(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
		return "", nil, false
	}

	return header.Filename, payload, true
}
