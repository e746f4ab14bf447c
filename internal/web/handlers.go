package web

import (
	"embed"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/seiya-matsuoka/csv-to-insert-generator/internal/convert"
	"github.com/seiya-matsuoka/csv-to-insert-generator/internal/logging"
)

//go:embed template.csv
var templateFiles embed.FS

// ConvertRequest is the JSON body for POST /api/convert.
type ConvertRequest struct {
	CSVText  string `json:"csvText"`
	FileName string `json:"fileName"`
}

// ConvertResponse is the success body for POST /api/convert.
type ConvertResponse struct {
	SQLText        string `json:"sqlText"`
	OutputFileName string `json:"outputFileName"`
	GeneratedAt    string `json:"generatedAt"`
}

// ConvertFailure is the 422 body for POST /api/convert.
type ConvertFailure struct {
	Errors    []convert.ValidationError `json:"errors"`
	Truncated bool                      `json:"truncated"`
}

// handleHealthz reports liveness for monitoring probes.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleConvert runs the conversion pipeline on the posted CSV text.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Convert.MaxBodyBytes)

	var body ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req, err := convert.NewRequest(body.CSVText, body.FileName)
	if err != nil {
		writeError(w, http.StatusBadRequest, "csvText must not be blank")
		return
	}

	result := s.pipeline.Convert(req)
	if !result.OK() {
		logger.Info("conversion rejected",
			"file", body.FileName,
			"errors", len(result.Errors),
			"truncated", result.Truncated,
		)
		writeJSON(w, http.StatusUnprocessableEntity, ConvertFailure{
			Errors:    result.Errors,
			Truncated: result.Truncated,
		})
		return
	}

	logger.Info("conversion completed",
		"file", body.FileName,
		"output", result.OutputFileName,
	)
	writeJSON(w, http.StatusOK, ConvertResponse{
		SQLText:        result.SQLText,
		OutputFileName: result.OutputFileName,
		GeneratedAt:    result.GeneratedAt.Format(time.RFC3339),
	})
}

// handleDownloadTemplate serves the fixed Format D starter CSV.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := templateFiles.ReadFile("template.csv")
	if err != nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="template.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
