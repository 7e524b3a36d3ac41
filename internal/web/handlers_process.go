package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/JonMunkholm/tradecsv/internal/core"
	"github.com/JonMunkholm/tradecsv/internal/logging"
)

// maxMemory is the share of a multipart form kept in memory; larger parts
// spill to temporary files.
const maxMemory = 32 << 20

// ProcessResponse is the body of a successful POST /process-pdfs/.
type ProcessResponse struct {
	Message     string `json:"message"`
	TotalTrades int    `json:"total_trades"`
	OutputFile  string `json:"output_file,omitempty"`
}

// handleProcessPDFs extracts trades from every attached PDF and writes the
// combined CSV.
func (s *Server) handleProcessPDFs(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			respondError(w, r, core.ErrNoFiles, http.StatusBadRequest)
			return
		}
		respondError(w, r, fmt.Errorf("parse upload: %w", err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[s.cfg.Upload.FormField]
	uploads := make([]core.Upload, 0, len(headers))
	for _, fh := range headers {
		uploads = append(uploads, core.Upload{
			Filename: fh.Filename,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}

	logging.FromContext(r.Context()).Debug("batch received", "files", len(uploads))

	result, err := s.service.ProcessBatch(r.Context(), uploads)
	if err != nil {
		if errors.Is(err, core.ErrTooManyBatches) {
			w.Header().Set("Retry-After", "30")
		}
		respondError(w, r, err, statusFor(err))
		return
	}

	if result.TotalTrades() == 0 {
		writeJSON(w, http.StatusOK, ProcessResponse{
			Message:     "No trade data was extracted from the PDFs",
			TotalTrades: 0,
		})
		return
	}

	writeJSON(w, http.StatusOK, ProcessResponse{
		Message:     fmt.Sprintf("Successfully processed %d PDFs", result.Files),
		TotalTrades: result.TotalTrades(),
		OutputFile:  result.OutputFile,
	})
}
