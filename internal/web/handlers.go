package web

import (
	"net"
	"net/http"

	"github.com/JonMunkholm/tradecsv/internal/core"
)

// WelcomeMessage is returned by GET /.
const WelcomeMessage = "Welcome to the PDF Table Extractor API. Use the /process-pdfs/ endpoint to upload and process PDFs."

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": WelcomeMessage})
}

// HealthResponse reports liveness and batch limiter occupancy.
type HealthResponse struct {
	Status  string             `json:"status"`
	Batches core.LimiterStatus `json:"batches"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Batches: s.service.Limiter().Status(),
	})
}

// clientIP strips the port from a RemoteAddr.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
