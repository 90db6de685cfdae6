package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/tilecut/tilecut/internal/api"
	"github.com/tilecut/tilecut/internal/encode"
	"github.com/tilecut/tilecut/internal/splitter"
	"github.com/tilecut/tilecut/pkg/grid"
)

// Uploads larger than this are rejected during multipart parsing.
const maxUploadBytes = 64 << 20

// Server holds the HTTP handlers.
type Server struct {
	startTime time.Time
	version   string
}

// NewServer creates a new server instance.
func NewServer(version string) *Server {
	return &Server{
		startTime: time.Now(),
		version:   version,
	}
}

// GetHealth implements the health check endpoint.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	uptime := int(time.Since(s.startTime).Seconds())

	response := api.HealthResponse{
		Status:    api.Healthy,
		Timestamp: time.Now(),
		Uptime:    &uptime,
		Version:   &s.version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding health response: %v", err)
	}
}

// ValidateDimensions implements the dimension advisory endpoint. The result
// is always 200 for a well-formed request; the advisory severity is carried
// in the body and never blocks a split.
func (s *Server) ValidateDimensions(w http.ResponseWriter, r *http.Request) {
	requestID := generateRequestID()

	var req api.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON",
			"Invalid JSON in request body", &requestID, nil)
		return
	}

	if req.Width <= 0 || req.Height <= 0 {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST",
			"width and height must be positive", &requestID, nil)
		return
	}

	layout, err := grid.ParseLayout(req.Grid)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST",
			err.Error(), &requestID, nil)
		return
	}

	adv := grid.Validate(req.Width, req.Height, layout.Spec())

	response := api.ValidateResponse{
		Grid:      layout.String(),
		Severity:  adv.Severity.String(),
		Tolerance: adv.Tolerance,
		Message:   adv.Message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding validate response: %v", err)
	}
}

// CreateSplit implements the main split endpoint: multipart image upload in,
// zip of tile artifacts out. Per-tile failures do not fail the request; they
// are reflected in the response headers and the report.json zip entry.
func (s *Server) CreateSplit(w http.ResponseWriter, r *http.Request) {
	requestID := generateRequestID()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST",
			"Expected multipart form upload", &requestID, nil)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST",
			"Missing 'image' file field", &requestID, nil)
		return
	}
	defer file.Close()

	layout, err := grid.ParseLayout(r.FormValue("grid"))
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST",
			err.Error(), &requestID, nil)
		return
	}

	format, err := encode.ParseFormat(r.FormValue("format"))
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST",
			err.Error(), &requestID, nil)
		return
	}

	src, err := splitter.LoadSource(file, header.Filename, header.Size)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_IMAGE",
			err.Error(), &requestID, nil)
		return
	}

	adv := grid.Validate(src.Width, src.Height, layout.Spec())

	exporter := splitter.New(splitter.Options{
		Layout: layout,
		Format: format,
	})

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	report, err := exporter.Export(r.Context(), src, zipSink{zw})
	if err != nil {
		s.handleSplitError(w, err, &requestID)
		return
	}

	if err := writeReportEntry(zw, report); err != nil {
		log.Printf("Error writing report entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"Failed to assemble archive", &requestID, nil)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", splitter.SanitizeFilename(header.Filename)+"_tiles.zip"))
	w.Header().Set("X-Request-ID", requestID)
	w.Header().Set("X-Tiles-Succeeded", strconv.Itoa(len(report.Succeeded)))
	w.Header().Set("X-Tiles-Failed", strconv.Itoa(len(report.Failed)))
	w.Header().Set("X-Dimension-Advisory", adv.Severity.String())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

// zipSink streams tile artifacts into a zip archive.
type zipSink struct {
	zw *zip.Writer
}

func (s zipSink) Write(ctx context.Context, filename string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := s.zw.Create(filename)
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	return err
}

func writeReportEntry(zw *zip.Writer, report splitter.Report) error {
	f, err := zw.Create("report.json")
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// handleSplitError maps exporter errors to HTTP responses.
func (s *Server) handleSplitError(w http.ResponseWriter, err error, requestID *string) {
	switch {
	case errors.Is(err, splitter.ErrBusy):
		s.writeErrorResponse(w, http.StatusConflict, "EXPORT_BUSY",
			"An export is already in progress", requestID, nil)
	case errors.Is(err, splitter.ErrNoSource):
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_IMAGE",
			"No source image loaded", requestID, nil)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		s.writeErrorResponse(w, http.StatusGatewayTimeout, "REQUEST_TIMEOUT",
			"Split request timed out", requestID, nil)
	default:
		s.writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"Internal server error", requestID, nil)
	}
}

// writeErrorResponse writes a standard error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string, requestID *string, details map[string]interface{}) {
	response := api.ErrorResponse{
		Error:     errorCode,
		Message:   message,
		RequestId: requestID,
	}

	if details != nil {
		response.Details = &details
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// generateRequestID generates a unique request ID.
func generateRequestID() string {
	return fmt.Sprintf("req_%d", time.Now().UnixNano())
}
