// Package httpapi exposes the ingestion and question answering pipeline over
// HTTP for the learning portal backend.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"lectern/internal/answer"
	"lectern/internal/logging"
	"lectern/internal/pipeline"
	"lectern/internal/vectorstore"
)

// maxUploadBytes caps uploaded file size (2 GiB covers long lecture videos).
const maxUploadBytes = 2 << 30

// Uploader processes an uploaded file or URL.
type Uploader interface {
	ProcessUpload(ctx context.Context, path string, meta pipeline.UploadMetadata) pipeline.Result
}

// Asker answers a question from stored course material.
type Asker interface {
	Ask(ctx context.Context, question string, nContext int, scopeID string) answer.Result
}

// Lister enumerates the stored collection.
type Lister interface {
	ListAll(ctx context.Context) (vectorstore.Listing, error)
	Count(ctx context.Context) (int, error)
	Collection() string
	Path() string
}

// Server serves the REST API.
type Server struct {
	bind      string
	uploadDir string
	uploader  Uploader
	asker     Asker
	lister    Lister
	logger    *slog.Logger

	listener net.Listener
	server   *http.Server
}

// New builds a Server. uploadDir receives files posted to /api/transcribe.
func New(bind, uploadDir string, uploader Uploader, asker Asker, lister Lister, logger *slog.Logger) (*Server, error) {
	if strings.TrimSpace(bind) == "" {
		return nil, errors.New("httpapi: bind address required")
	}
	if uploader == nil || asker == nil || lister == nil {
		return nil, errors.New("httpapi: uploader, asker, and lister are required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	srv := &Server{
		bind:      bind,
		uploadDir: uploadDir,
		uploader:  uploader,
		asker:     asker,
		lister:    lister,
		logger:    logger.With(slog.String(logging.FieldComponent, "api-server")),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/transcribe", srv.handleTranscribe)
	mux.HandleFunc("/api/qa", srv.handleQA)
	mux.HandleFunc("/api/documents", srv.handleDocuments)
	mux.HandleFunc("/api/status", srv.handleStatus)

	srv.server = &http.Server{
		Handler:           srv.withRequestID(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Minute,
		WriteTimeout:      15 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Handler exposes the configured handler for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving and shuts down when ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("httpapi: listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", slog.String("error", err.Error()))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// handleTranscribe ingests an uploaded file or a remote URL together with its
// catalog metadata.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("parse form: %v", err))
			return
		}
		if err := r.ParseForm(); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("parse form: %v", err))
			return
		}
	}

	meta := pipeline.UploadMetadata{
		VideoID:   r.FormValue("video_id"),
		UserID:    r.FormValue("user_id"),
		Subject:   r.FormValue("subject"),
		SubjectID: r.FormValue("subject_id"),
		Chapter:   r.FormValue("chapter"),
		ChapterID: r.FormValue("chapter_id"),
		Part:      r.FormValue("part"),
	}

	target, cleanup, err := s.resolveUploadTarget(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if cleanup != nil {
		defer cleanup()
	}

	logger := logging.WithContext(r.Context(), s.logger)
	result := s.uploader.ProcessUpload(r.Context(), target, meta)
	if !result.Success {
		logger.Warn("upload failed", slog.String("target", target), slog.String("error", result.Error))
		s.writeJSON(w, http.StatusBadRequest, result)
		return
	}
	logger.Info("upload processed", slog.String("target", target), slog.String("doc_id", result.DocID))
	s.writeJSON(w, http.StatusOK, result)
}

// resolveUploadTarget returns either the URL form value or the path of the
// saved multipart file. Exactly one of file and url must be supplied.
func (s *Server) resolveUploadTarget(r *http.Request) (string, func(), error) {
	rawURL := strings.TrimSpace(r.FormValue("url"))

	if r.MultipartForm != nil && len(r.MultipartForm.File["file"]) > 0 {
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, fmt.Errorf("read upload: %v", err)
		}
		defer file.Close()

		if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
			return "", nil, fmt.Errorf("ensure upload dir: %v", err)
		}
		name := filepath.Base(header.Filename)
		if name == "" || name == "." || name == string(filepath.Separator) {
			name = "upload"
		}
		dest := filepath.Join(s.uploadDir, name)
		out, err := os.Create(dest)
		if err != nil {
			return "", nil, fmt.Errorf("save upload: %v", err)
		}
		defer out.Close()
		if _, err := io.Copy(out, file); err != nil {
			os.Remove(dest)
			return "", nil, fmt.Errorf("save upload: %v", err)
		}
		return dest, func() { os.Remove(dest) }, nil
	}

	if rawURL != "" {
		return rawURL, nil, nil
	}
	return "", nil, errors.New("either 'file' or 'url' must be provided")
}

type qaRequest struct {
	Question string `json:"question"`
	VideoID  string `json:"video_id"`
	NContext int    `json:"n_context"`
}

func (s *Server) handleQA(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req qaRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("parse request: %v", err))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		s.writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	result := s.asker.Ask(r.Context(), req.Question, req.NContext, req.VideoID)
	if !result.Success {
		logging.WithContext(r.Context(), s.logger).Error("answer generation failed", slog.String("error", result.Err))
		s.writeJSON(w, http.StatusInternalServerError, result)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

type documentsResponse struct {
	Count     int              `json:"count"`
	Documents []documentRecord `json:"documents"`
}

type documentRecord struct {
	ID       string         `json:"id"`
	Document string         `json:"document"`
	Metadata map[string]any `json:"metadata"`
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	listing, err := s.lister.ListAll(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := documentsResponse{Count: listing.Count, Documents: []documentRecord{}}
	for i, id := range listing.IDs {
		meta := make(map[string]any, len(listing.Metadatas[i]))
		for key, value := range listing.Metadatas[i] {
			meta[key] = value
		}
		resp.Documents = append(resp.Documents, documentRecord{
			ID:       id,
			Document: listing.Documents[i],
			Metadata: meta,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type statusResponse struct {
	Running    bool   `json:"running"`
	Collection string `json:"collection"`
	StorePath  string `json:"store_path"`
	Documents  int    `json:"documents"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	count, err := s.lister.Count(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{
		Running:    true,
		Collection: s.lister.Collection(),
		StorePath:  s.lister.Path(),
		Documents:  count,
	})
}
