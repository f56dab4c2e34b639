// Package pipeline routes uploaded course material through transcription,
// text extraction, and indexing.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"lectern/internal/chunker"
	"lectern/internal/download"
	"lectern/internal/extract"
	"lectern/internal/logging"
	"lectern/internal/metadata"
	"lectern/internal/render"
	"lectern/internal/services/transcriber"
)

// videoExtensions lists the container formats treated as lecture videos.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mkv":  true,
	".mov":  true,
	".webm": true,
	".flv":  true,
	".wmv":  true,
}

// FileType classifies an upload by extension.
type FileType string

const (
	FileTypeVideo   FileType = "video"
	FileTypePDF     FileType = "pdf"
	FileTypeDOCX    FileType = "docx"
	FileTypeDOC     FileType = "doc"
	FileTypeUnknown FileType = "unknown"
)

// ClassifyFile returns the FileType for a path based on its extension.
func ClassifyFile(path string) FileType {
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case videoExtensions[ext]:
		return FileTypeVideo
	case ext == ".pdf":
		return FileTypePDF
	case ext == ".docx":
		return FileTypeDOCX
	case ext == ".doc":
		return FileTypeDOC
	default:
		return FileTypeUnknown
	}
}

// Indexer stores chunked documents for later retrieval.
type Indexer interface {
	AddChunked(ctx context.Context, text string, meta metadata.Record, sourceID string, size, overlap int) (string, error)
}

// Transcriber turns a video file into transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, videoPath, workDir string) (string, []transcriber.SegmentResult, error)
}

// Fetcher downloads remote media to a local file.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, outputDir string) (string, error)
}

// Dirs holds the working directories used while processing uploads.
type Dirs struct {
	Audio      string
	Transcript string
	Download   string
}

// UploadMetadata carries the catalog fields attached to every stored chunk.
type UploadMetadata struct {
	VideoID   string
	UserID    string
	Subject   string
	SubjectID string
	Chapter   string
	ChapterID string
	Part      string
}

// Result reports what one upload produced.
type Result struct {
	Success        bool   `json:"success"`
	FileType       string `json:"file_type,omitempty"`
	TranscriptText string `json:"transcript_text,omitempty"`
	Text           string `json:"text,omitempty"`
	PDFPath        string `json:"pdf_path,omitempty"`
	DocID          string `json:"doc_id,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Pipeline coordinates the ingestion collaborators.
type Pipeline struct {
	indexer     Indexer
	transcriber Transcriber
	fetcher     Fetcher
	dirs        Dirs
	chunkSize   int
	overlap     int
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFetcher sets the media downloader used for URL uploads.
func WithFetcher(f Fetcher) Option {
	return func(p *Pipeline) { p.fetcher = f }
}

// WithTranscriber sets the video transcription service.
func WithTranscriber(t Transcriber) Option {
	return func(p *Pipeline) { p.transcriber = t }
}

// WithChunking overrides the chunk size and overlap used for indexing.
func WithChunking(size, overlap int) Option {
	return func(p *Pipeline) {
		p.chunkSize = size
		p.overlap = overlap
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Pipeline writing intermediates into dirs.
func New(indexer Indexer, dirs Dirs, opts ...Option) (*Pipeline, error) {
	if indexer == nil {
		return nil, fmt.Errorf("pipeline: indexer is required")
	}
	p := &Pipeline{
		indexer:   indexer,
		dirs:      dirs,
		chunkSize: chunker.DefaultSize,
		overlap:   chunker.DefaultOverlap,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ProcessUpload ingests a local file or URL. URLs are downloaded first.
// Videos are transcribed and rendered to a PDF before indexing; documents are
// indexed directly. Unsupported types come back as a failed Result, not an
// error.
func (p *Pipeline) ProcessUpload(ctx context.Context, path string, meta UploadMetadata) Result {
	if download.IsURL(path) {
		if p.fetcher == nil {
			return Result{Error: "download failed: no downloader configured"}
		}
		local, err := p.fetcher.Fetch(ctx, path, p.dirs.Download)
		if err != nil {
			return Result{Error: fmt.Sprintf("download failed: %v", err)}
		}
		p.logger.Info("downloaded media", "url", path, "path", local)
		path = local
	}

	switch fileType := ClassifyFile(path); fileType {
	case FileTypeVideo:
		return p.processVideo(ctx, path, meta)
	case FileTypePDF, FileTypeDOCX:
		return p.processDocument(ctx, path, fileType, meta)
	default:
		return Result{FileType: string(fileType), Error: fmt.Sprintf("unsupported file type: %s", path)}
	}
}

func (p *Pipeline) processVideo(ctx context.Context, videoPath string, meta UploadMetadata) Result {
	result := Result{FileType: string(FileTypeVideo)}
	if p.transcriber == nil {
		result.Error = "transcription failed: no transcriber configured"
		return result
	}

	baseName := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	transcript, segments, err := p.transcriber.Transcribe(ctx, videoPath, p.dirs.Audio)
	if err != nil {
		result.Error = fmt.Sprintf("transcription failed: %v", err)
		return result
	}
	if failed := failedSegments(segments); failed > 0 {
		p.logger.Warn("some audio segments failed", "video", baseName, "failed", failed, "total", len(segments))
	}
	if strings.TrimSpace(transcript) == "" {
		result.Error = "transcription produced no text"
		return result
	}
	result.TranscriptText = transcript

	pdfPath, err := render.TranscriptPDFPath(baseName, p.dirs.Transcript)
	if err != nil {
		result.Error = fmt.Sprintf("transcript pdf failed: %v", err)
		return result
	}
	if err := render.TranscriptPDF(transcript, pdfPath, "Transcript: "+render.TitleFromBaseName(baseName)); err != nil {
		result.Error = fmt.Sprintf("transcript pdf failed: %v", err)
		return result
	}
	result.PDFPath = pdfPath

	docID, err := p.index(ctx, transcript, videoPath, string(FileTypeVideo), meta)
	if err != nil {
		result.Error = fmt.Sprintf("indexing failed: %v", err)
		return result
	}
	result.DocID = docID
	result.Success = true
	p.logger.Info("video ingested", "video", baseName, "doc_id", docID, "pdf", pdfPath)
	return result
}

func (p *Pipeline) processDocument(ctx context.Context, path string, fileType FileType, meta UploadMetadata) Result {
	result := Result{FileType: string(fileType)}
	text, supported, err := extract.Text(path)
	if err != nil {
		result.Error = fmt.Sprintf("text extraction failed: %v", err)
		return result
	}
	if !supported || strings.TrimSpace(text) == "" {
		result.Error = fmt.Sprintf("no text extracted from %s", filepath.Base(path))
		return result
	}
	result.Text = text

	docID, err := p.index(ctx, text, path, string(fileType), meta)
	if err != nil {
		result.Error = fmt.Sprintf("indexing failed: %v", err)
		return result
	}
	result.DocID = docID
	result.Success = true
	p.logger.Info("document ingested", "file", filepath.Base(path), "doc_id", docID)
	return result
}

func (p *Pipeline) index(ctx context.Context, text, path, fileType string, meta UploadMetadata) (string, error) {
	record := metadata.Record{
		"file_type":  metadata.String(fileType),
		"filename":   metadata.String(filepath.Base(path)),
		"video_id":   metadata.String(meta.VideoID),
		"subject":    metadata.String(meta.Subject),
		"subject_id": metadata.String(meta.SubjectID),
		"chapter":    metadata.String(meta.Chapter),
		"chapter_id": metadata.String(meta.ChapterID),
		"part":       metadata.String(meta.Part),
		"user_id":    metadata.String(meta.UserID),
	}
	return p.indexer.AddChunked(ctx, text, record, "", p.chunkSize, p.overlap)
}

func failedSegments(segments []transcriber.SegmentResult) int {
	count := 0
	for _, s := range segments {
		if s.Err != nil {
			count++
		}
	}
	return count
}
