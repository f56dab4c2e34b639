// Package download fetches remote lecture media for ingestion. Video sites
// go through yt-dlp; everything else is fetched directly over HTTP.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	// YTDLPCommand is the default yt-dlp binary name.
	YTDLPCommand = "yt-dlp"
	// downloadTimeout bounds direct HTTP downloads.
	downloadTimeout = 60 * time.Second
	userAgent       = "Mozilla/5.0 (compatible; lectern/1.0)"
)

// ytDLPDomains lists sites that need yt-dlp rather than a direct fetch.
var ytDLPDomains = []string{
	"youtube.com",
	"youtu.be",
	"vimeo.com",
	"dailymotion.com",
	"facebook.com",
	"fb.watch",
	"twitter.com",
	"x.com",
}

var mediaExtPattern = regexp.MustCompile(`(?i)\.(mp4|webm|mkv|mov|avi|m4a|mp3|wav)$`)

// IsURL reports whether the string looks like an HTTP(S) URL.
func IsURL(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Downloader fetches media files into a local directory.
type Downloader struct {
	ytdlpBinary   string
	httpClient    *http.Client
	commandRunner func(ctx context.Context, name string, args ...string) (string, error)
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithYTDLPBinary overrides the yt-dlp binary path.
func WithYTDLPBinary(binary string) Option {
	return func(d *Downloader) {
		if binary != "" {
			d.ytdlpBinary = binary
		}
	}
}

// WithHTTPClient overrides the HTTP client used for direct downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Downloader) {
		if client != nil {
			d.httpClient = client
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing). The runner
// returns the command's standard output.
func WithCommandRunner(runner func(ctx context.Context, name string, args ...string) (string, error)) Option {
	return func(d *Downloader) {
		d.commandRunner = runner
	}
}

// New creates a Downloader.
func New(opts ...Option) *Downloader {
	d := &Downloader{
		ytdlpBinary: YTDLPCommand,
		httpClient:  &http.Client{Timeout: downloadTimeout},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fetch downloads the media behind rawURL into outputDir and returns the
// local file path.
func (d *Downloader) Fetch(ctx context.Context, rawURL, outputDir string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !IsURL(rawURL) {
		return "", fmt.Errorf("download: not a valid URL: %q", rawURL)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("download: ensure output dir: %w", err)
	}
	if needsYTDLP(rawURL) {
		return d.fetchWithYTDLP(ctx, rawURL, outputDir)
	}
	return d.fetchDirect(ctx, rawURL, outputDir)
}

// needsYTDLP reports whether the URL's host belongs to a video site that
// requires yt-dlp.
func needsYTDLP(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")
	for _, domain := range ytDLPDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// fetchWithYTDLP downloads via yt-dlp and asks it to print the final file
// path so no directory scanning is needed.
func (d *Downloader) fetchWithYTDLP(ctx context.Context, rawURL, outputDir string) (string, error) {
	args := []string{
		"--quiet",
		"--no-warnings",
		"--format", "bestvideo[ext=mp4]+bestaudio/best[ext=mp4]/best",
		"--merge-output-format", "mp4",
		"--output", filepath.Join(outputDir, "%(id)s.%(ext)s"),
		"--print", "after_move:filepath",
		"--no-simulate",
		rawURL,
	}
	output, err := d.run(ctx, d.ytdlpBinary, args...)
	if err != nil {
		return "", fmt.Errorf("download: yt-dlp: %w", err)
	}
	downloaded := strings.TrimSpace(output)
	if downloaded == "" {
		return "", fmt.Errorf("download: yt-dlp produced no file for %s", rawURL)
	}
	// The last printed line is the merged output path.
	lines := strings.Split(downloaded, "\n")
	return strings.TrimSpace(lines[len(lines)-1]), nil
}

func (d *Downloader) fetchDirect(ctx context.Context, rawURL, outputDir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("download: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	dest := uniquePath(outputDir, fileNameFromURL(rawURL))
	file, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("download: create %s: %w", dest, err)
	}
	defer file.Close()
	if _, err := io.Copy(file, resp.Body); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("download: write %s: %w", dest, err)
	}
	return dest, nil
}

func (d *Downloader) run(ctx context.Context, name string, args ...string) (string, error) {
	if d.commandRunner != nil {
		return d.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		var detail string
		if exitErr, ok := err.(*exec.ExitError); ok {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		return "", fmt.Errorf("%s: %w: %s", name, err, detail)
	}
	return string(output), nil
}

// fileNameFromURL derives a local file name, appending .mp4 when the URL
// path lacks a recognizable media extension.
func fileNameFromURL(rawURL string) string {
	name := "video"
	if parsed, err := url.Parse(rawURL); err == nil {
		if base := strings.TrimSpace(path.Base(parsed.Path)); base != "" && base != "/" && base != "." {
			name = base
		}
	}
	if !mediaExtPattern.MatchString(name) {
		name += ".mp4"
	}
	return name
}

// uniquePath avoids clobbering an existing download by suffixing _1, _2, ...
func uniquePath(dir, name string) string {
	dest := filepath.Join(dir, name)
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return dest
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; i < 100; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
	return dest
}
