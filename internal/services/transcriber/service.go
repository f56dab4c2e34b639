// Package transcriber turns lecture recordings into plain text using ffmpeg
// and the whisper CLI.
package transcriber

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Service drives ffmpeg and whisper subprocesses to transcribe recordings.
type Service struct {
	cfg           Config
	ffmpegBinary  string
	ffprobeBinary string
	whisperBinary string
	commandRunner func(ctx context.Context, name string, args ...string) (string, error)
}

// NewService creates a transcriber with the given configuration. Empty binary
// names fall back to the commands on PATH.
func NewService(cfg Config, ffmpegBinary, whisperBinary string) *Service {
	if ffmpegBinary == "" {
		ffmpegBinary = FFmpegCommand
	}
	if whisperBinary == "" {
		whisperBinary = WhisperCommand
	}
	return &Service{
		cfg:           cfg,
		ffmpegBinary:  ffmpegBinary,
		ffprobeBinary: FFprobeCommand,
		whisperBinary: whisperBinary,
	}
}

// WithCommandRunner sets a custom command runner (for testing). The runner
// returns the command's combined output.
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) (string, error)) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.cfg.model()
}

func (s *Service) run(ctx context.Context, name string, args ...string) (string, error) {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return string(output), nil
}

// SegmentResult records the outcome of transcribing one audio segment.
// Failed segments carry Err and contribute nothing to the transcript.
type SegmentResult struct {
	Index    int
	StartSec int
	Text     string
	Err      error
}

// ExtractAudio extracts the audio track of a video as a mono 16kHz WAV file
// in outputDir and returns its path.
func (s *Service) ExtractAudio(ctx context.Context, videoPath, outputDir string) (string, error) {
	if videoPath == "" {
		return "", fmt.Errorf("extract audio: source path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(videoPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("extract audio: ensure output dir: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	dest := filepath.Join(outputDir, base+"_audio.wav")
	args := buildFFmpegExtractArgs(videoPath, -1, -1, dest)
	if _, err := s.run(ctx, s.ffmpegBinary, args...); err != nil {
		return "", fmt.Errorf("extract audio: %w", err)
	}
	return dest, nil
}

// Transcribe extracts audio from a video and transcribes it. workDir holds
// the intermediate WAV files.
func (s *Service) Transcribe(ctx context.Context, videoPath, workDir string) (string, []SegmentResult, error) {
	audioPath, err := s.ExtractAudio(ctx, videoPath, workDir)
	if err != nil {
		return "", nil, err
	}
	return s.TranscribeAudio(ctx, audioPath, workDir)
}

// TranscribeAudio splits an audio file into fixed-length segments,
// transcribes each, and joins the successful segments with single spaces.
// A segment that fails is skipped rather than failing the whole recording.
func (s *Service) TranscribeAudio(ctx context.Context, audioPath, workDir string) (string, []SegmentResult, error) {
	if workDir == "" {
		workDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("transcribe: ensure work dir: %w", err)
	}

	duration, err := s.probeDuration(ctx, audioPath)
	if err != nil {
		return "", nil, fmt.Errorf("transcribe: %w", err)
	}

	segmentLen := s.cfg.segmentSeconds()
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))

	var (
		results []SegmentResult
		parts   []string
	)
	for index, start := 0, 0; float64(start) < duration; index, start = index+1, start+segmentLen {
		if err := ctx.Err(); err != nil {
			return "", results, err
		}
		result := SegmentResult{Index: index, StartSec: start}
		segmentPath := filepath.Join(workDir, fmt.Sprintf("%s_segment_%d.wav", base, index))
		if err := s.extractSegment(ctx, audioPath, start, segmentLen, segmentPath); err != nil {
			result.Err = err
			results = append(results, result)
			continue
		}
		text, err := s.transcribeFile(ctx, segmentPath, workDir)
		if err != nil {
			result.Err = err
			results = append(results, result)
			continue
		}
		result.Text = text
		results = append(results, result)
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), results, nil
}

func (s *Service) extractSegment(ctx context.Context, source string, startSec, durationSec int, dest string) error {
	args := buildFFmpegExtractArgs(source, startSec, durationSec, dest)
	if _, err := s.run(ctx, s.ffmpegBinary, args...); err != nil {
		return fmt.Errorf("extract segment: %w", err)
	}
	return nil
}

// transcribeFile runs whisper on a WAV file and reads back the text file it
// writes next to the audio.
func (s *Service) transcribeFile(ctx context.Context, source, outputDir string) (string, error) {
	args := []string{
		source,
		"--model", s.cfg.model(),
		"--output_format", "txt",
		"--output_dir", outputDir,
		"--fp16", "False",
		"--verbose", "False",
	}
	if s.cfg.Language != "" {
		args = append(args, "--language", s.cfg.Language)
	}
	if _, err := s.run(ctx, s.whisperBinary, args...); err != nil {
		return "", fmt.Errorf("whisper: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	textPath := filepath.Join(outputDir, base+".txt")
	data, err := os.ReadFile(textPath)
	if err != nil {
		return "", fmt.Errorf("whisper: read transcript: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// probeDuration returns the audio duration in seconds via ffprobe.
func (s *Service) probeDuration(ctx context.Context, audioPath string) (float64, error) {
	output, err := s.run(ctx, s.ffprobeBinary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioPath,
	)
	if err != nil {
		return 0, fmt.Errorf("probe duration: %w", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(output), 64)
	if err != nil {
		return 0, fmt.Errorf("probe duration: parse %q: %w", strings.TrimSpace(output), err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("probe duration: negative duration %f", duration)
	}
	return duration, nil
}

// buildFFmpegExtractArgs builds ffmpeg arguments for mono 16kHz WAV output.
// A negative startSec or durationSec means the whole stream.
func buildFFmpegExtractArgs(source string, startSec, durationSec int, dest string) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
	}
	if startSec >= 0 && durationSec > 0 {
		args = append(args,
			"-ss", strconv.Itoa(startSec),
			"-t", strconv.Itoa(durationSec),
		)
	}
	args = append(args,
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	)
	return args
}
