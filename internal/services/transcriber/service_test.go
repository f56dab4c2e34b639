package transcriber

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeRunner emulates ffprobe, ffmpeg, and whisper well enough to exercise
// the segmenting loop without any real binaries.
type fakeRunner struct {
	duration     string
	failSegments map[int]bool
	whisperCalls int
	ffmpegArgs   [][]string
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) (string, error) {
	switch name {
	case FFprobeCommand:
		return f.duration + "\n", nil
	case FFmpegCommand:
		f.ffmpegArgs = append(f.ffmpegArgs, args)
		return "", nil
	case WhisperCommand:
		f.whisperCalls++
		source := args[0]
		outputDir := argValue(args, "--output_dir")
		index := segmentIndex(source)
		if f.failSegments[index] {
			return "", errors.New("whisper crashed")
		}
		base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		text := fmt.Sprintf("segment %d text", index)
		if err := os.WriteFile(filepath.Join(outputDir, base+".txt"), []byte(text+"\n"), 0o644); err != nil {
			return "", err
		}
		return "", nil
	default:
		return "", fmt.Errorf("unexpected command %s", name)
	}
}

func argValue(args []string, flag string) string {
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func segmentIndex(source string) int {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	var index int
	fmt.Sscanf(base[strings.LastIndex(base, "_")+1:], "%d", &index)
	return index
}

func newTestService(runner *fakeRunner) *Service {
	svc := NewService(Config{}, "", "")
	svc.WithCommandRunner(runner.run)
	return svc
}

func TestTranscribeAudioJoinsSegments(t *testing.T) {
	runner := &fakeRunner{duration: "65.2"}
	svc := newTestService(runner)

	text, results, err := svc.TranscribeAudio(context.Background(), "/tmp/lecture_audio.wav", t.TempDir())
	if err != nil {
		t.Fatalf("TranscribeAudio: %v", err)
	}
	if text != "segment 0 text segment 1 text segment 2 text" {
		t.Errorf("transcript = %q", text)
	}
	if len(results) != 3 {
		t.Fatalf("segments = %d, want 3", len(results))
	}
	for i, r := range results {
		if r.Index != i || r.StartSec != i*DefaultSegmentSeconds {
			t.Errorf("segment %d: index=%d start=%d", i, r.Index, r.StartSec)
		}
		if r.Err != nil {
			t.Errorf("segment %d unexpected error: %v", i, r.Err)
		}
	}
	if runner.whisperCalls != 3 {
		t.Errorf("whisper calls = %d, want 3", runner.whisperCalls)
	}
}

func TestTranscribeAudioSkipsFailedSegment(t *testing.T) {
	runner := &fakeRunner{duration: "90", failSegments: map[int]bool{1: true}}
	svc := newTestService(runner)

	text, results, err := svc.TranscribeAudio(context.Background(), "/tmp/lecture_audio.wav", t.TempDir())
	if err != nil {
		t.Fatalf("TranscribeAudio: %v", err)
	}
	if text != "segment 0 text segment 2 text" {
		t.Errorf("transcript = %q", text)
	}
	if results[1].Err == nil {
		t.Error("expected error recorded for failed segment")
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Error("healthy segments should not carry errors")
	}
}

func TestTranscribeAudioBadDuration(t *testing.T) {
	runner := &fakeRunner{duration: "N/A"}
	svc := newTestService(runner)

	if _, _, err := svc.TranscribeAudio(context.Background(), "/tmp/a.wav", t.TempDir()); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestExtractAudioArgs(t *testing.T) {
	runner := &fakeRunner{}
	svc := newTestService(runner)
	dir := t.TempDir()

	dest, err := svc.ExtractAudio(context.Background(), "/videos/physics lesson.mp4", dir)
	if err != nil {
		t.Fatalf("ExtractAudio: %v", err)
	}
	if dest != filepath.Join(dir, "physics lesson_audio.wav") {
		t.Errorf("dest = %q", dest)
	}
	if len(runner.ffmpegArgs) != 1 {
		t.Fatalf("ffmpeg calls = %d, want 1", len(runner.ffmpegArgs))
	}
	args := strings.Join(runner.ffmpegArgs[0], " ")
	for _, want := range []string{"-ac 1", "-ar 16000", "pcm_s16le", "-vn"} {
		if !strings.Contains(args, want) {
			t.Errorf("ffmpeg args missing %q: %s", want, args)
		}
	}
	if strings.Contains(args, "-ss") {
		t.Errorf("full extraction should not seek: %s", args)
	}
}

func TestSegmentExtractionSeeks(t *testing.T) {
	runner := &fakeRunner{duration: "35"}
	svc := newTestService(runner)

	if _, _, err := svc.TranscribeAudio(context.Background(), "/tmp/a.wav", t.TempDir()); err != nil {
		t.Fatalf("TranscribeAudio: %v", err)
	}
	// Two segments: the second must seek to 30s.
	if len(runner.ffmpegArgs) != 2 {
		t.Fatalf("ffmpeg calls = %d, want 2", len(runner.ffmpegArgs))
	}
	second := strings.Join(runner.ffmpegArgs[1], " ")
	if !strings.Contains(second, "-ss 30 -t 30") {
		t.Errorf("second segment args = %s", second)
	}
}

func TestModelDefault(t *testing.T) {
	if got := NewService(Config{}, "", "").Model(); got != DefaultModel {
		t.Errorf("Model() = %q, want %q", got, DefaultModel)
	}
	if got := NewService(Config{Model: "small"}, "", "").Model(); got != "small" {
		t.Errorf("Model() = %q, want small", got)
	}
}
