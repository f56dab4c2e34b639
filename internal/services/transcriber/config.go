package transcriber

// Command and tuning defaults for local transcription.
const (
	// FFmpegCommand is the default ffmpeg binary name.
	FFmpegCommand = "ffmpeg"
	// FFprobeCommand is the default ffprobe binary name.
	FFprobeCommand = "ffprobe"
	// WhisperCommand is the default whisper CLI binary name.
	WhisperCommand = "whisper"
	// DefaultModel is the whisper model used when none is configured.
	DefaultModel = "base"
	// DefaultSegmentSeconds is the audio segment length fed to whisper.
	// Short segments keep memory bounded and let one bad stretch of audio
	// fail without losing the rest of the recording.
	DefaultSegmentSeconds = 30
)

// Config controls how audio is extracted and transcribed.
type Config struct {
	// Model is the whisper model name (tiny, base, small, ...).
	Model string
	// Language forces a transcription language; empty means auto-detect.
	Language string
	// SegmentSeconds is the length of each audio segment.
	SegmentSeconds int
}

func (c Config) model() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModel
}

func (c Config) segmentSeconds() int {
	if c.SegmentSeconds > 0 {
		return c.SegmentSeconds
	}
	return DefaultSegmentSeconds
}
