package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	ServiceWhisper = "whisper"
	ServiceGemini  = "gemini"
)

type Config struct {
	Watch   WatchConfig   `yaml:"watch"`
	Queue   QueueConfig   `yaml:"queue"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Lock    LockConfig    `yaml:"lock"`
	Retry   RetryConfig   `yaml:"retry"`
	Whisper WhisperConfig `yaml:"whisper"`
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg"`
	Gemini  GeminiConfig  `yaml:"gemini"`
	Speaker SpeakerConfig `yaml:"speaker"`
	Storage StorageConfig `yaml:"storage"`
	Paths   PathsConfig   `yaml:"paths"`
	Logging LoggingConfig `yaml:"logging"`
}

type WatchConfig struct {
	Directories          []WatchDir   `yaml:"directories"`
	Extensions           []string     `yaml:"extensions"`
	Ignore               IgnoreConfig `yaml:"ignore"`
	StabilityThresholdMS int          `yaml:"stability_threshold_ms"`
	PollIntervalMS       int          `yaml:"poll_interval_ms"`
}

// WatchDir is a watched root plus the processing options applied to files found in it
type WatchDir struct {
	Path             string `yaml:"path"`
	Service          string `yaml:"service"`
	Model            string `yaml:"model"`
	MinSpeakers      int    `yaml:"min_speakers"`
	MaxSpeakers      int    `yaml:"max_speakers"`
	Compress         bool   `yaml:"compress"`
	IdentifySpeakers bool   `yaml:"identify_speakers"`
}

type IgnoreConfig struct {
	Prefixes    []string `yaml:"prefixes"`
	Patterns    []string `yaml:"patterns"`
	Directories []string `yaml:"directories"`
}

type QueueConfig struct {
	InterFileDelayMS int `yaml:"inter_file_delay_ms"`
}

type LedgerConfig struct {
	Path        string   `yaml:"path"`
	LegacyPaths []string `yaml:"legacy_paths"`
}

type LockConfig struct {
	// StaleAfterMinutes enables reclamation of abandoned sentinels; 0 keeps them forever
	StaleAfterMinutes int `yaml:"stale_after_minutes"`
}

type RetryConfig struct {
	MaxRetries  int `yaml:"max_retries"`
	BaseDelayMS int `yaml:"base_delay_ms"`
	MaxDelayMS  int `yaml:"max_delay_ms"`
}

type WhisperConfig struct {
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
}

type FFmpegConfig struct {
	BinaryPath   string `yaml:"binary_path"`
	AudioCodec   string `yaml:"audio_codec"`
	AudioBitrate string `yaml:"audio_bitrate"`
	SampleRate   int    `yaml:"sample_rate"`
}

type GeminiConfig struct {
	APIKeys            []string `yaml:"api_keys"`
	Model              string   `yaml:"model"`
	TranscriptionModel string   `yaml:"transcription_model"`
	Language           string   `yaml:"language"`
}

type SpeakerConfig struct {
	PythonPath       string  `yaml:"python_path"`
	ScriptPath       string  `yaml:"script_path"`
	ProfilesDir      string  `yaml:"profiles_dir"`
	Threshold        float64 `yaml:"threshold"`
	HuggingFaceToken string  `yaml:"huggingface_token"`
}

type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type PathsConfig struct {
	Output string `yaml:"output"`
	Temp   string `yaml:"temp"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

func (c *Config) Validate() error {
	if len(c.Watch.Directories) == 0 {
		return fmt.Errorf("watch.directories requires at least one entry")
	}
	usesWhisper := false
	for i := range c.Watch.Directories {
		dir := &c.Watch.Directories[i]
		if strings.TrimSpace(dir.Path) == "" {
			return fmt.Errorf("watch.directories[%d].path is required", i)
		}
		dir.Path = absPath(ExpandPath(dir.Path))
		if dir.Service == "" {
			dir.Service = ServiceGemini
		}
		switch dir.Service {
		case ServiceWhisper:
			usesWhisper = true
		case ServiceGemini:
		default:
			return fmt.Errorf("watch.directories[%d].service %q is not supported", i, dir.Service)
		}
		if dir.MinSpeakers < 0 || dir.MaxSpeakers < 0 {
			return fmt.Errorf("watch.directories[%d]: speaker limits must not be negative", i)
		}
		if dir.MaxSpeakers > 0 && dir.MinSpeakers > dir.MaxSpeakers {
			return fmt.Errorf("watch.directories[%d]: min_speakers exceeds max_speakers", i)
		}
	}
	if usesWhisper {
		if c.Whisper.ModelPath == "" {
			return fmt.Errorf("whisper.model_path is required")
		}
		if c.Whisper.BinaryPath == "" {
			return fmt.Errorf("whisper.binary_path is required")
		}
	}
	if len(c.Gemini.APIKeys) == 0 {
		return fmt.Errorf("gemini.api_keys is required")
	}
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}
	if c.Storage.Endpoint != "" && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage.endpoint is set")
	}

	if len(c.Watch.Extensions) == 0 {
		c.Watch.Extensions = []string{".m4a", ".mp3", ".wav", ".aac", ".flac", ".ogg", ".mp4", ".mov", ".webm"}
	}
	if len(c.Watch.Ignore.Prefixes) == 0 {
		c.Watch.Ignore.Prefixes = []string{".", "~$"}
	}
	if c.Watch.StabilityThresholdMS == 0 {
		c.Watch.StabilityThresholdMS = 2000
	}
	if c.Watch.PollIntervalMS == 0 {
		c.Watch.PollIntervalMS = 500
	}
	if c.Queue.InterFileDelayMS == 0 {
		c.Queue.InterFileDelayMS = 1000
	}
	if c.Ledger.Path == "" {
		c.Ledger.Path = "./processed_log.ndjson"
	}
	c.Ledger.Path = ExpandPath(c.Ledger.Path)
	if c.Retry.MaxRetries == 0 {
		c.Retry.MaxRetries = 3
	}
	if c.Retry.BaseDelayMS == 0 {
		c.Retry.BaseDelayMS = 1000
	}
	if c.Retry.MaxDelayMS == 0 {
		c.Retry.MaxDelayMS = 30000
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "auto"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 8
	}
	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.AudioCodec == "" {
		c.FFmpeg.AudioCodec = "aac"
	}
	if c.FFmpeg.AudioBitrate == "" {
		c.FFmpeg.AudioBitrate = "64k"
	}
	if c.FFmpeg.SampleRate == 0 {
		c.FFmpeg.SampleRate = 16000
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Gemini.TranscriptionModel == "" {
		c.Gemini.TranscriptionModel = c.Gemini.Model
	}
	if c.Speaker.PythonPath == "" {
		c.Speaker.PythonPath = "python3"
	}
	if c.Speaker.ProfilesDir == "" {
		c.Speaker.ProfilesDir = "~/.summarai/profiles"
	}
	if c.Speaker.Threshold == 0 {
		c.Speaker.Threshold = 0.70
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	c.Paths.Output = ExpandPath(c.Paths.Output)
	c.Paths.Temp = ExpandPath(c.Paths.Temp)
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}

// DirectoryFor returns the watch directory whose path contains filePath,
// preferring the most specific root
func (c *Config) DirectoryFor(filePath string) (WatchDir, bool) {
	filePath = absPath(filePath)
	var best WatchDir
	found := false
	for _, dir := range c.Watch.Directories {
		if !isWithin(dir.Path, filePath) {
			continue
		}
		if !found || len(dir.Path) > len(best.Path) {
			best = dir
			found = true
		}
	}
	return best, found
}

// WatchPaths returns the configured root paths
func (c *Config) WatchPaths() []string {
	paths := make([]string, 0, len(c.Watch.Directories))
	for _, dir := range c.Watch.Directories {
		paths = append(paths, dir.Path)
	}
	return paths
}

func (c *Config) StabilityThreshold() time.Duration {
	return time.Duration(c.Watch.StabilityThresholdMS) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Watch.PollIntervalMS) * time.Millisecond
}

func (c *Config) InterFileDelay() time.Duration {
	return time.Duration(c.Queue.InterFileDelayMS) * time.Millisecond
}

func (c *Config) StaleLockAfter() time.Duration {
	return time.Duration(c.Lock.StaleAfterMinutes) * time.Minute
}

func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.Retry.BaseDelayMS) * time.Millisecond
}

func (c *Config) RetryMaxDelay() time.Duration {
	return time.Duration(c.Retry.MaxDelayMS) * time.Millisecond
}
