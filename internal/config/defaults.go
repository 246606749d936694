package config

import "runtime"

const (
	defaultConfigPath      = "~/.config/splyt/config.toml"
	projectConfigName      = "splyt.toml"
	defaultFFmpegBinary    = "ffmpeg"
	defaultClipConcurrency = 1
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
)

func Default() Config {
	return Config{
		Paths:   Paths{OutputDir: DefaultOutputDir(runtime.GOOS)},
		FFmpeg:  FFmpeg{Binary: defaultFFmpegBinary},
		Clip:    Clip{Concurrency: defaultClipConcurrency},
		Logging: Logging{Level: defaultLogLevel, Format: defaultLogFormat},
	}
}

// DefaultOutputDir is where videos land when nothing else is configured:
// the user's movies folder on macOS, videos folder on Windows and a
// dedicated home directory elsewhere.
func DefaultOutputDir(goos string) string {
	switch goos {
	case "darwin":
		return "~/Movies/splyt"
	case "windows":
		return "~/Videos/splyt"
	default:
		return "~/splyt"
	}
}
