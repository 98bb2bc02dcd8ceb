package config

import "time"

// Engine names accepted by --engine and the config file.
const (
	EngineWhisperCpp = "whisper_cpp"
	EngineOpenAI     = "openai"
	EngineGemini     = "gemini"
)

// Default configuration constants
const (
	DefaultEngine   = EngineWhisperCpp
	DefaultLanguage = "auto"

	// Codec toolchain
	DefaultFFmpegPath  = "ffmpeg"
	DefaultFFprobePath = "ffprobe"
	DefaultSampleRate  = 16000
	DefaultChannels    = 1

	// whisper.cpp
	DefaultWhisperCppBinary = "whisper-cli"

	// OpenAI specific
	DefaultOpenAIModel   = "whisper-1"
	DefaultOpenAITimeout = 10 * time.Minute

	// Gemini specific
	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultGeminiTimeout = 10 * time.Minute
)

// Engines lists the recognizers the CLI can drive.
func Engines() []string {
	return []string{EngineWhisperCpp, EngineOpenAI, EngineGemini}
}
