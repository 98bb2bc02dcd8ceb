package main

import (
	"os"

	"media-transcribe/cmd/transcribe/cmd"

	// Import engines to register them
	_ "media-transcribe/internal/app/api/gemini"
	_ "media-transcribe/internal/app/api/openai/whisper"
	_ "media-transcribe/internal/app/api/whisper_cpp"
)

func main() {
	os.Exit(cmd.Execute())
}
