package whisper_cpp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"media-transcribe/internal/app/api"
	"media-transcribe/internal/app/errors"
	"media-transcribe/internal/app/model"
	"media-transcribe/internal/config"
)

// EngineName is the registry key for the local engine.
const EngineName = config.EngineWhisperCpp

// LocalEngine runs recognition through a local whisper.cpp binary.
type LocalEngine struct {
	binaryPath string
	modelsDir  string
	threads    int
	logger     *zap.Logger

	// resolved by Load
	binary    string
	modelPath string
}

// NewLocalEngine creates a new instance of LocalEngine.
func NewLocalEngine(cfg config.WhisperCppConfig, logger *zap.Logger) *LocalEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalEngine{
		binaryPath: cfg.BinaryPath,
		modelsDir:  cfg.ModelsDir,
		threads:    cfg.Threads,
		logger:     logger,
	}
}

// ModelFileName maps a model size to the ggml weights file whisper.cpp ships.
func ModelFileName(size model.ModelSize) string {
	if size == model.ModelLarge {
		return "ggml-large-v3.bin"
	}
	return "ggml-" + string(size) + ".bin"
}

func (e *LocalEngine) Name() string { return EngineName }

// Load checks that the binary and the weights for cfg.ModelSize are present.
// whisper.cpp loads the weights itself on every invocation.
func (e *LocalEngine) Load(_ context.Context, cfg model.RecognitionConfig) error {
	binary, err := exec.LookPath(e.binaryPath)
	if err != nil {
		return errors.E(errors.KindModelLoad,
			fmt.Sprintf("whisper.cpp binary %s not found", e.binaryPath), err)
	}

	modelPath := filepath.Join(e.modelsDir, ModelFileName(cfg.ModelSize))
	info, err := os.Stat(modelPath)
	if err != nil {
		return errors.E(errors.KindModelLoad,
			fmt.Sprintf("model weights for %s not available at %s", cfg.ModelSize, modelPath), err)
	}
	if info.IsDir() || info.Size() == 0 {
		return errors.Ef(errors.KindModelLoad, nil, "model weights at %s are not a usable file", modelPath)
	}

	e.binary = binary
	e.modelPath = modelPath
	e.logger.Debug("whisper.cpp model ready",
		zap.String("binary", binary),
		zap.String("model_path", modelPath))
	return nil
}

func (e *LocalEngine) args(audioPath string, opts api.Options) []string {
	language := opts.Language
	if language == "" {
		language = config.DefaultLanguage
	}
	args := []string{
		"-m", e.modelPath,
		"-f", audioPath,
		"-l", language,
		"-pp",
	}
	if e.threads > 0 {
		args = append(args, "-t", strconv.Itoa(e.threads))
	}
	return args
}

// Transcribe starts whisper.cpp on audioPath and streams its segments as the
// process prints them.
func (e *LocalEngine) Transcribe(ctx context.Context, audioPath string, opts api.Options) (api.SegmentIterator, error) {
	if e.modelPath == "" {
		return nil, errors.E(errors.KindModelLoad, "whisper.cpp engine used before Load", nil)
	}

	args := e.args(audioPath, opts)
	command := exec.CommandContext(ctx, e.binary, args...) //nolint:gosec
	stdout, err := command.StdoutPipe()
	if err != nil {
		return nil, errors.E(errors.KindTranscription, "failed to attach to whisper.cpp output", err)
	}
	stderr, err := command.StderrPipe()
	if err != nil {
		return nil, errors.E(errors.KindTranscription, "failed to attach to whisper.cpp output", err)
	}

	e.logger.Debug("running whisper.cpp",
		zap.String("command", e.binary+" "+strings.Join(args, " ")))

	if err := command.Start(); err != nil {
		return nil, errors.E(errors.KindTranscription, "failed to start whisper.cpp", err)
	}
	return newStream(ctx, command, stdout, stderr, opts.OnProgress), nil
}
