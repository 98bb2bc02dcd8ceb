package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"media-transcribe/internal/app"
	"media-transcribe/internal/app/converter"
	"media-transcribe/internal/app/errors"
	"media-transcribe/internal/app/format"
	"media-transcribe/internal/app/logger"
	"media-transcribe/internal/app/model"
	"media-transcribe/internal/app/report"
	"media-transcribe/internal/app/util/files"
	"media-transcribe/internal/config"
)

var version = "v0.1.0"

// Exit statuses.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitUsageError = 2
)

type options struct {
	model       string
	output      string
	engine      string
	language    string
	configPath  string
	metricsFile string
	verbose     bool
	noProgress  bool
}

// NewRootCmd builds the transcribe command writing to stdout and stderr.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "transcribe INPUT",
		Short: "Transcribe an audio or video file to text with Whisper",
		Long: `Transcribe an audio or video file to text with Whisper.

Supported formats: ` + strings.ToUpper(strings.ReplaceAll(strings.Join(format.SupportedExtensions(), ", "), ".", "")) + `

The input is decoded with ffmpeg, recognized with whisper.cpp (or the OpenAI
transcription API with --engine openai, or Gemini with --engine gemini) and
written next to the input as <name>.txt unless --output is given.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return errors.E(errors.KindInvalidInput, "", err)
			}
			if err := files.CheckInputFile(args[0]); err != nil {
				return err
			}
			// Reject unsupported inputs before any configuration is loaded.
			_, err := format.Resolve(args[0])
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd, args[0], opts, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.E(errors.KindInvalidInput, "", err)
	})

	modelNames := make([]string, 0, len(model.ModelSizes()))
	for _, size := range model.ModelSizes() {
		modelNames = append(modelNames, string(size))
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.model, "model", string(model.DefaultModelSize),
		"Whisper model to use for transcription ("+strings.Join(modelNames, ", ")+")")
	flags.StringVarP(&opts.output, "output", "o", "", "Output file path (default: input_name.txt)")
	flags.StringVar(&opts.engine, "engine", "", "Recognition engine ("+strings.Join(config.Engines(), ", ")+"; default from config, "+config.DefaultEngine+")")
	flags.StringVar(&opts.language, "language", "", "Spoken language code, or auto to detect (default from config, "+config.DefaultLanguage+")")
	flags.StringVar(&opts.configPath, "config", "", "Config file (default $TRANSCRIBE_CONFIG or ~/.config/transcribe/config.yaml)")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")
	flags.BoolVarP(&opts.verbose, "verbose", "V", false, "verbose output")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "Disable progress bars")

	_ = cmd.RegisterFlagCompletionFunc("model", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return modelNames, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("engine", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return config.Engines(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runTranscribe(cmd *cobra.Command, input string, opts *options, stdout, stderr io.Writer) error {
	size, err := model.ParseModelSize(opts.model)
	if err != nil {
		return errors.E(errors.KindInvalidInput, "", err)
	}

	log, err := logger.NewLogger(opts.verbose)
	if err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	defer func() { _ = log.Sync() }()

	cfg, err := loadConfig(cmd, opts, log)
	if err != nil {
		return err
	}

	var metrics *report.Metrics
	if opts.metricsFile != "" {
		metrics = report.NewMetrics()
	}

	recognition := model.RecognitionConfig{ModelSize: size, Language: cfg.Language}
	progress := converter.ProgressConfig{
		Enabled: converter.ShouldShowProgress(opts.noProgress),
		Writer:  stderr,
	}
	conv, err := app.InitializeConverter(cfg, recognition, progress, metrics, log)
	if err != nil {
		return err
	}
	conv.WithOutput(stdout).WithColor(converter.IsTTY(stdout))

	_, runErr := conv.Do(cmd.Context(), converter.Request{InputPath: input, OutputPath: opts.output})

	if metrics != nil {
		if err := metrics.WriteTextfile(opts.metricsFile); err != nil {
			log.Warn("metrics not written", zap.String("path", opts.metricsFile), zap.Error(err))
		}
	}
	return runErr
}

// loadConfig layers .env, the config file, the environment and flags, in
// that order, and validates the result.
func loadConfig(cmd *cobra.Command, opts *options, log *zap.Logger) (*config.Config, error) {
	envPath, err := config.LoadEnv()
	if err != nil {
		return nil, errors.E(errors.KindConfig, "", err)
	}
	if envPath != "" {
		log.Debug("loaded environment file", zap.String("path", envPath))
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("engine") {
		cfg.Engine = opts.engine
	}
	if cmd.Flags().Changed("language") {
		cfg.Language = opts.language
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Debug("configuration loaded",
		zap.String("engine", cfg.Engine),
		zap.String("language", cfg.Language))
	return cfg, nil
}

// ExitCode maps an error returned by the command to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.IsCallerError(err):
		return ExitUsageError
	default:
		return ExitFailure
	}
}

// Run executes the command with args and returns the exit status.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return ExitCode(err)
}

// Execute runs the command against the process arguments. Interrupts cancel
// the run context, which stops child processes and removes temporary audio.
// This is called by main.main().
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
