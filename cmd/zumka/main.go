package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	audioimpl "github.com/foxseedlab/zumka/external/audio"
	configloader "github.com/foxseedlab/zumka/external/config"
	"github.com/foxseedlab/zumka/external/console"
	"github.com/foxseedlab/zumka/external/microphone"
	transcriberimpl "github.com/foxseedlab/zumka/external/transcriber"
	"github.com/foxseedlab/zumka/internal/audio"
	"github.com/foxseedlab/zumka/internal/config"
	"github.com/foxseedlab/zumka/internal/metrics"
	"github.com/foxseedlab/zumka/internal/session"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

const defaultAudioPath = "assets/sound/speech_00.pcm"

type options struct {
	mic         bool
	deviceID    int
	language    string
	listDevices bool
	print       bool
}

func main() {
	os.Exit(execute(os.Args[1:]))
}

func execute(args []string) int {
	var (
		opts     options
		exitCode int
	)
	cmd := &cobra.Command{
		Use:   "zumka [audio_file]",
		Short: "Stream speech to Yandex SpeechKit and log the transcripts",
		Long: fmt.Sprintf("Recognize speech from an audio file (LPCM, WAV or Ogg/Opus) or a microphone "+
			"using Yandex SpeechKit. The audio file defaults to %s.", defaultAudioPath),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			exitCode = run(cmd, args, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.mic, "mic", false, "capture audio from the microphone instead of a file")
	cmd.Flags().IntVar(&opts.deviceID, "device", microphone.DefaultDevice, "input device index, -1 for the system default")
	cmd.Flags().StringVar(&opts.language, "language", "", "recognition language code, overrides STT_LANGUAGE")
	cmd.Flags().BoolVar(&opts.listDevices, "list-devices", false, "print the audio devices and exit")
	cmd.Flags().BoolVar(&opts.print, "print", false, "print transcripts to stdout")
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		slog.Error("invalid command line", "error", err)
		return 1
	}
	return exitCode
}

func run(cmd *cobra.Command, args []string, opts options) int {
	if opts.listDevices {
		return listDevices(cmd)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		slog.Error("config validation failed", "error", err)
		return 1
	}
	logger := initLogger(cfg)
	logger.Info("startup: configuration loaded", "env", cfg.Env, "address", cfg.Address(), "language", cfg.Language)

	injector := setupDI(cfg, logger, opts)
	defer func() {
		_ = injector.Shutdown()
	}()

	open, err := resolveOpener(logger, injector, args, opts)
	if err != nil {
		logger.Error("failed to prepare audio source", "error", err)
		return 1
	}

	runner, err := do.Invoke[*session.Runner](injector)
	if err != nil {
		logger.Error("failed to resolve session runner", "error", err)
		return 1
	}
	m := do.MustInvoke[*metrics.Metrics](injector)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	m.Serve(ctx, logger, cfg.MetricsAddr)

	logger.Info("start the speech recognition process")
	started := time.Now()
	err = runner.Run(ctx, open)
	logger.Info("speech recognition process finished", "elapsed", time.Since(started).String())
	return session.ExitCode(err)
}

func loadConfig(opts options) (*config.Config, error) {
	cfg, err := configloader.Load()
	if err != nil {
		return nil, err
	}
	if opts.language != "" {
		cfg.Language = opts.language
	}
	return cfg, nil
}

func initLogger(cfg *config.Config) *slog.Logger {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.LogFormat == config.LogFormatText {
		charmLevel := charmlog.InfoLevel
		if cfg.IsDevelopment() {
			charmLevel = charmlog.DebugLevel
		}
		handler = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			Level:           charmLevel,
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func setupDI(cfg *config.Config, logger *slog.Logger, opts options) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, metrics.New())
	audioimpl.RegisterDI(injector)
	microphone.RegisterDI(injector)
	transcriberimpl.RegisterDI(injector)
	if opts.print {
		console.RegisterDI(injector)
	}
	session.RegisterDI(injector)

	return injector
}

func resolveOpener(logger *slog.Logger, injector do.Injector, args []string, opts options) (audio.Opener, error) {
	if opts.mic {
		if err := microphone.CheckDevice(logger, opts.deviceID); err != nil {
			return nil, err
		}
		newOpener, err := do.Invoke[audio.MicrophoneOpenerFactory](injector)
		if err != nil {
			return nil, fmt.Errorf("resolve microphone: %w", err)
		}
		logger.Info("capturing speech from microphone", "device", opts.deviceID)
		return newOpener(opts.deviceID), nil
	}

	path := defaultAudioPath
	if len(args) > 0 {
		path = args[0]
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("audio file not found at %s", path)
	}
	newOpener, err := do.Invoke[audio.FileOpenerFactory](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve audio file reader: %w", err)
	}
	logger.Info("processing speech file", "path", path)
	return newOpener(path), nil
}

func listDevices(cmd *cobra.Command) int {
	devices, err := microphone.ListDevices()
	if err != nil {
		slog.Error("failed to list audio devices", "error", err)
		return 1
	}
	out := cmd.OutOrStdout()
	for _, d := range devices {
		fmt.Fprintf(out, "%d: %s (inputs: %d, %.0f Hz)\n", d.Index, d.Name, d.MaxInputChannels, d.DefaultSampleRate)
	}
	return 0
}
