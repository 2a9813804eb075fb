// Command corelxd is the headless daemon wiring Engine and Runtime to a
// real audio device (or a WAV file) and an optional live-coding
// front end. Flag handling follows the retrieval pack's small-CLI
// convention (cbegin-mmlfm-go's cmd/play_mml), generalized to a
// long-running daemon with signal-based graceful shutdown instead of a
// one-shot playback command.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kestrelaudio/corelx/internal/config"
	"github.com/kestrelaudio/corelx/internal/engine"
	"github.com/kestrelaudio/corelx/internal/logging"
	"github.com/kestrelaudio/corelx/internal/runtime"
	"github.com/kestrelaudio/corelx/internal/samplepack"
)

func main() {
	var (
		configPath = flag.String("config", "corelx.yaml", "path to YAML config file")
		bpm        = flag.Float64("bpm", 120, "initial tempo in beats per minute")
		samplesDir = flag.String("samples", "", "directory of sample packs to preload (subdirectories are pack names)")
		record     = flag.Bool("record", false, "start WAV recording immediately")
	)
	flag.Parse()

	if err := run(*configPath, *bpm, *samplesDir, *record); err != nil {
		fmt.Fprintln(os.Stderr, "corelxd:", err)
		os.Exit(1)
	}
}

func run(configPath string, bpm float64, samplesDir string, record bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(os.Stderr, "corelxd")
	logger.SetLevel(parseLevel(cfg.Logging.Level))

	eng := engine.New(logger)
	if err := eng.Init(cfg); err != nil {
		return fmt.Errorf("init engine: %w", err)
	}

	if samplesDir != "" {
		mgr := samplepack.NewManager()
		entries, err := os.ReadDir(samplesDir)
		if err != nil {
			return fmt.Errorf("read samples dir: %w", err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			n, err := mgr.LoadPack(entry.Name(), samplesDir+"/"+entry.Name())
			if err != nil {
				logger.Warnf("load pack %q: %v", entry.Name(), err)
				continue
			}
			logger.Infof("loaded pack %q: %d samples", entry.Name(), n)
		}
	}

	rt := runtime.New(eng, runtime.NoopEvaluator{}, bpm, logger)

	eng.Start()
	go rt.Run()

	if record {
		if err := eng.StartRecording(cfg.Recording.Directory); err != nil {
			logger.Warnf("start recording: %v", err)
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logger.Infof("shutting down")
	rt.Stop()
	eng.Stop()
	return nil
}

func parseLevel(s string) logging.Level {
	switch s {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}
