package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/koskimas/gltfgen/internal/cmd"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

func main() {
	configFile := flag.String("config", "", "Path to the config file (defaults to gltfgen.yaml in the working directory)")
	debug := flag.Bool("debug", false, "Log every resolved schema")
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		log.Fatal(fmt.Errorf("failed to set up logger: %w", err))
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	wd, err := os.Getwd()
	if err != nil {
		logger.Fatal("failed to determine working directory", zap.Error(err))
	}

	err = cmd.Run(cmd.Settings{
		WorkingDir: wd,
		ConfigFile: *configFile,
		Logger:     logger,
	})

	if err != nil {
		logger.Fatal(err.Error())
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if isatty.IsTerminal(os.Stderr.Fd()) {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	return cfg.Build()
}
