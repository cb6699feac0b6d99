package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mapmarks/overlay/internal/config"
	"github.com/mapmarks/overlay/internal/logging"
)

const ExtensionName = "markerd"

var (
	configDir string
	logLevel  string

	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// ZLogger is handed to the database and influx managers
	ZLogger zerolog.Logger

	SessionStartTime = time.Now()
)

var rootCmd = &cobra.Command{
	Use:   "markerd",
	Short: "Map annotation server and LED bridge",
	Long: `markerd serves the annotated map page and its marker API, collects the
visible-marker reports sent by the overlay and drives the LED strip that
mirrors them.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory containing "+config.FileName)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logLevel from the config file")
}

// setup loads the config and starts logging for component. The returned
// func flushes and closes every log sink.
func setup(component string) (func(), error) {
	cfgErr := config.Load(configDir)
	if logLevel != "" {
		viper.Set("logLevel", logLevel)
	}
	level := viper.GetString("logLevel")

	logFile, logPath, err := logging.OpenLogFile(viper.GetString("logsDir"), component, SessionStartTime)
	if err != nil {
		return func() {}, fmt.Errorf("opening log file: %w", err)
	}

	SlogManager = logging.NewSlogManager()
	SlogManager.SetContextProvider(func() []slog.Attr {
		return []slog.Attr{slog.String("storage", viper.GetString("storage.type"))}
	})
	var extra []logging.Sink
	var gelfErr error
	if viper.GetBool("graylog.enabled") {
		sink, err := SlogManager.AddGELF(viper.GetString("graylog.address"), level)
		if err != nil {
			gelfErr = err
		} else {
			extra = append(extra, sink)
		}
	}
	SlogManager.Setup(io.MultiWriter(os.Stdout, logFile), level, extra...)
	Logger = SlogManager.Logger()
	ZLogger = logging.NewZerolog(level, logFile, os.Stdout)

	if cfgErr != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", cfgErr)
	} else {
		Logger.Info("Loaded config", "dir", configDir)
	}
	if gelfErr != nil {
		Logger.Warn("Failed to connect to Graylog", "error", gelfErr, "address", viper.GetString("graylog.address"))
	}
	Logger.Info("Logging to file", "path", logPath)

	return func() {
		_ = SlogManager.Close(context.Background())
		_ = logFile.Close()
	}, nil
}
