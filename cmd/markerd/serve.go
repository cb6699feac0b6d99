package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mapmarks/overlay/internal/config"
	"github.com/mapmarks/overlay/internal/influx"
	"github.com/mapmarks/overlay/internal/metrics"
	"github.com/mapmarks/overlay/internal/server"
	"github.com/mapmarks/overlay/internal/storage"
	"github.com/mapmarks/overlay/internal/telemetry"
	"github.com/mapmarks/overlay/internal/web"
)

const shutdownTimeout = 10 * time.Second

var (
	serveAddr       string
	serveWithBridge bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the annotation server",
	Long: `Serves the map page, the marker and memory API, the visible-marker
endpoints and the memory trigger polled by the LED bridge.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cleanup, err := setup(ExtensionName)
		defer cleanup()
		if err != nil {
			return err
		}

		rec, err := metrics.New()
		if err != nil {
			return err
		}

		store, err := createStorageBackend(config.GetStorageConfig())
		if err != nil {
			Logger.Error("Failed to create storage backend", "error", err)
			return err
		}
		if err := store.Init(); err != nil {
			Logger.Error("Failed to initialize storage backend", "error", err)
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				Logger.Warn("Failed to close storage backend", "error", err)
			}
		}()

		var recorders []storage.VisibilityRecorder
		if vr, ok := store.(storage.VisibilityRecorder); ok {
			recorders = append(recorders, vr)
		}

		im := influx.NewManager(ZLogger, viper.GetString("influx.backupPath"))
		switch err := im.Connect(); {
		case errors.Is(err, influx.ErrDisabled):
			Logger.Debug("InfluxDB disabled")
		case err != nil:
			Logger.Warn("Failed to set up InfluxDB, visibility history not exported", "error", err)
		default:
			recorders = append(recorders, im)
			defer func() { _ = im.Close() }()
		}

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		writer := telemetry.New(Logger, recorders...)
		writerDone := make(chan struct{})
		go func() {
			writer.Run(ctx)
			close(writerDone)
		}()
		// the queue is flushed before the recorders are closed
		defer func() {
			stop()
			<-writerDone
		}()

		sc := config.GetServerConfig()
		if serveAddr != "" {
			sc.Addr = serveAddr
		}
		pc := config.GetPageConfig()
		srv := server.New(server.Config{
			Addr:      sc.Addr,
			StaticDir: sc.StaticDir,
			AllowAll:  sc.AllowAllOrigins,
			Page: web.PageOptions{
				MapDivID:     pc.MapDivID,
				MapVarName:   pc.MapVarName,
				CenterLat:    pc.CenterLat,
				CenterLon:    pc.CenterLon,
				Zoom:         pc.Zoom,
				StaticPrefix: "/static",
				GeocoderURL:  viper.GetString("geocoder.url"),
			},
		}, store, Logger, rec, writer)

		if serveWithBridge || config.GetBridgeConfig().Enabled {
			go func() {
				if err := runBridge(ctx, config.GetBridgeConfig(), rec); err != nil && !errors.Is(err, context.Canceled) {
					Logger.Error("LED bridge stopped", "error", err)
				}
			}()
		}

		go func() {
			<-ctx.Done()
			Logger.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				Logger.Warn("Server shutdown incomplete", "error", err)
			}
		}()

		Logger.Info("markerd starting", "version", Version, "addr", sc.Addr,
			"storage", config.GetStorageConfig().Type, "static", sc.StaticDir)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides server.addr")
	serveCmd.Flags().BoolVar(&serveWithBridge, "with-bridge", false, "also run the LED bridge in this process")
	rootCmd.AddCommand(serveCmd)
}
