package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mapmarks/overlay/internal/api"
	"github.com/mapmarks/overlay/internal/bridge"
	"github.com/mapmarks/overlay/internal/config"
	"github.com/mapmarks/overlay/internal/metrics"
)

const bridgeRequestTimeout = 5 * time.Second

var (
	bridgeDevice    string
	bridgeServerURL string
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Drive the LED strip from a running server",
	Long: `Polls the server for the visible markers and the memory trigger and
writes one 50-byte frame per tick to the serial device.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cleanup, err := setup(ExtensionName + "_bridge")
		defer cleanup()
		if err != nil {
			return err
		}

		rec, err := metrics.New()
		if err != nil {
			return err
		}

		bc := config.GetBridgeConfig()
		if bridgeDevice != "" {
			bc.Device = bridgeDevice
		}
		if bridgeServerURL != "" {
			bc.ServerURL = bridgeServerURL
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err = runBridge(ctx, bc, rec)
		if errors.Is(err, context.Canceled) {
			Logger.Info("LED bridge stopped")
			return nil
		}
		return err
	},
}

func runBridge(ctx context.Context, bc config.BridgeConfig, rec *metrics.Recorder) error {
	client := api.New(bc.ServerURL, bridgeRequestTimeout)
	if err := client.Healthcheck(); err != nil {
		Logger.Warn("Server not reachable yet, bridge will keep polling", "url", bc.ServerURL, "error", err)
	}
	Logger.Info("LED bridge starting", "device", bc.Device, "server", bc.ServerURL, "interval", bc.Interval)
	return bridge.New(client, bridge.OpenDevice(bc.Device), Logger, rec).
		WithTimings(bc.Interval, 0).
		Run(ctx)
}

func init() {
	bridgeCmd.Flags().StringVar(&bridgeDevice, "device", "", "serial device, overrides bridge.device")
	bridgeCmd.Flags().StringVar(&bridgeServerURL, "server", "", "server URL, overrides bridge.serverUrl")
	rootCmd.AddCommand(bridgeCmd)
}
