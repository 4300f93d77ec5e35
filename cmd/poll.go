// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hipstereclipse/PythonSerialPortTest-sub000/pkg/gauges"
)

var (
	pollInterval  time.Duration
	pollCount     int
	metricsListen string
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Continuously read the family's live value",
	Long: `Poll the family's continuous command (the pressure reading for
gauges, the rotation speed for the turbo controller) and print each
reading with a timestamp. Failed cycles are printed and polling
continues.

With --metrics-listen, transport counters are served on /metrics in
Prometheus format for scraping while the poll runs.`,
	RunE: runPoll,
}

func init() {
	pollCmd.Flags().DurationVar(&pollInterval, "interval", time.Second, "Time between reads")
	pollCmd.Flags().IntVar(&pollCount, "count", 0, "Stop after this many readings (0 = until interrupted)")
	pollCmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "Serve Prometheus metrics on this address, e.g. :9090")
	rootCmd.AddCommand(pollCmd)
}

func runPoll(cmd *cobra.Command, args []string) error {
	dev, info, err := openDevice()
	if err != nil {
		return err
	}
	defer closeDevice(dev)

	fmt.Printf("Connection: %s\n", info)
	fmt.Printf("Polling every %s, press Ctrl+C to stop\n\n", pollInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var delivered int64
	sink := func(r gauges.DeviceResponse) {
		ts := time.Now().Format("15:04:05.000")
		if r.Success {
			fmt.Printf("[%s] %s\n", ts, r.Formatted)
		} else {
			fmt.Printf("[%s] error: %s\n", ts, r.Err)
		}
		if pollCount > 0 && atomic.AddInt64(&delivered, 1) >= int64(pollCount) {
			cancel()
		}
	}

	if err := dev.StartContinuous(pollInterval, sink); err != nil {
		return err
	}
	defer dev.StopContinuous()

	g, ctx := errgroup.WithContext(ctx)

	if metricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: metricsListen, Handler: mux}

		g.Go(func() error {
			err := srv.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
		g.Go(func() error {
			<-ctx.Done()
			return srv.Close()
		})
	}

	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sig)

		select {
		case <-sig:
			cancel()
		case <-ctx.Done():
		}
		return nil
	})

	return g.Wait()
}
