// SPDX-License-Identifier: MIT

package transport

import "github.com/prometheus/client_golang/prometheus"

var (
	framesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gauge_frames_written_total",
		Help: "Command frames written to the device line.",
	})

	framesRead = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gauge_frames_read_total",
		Help: "Response frames assembled from the device line.",
	})

	commandFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gauge_command_failures_total",
		Help: "Command cycles that ended in a failed response.",
	}, []string{"reason"})

	pollCycles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gauge_poll_cycles_total",
		Help: "Continuous polling cycles executed.",
	})
)

func init() {
	prometheus.MustRegister(framesWritten, framesRead, commandFailures, pollCycles)
}
