// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
)

// shutdownRequests carries the reason a subsystem wants the daemon to stop.
// It is handled exactly like an interrupt signal.
var shutdownRequests = make(chan string, 1)

var interruptSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// requestShutdown asks the interrupt listener to stop the daemon.  Requests
// made while one is already pending are dropped.
func requestShutdown(reason string) {
	select {
	case shutdownRequests <- reason:
	default:
	}
}

// interruptListener returns a channel that is closed on SIGINT, SIGTERM or
// the first shutdown request.  Later signals are only logged, so a stuck
// shutdown is visible to the operator.
func interruptListener(log zerolog.Logger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, interruptSignals...)

		select {
		case sig := <-signals:
			log.Info().Str("signal", sig.String()).Msg("Shutting down")
		case reason := <-shutdownRequests:
			log.Warn().Str("reason", reason).Msg("Shutdown requested")
		}
		close(done)

		for {
			select {
			case sig := <-signals:
				log.Info().Str("signal", sig.String()).Msg("Already shutting down")
			case reason := <-shutdownRequests:
				log.Info().Str("reason", reason).Msg("Already shutting down")
			}
		}
	}()

	return done
}
