// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"

	"gitlab.com/jaxnet/headermmr/config"
	"gitlab.com/jaxnet/headermmr/node"
	"gitlab.com/jaxnet/headermmr/version"
)

func main() {
	// Use all processor cores.
	runtime.GOMAXPROCS(runtime.NumCPU())

	// Work around defer not working after os.Exit()
	if err := headerMMRMain(); err != nil {
		fmt.Println("FATAL:", err)
		os.Exit(1)
	}
}

// headerMMRMain is the real main function for headermmrd.  It is necessary to
// work around the fact that deferred functions do not run when os.Exit() is
// called.
func headerMMRMain() error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return err
	}

	defer config.Log.Info().Msg("Shutdown complete")

	// Show version at startup.
	config.Log.Info().Msgf("Version %s", version.GetVersion())

	// Enable http profiling server if requested.
	if cfg.Profile != "" {
		go func() {
			listenAddr := net.JoinHostPort("", cfg.Profile)
			config.Log.Info().Msgf("Profile server listening on %s", listenAddr)
			profileRedirect := http.RedirectHandler("/debug/pprof",
				http.StatusSeeOther)
			http.Handle("/", profileRedirect)
			err := http.ListenAndServe(listenAddr, nil)
			if err != nil {
				config.Log.Error().Err(err).Msg("listen and serve failed")
			}
		}()
	}

	// Write cpu profile if requested.
	if cfg.CPUProfile != "" {
		f, err := os.Create(cfg.CPUProfile)
		if err != nil {
			config.Log.Error().Err(err).Msg("Unable to create cpu profile")
			return err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return err
		}
		defer f.Close()
		defer pprof.StopCPUProfile()
	}

	// Get a channel that will be closed when a shutdown signal has been
	// triggered either from an OS signal such as SIGINT (Ctrl+C) or from
	// another subsystem.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := interruptListener(config.Log.With().Str("ctx", "interruptListener").Logger())
	go func() {
		select {
		case <-sigChan:
			config.Log.Info().Msg("propagate stop signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	controller := node.Controller(config.Log.With().Str("ctx", "NodeController").Logger()).
		OnShutdownRequest(requestShutdown)
	if err := controller.Run(ctx, cfg); err != nil {
		config.Log.Error().Err(err).Msg("Can't run indexer")
		return err
	}

	return nil
}
