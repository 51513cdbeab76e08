package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kaireichart/track-replay/config"
	"github.com/kaireichart/track-replay/events"
	"github.com/kaireichart/track-replay/export"
	"github.com/kaireichart/track-replay/gps"
	"github.com/kaireichart/track-replay/logger"
	"github.com/kaireichart/track-replay/metrics"
	"github.com/kaireichart/track-replay/track"
	"github.com/kaireichart/track-replay/waveform"
)

func main() {
	log := logger.Setup()

	cfg, err := config.Load()
	if err != nil {
		log.Error("config_load_failed", "err", err)
		os.Exit(1)
	}

	tr, err := loadTrack(cfg.Track)
	if err != nil {
		log.Error("track_load_failed", "path", cfg.Track.Path, "err", err)
		os.Exit(1)
	}
	log.Info("track_loaded", "path", cfg.Track.Path, "samples", tr.Len(), "total_km", tr.TotalKm(), "duration", tr.Duration())

	journal, err := events.NewJournal(events.Options{
		LogDir:       cfg.Events.LogDir,
		DatabasePath: cfg.Events.DatabasePath,
		Logger:       log,
	})
	if err != nil {
		log.Error("journal_open_failed", "err", err)
		os.Exit(1)
	}

	server := gps.NewServer(tr, gps.Options{
		CoalesceThreshold: cfg.Playback.CoalesceThresholdSec,
		DisableCoalescing: cfg.Playback.CoalesceThresholdSec == 0,
		FrameInterval:     cfg.FrameInterval(),
		Journal:           journal,
		Logger:            log,
	})

	mux := http.NewServeMux()
	server.SetupHandlers(mux)
	events.SetupHandlers(mux, journal)
	export.SetupHandlers(mux, tr)
	waveform.SetupHandlers(mux, waveform.Options{Width: cfg.Waveform.Width, Height: cfg.Waveform.Height})
	mux.Handle("/metrics", metrics.Handler())

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-c
		log.Info("shutting_down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Close()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Error("http_shutdown_failed", "err", err)
		}
	}()

	log.Info("server_started", "addr", fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server_failed", "err", err)
		server.Close()
	} else {
		// Shutdown drains in-flight handlers before the journal goes away
		<-shutdownDone
	}

	if err := journal.Close(); err != nil {
		log.Error("journal_close_failed", "err", err)
	}
}

// loadTrack reads the configured track; a missing file replays an empty track
func loadTrack(cfg config.TrackConfig) (*track.Track, error) {
	if cfg.Path == "" {
		return track.New(nil), nil
	}
	tr, err := track.LoadFile(cfg.Path, track.LoadOptions{Format: track.Format(cfg.Format), Sort: cfg.Sort})
	if errors.Is(err, os.ErrNotExist) {
		logger.L().Warn("track_missing", "path", cfg.Path)
		return track.New(nil), nil
	}
	return tr, err
}
