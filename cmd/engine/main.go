package main

import (
	"context"
	"flag"
	"os"

	"github.com/satryanta/geofuse/pkg/fusion"
	"github.com/satryanta/geofuse/pkg/http"
	"github.com/satryanta/geofuse/pkg/http/usecases"
	"github.com/satryanta/geofuse/pkg/logger"
	"github.com/satryanta/geofuse/pkg/matcher"
	"github.com/satryanta/geofuse/pkg/recorder"
	"github.com/satryanta/geofuse/pkg/util"
	"go.uber.org/zap"
)

var (
	roadSnapshot = flag.String("roads", "./data/roads.snapshot", "road snapshot file (optional)")
	recorderDSN  = flag.String("record", "./data/trips.db", "sqlite file for trip recording, empty disables")
	useRateLimit = flag.Bool("rate_limit", false, "enable per-client rate limiting")
)

func main() {
	flag.Parse()

	log, err := logger.New()
	if err != nil {
		panic(err)
	}

	if err := util.ReadConfig(); err != nil {
		log.Warn("no config file, using defaults", zap.Error(err))
	}

	opts := fusion.FromViper()

	m := matcher.NewMatcher(log, opts.SnapConfidenceThreshold, opts.MaxSnapDistance)
	if _, err := os.Stat(*roadSnapshot); err == nil {
		roads, err := matcher.ReadRoads(*roadSnapshot)
		if err != nil {
			panic(err)
		}
		if _, err := m.LoadRoadSegments(roads); err != nil {
			panic(err)
		}
	} else {
		log.Info("no road snapshot, starting with empty road table",
			zap.String("file", *roadSnapshot))
	}

	var rec *recorder.Recorder
	if *recorderDSN != "" {
		rec, err = recorder.New(*recorderDSN, log)
		if err != nil {
			panic(err)
		}
		defer rec.Close()
	}

	positioningService, err := usecases.NewPositioningService(log, opts, m, rec)
	if err != nil {
		panic(err)
	}

	api := http.NewServer(log)

	ctx, cleanup := newContext()
	_, err = api.Use(ctx, log, *useRateLimit, positioningService)
	if err != nil {
		panic(err)
	}

	signal := http.GracefulShutdown()

	log.Info("GeoFuse Positioning Engine Server Stopped", zap.String("signal", signal.String()))
	positioningService.Stop()
	cleanup()
}

func newContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	return ctx, func() {
		cancel()
	}
}
