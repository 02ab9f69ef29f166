package main

import (
	"flag"

	"github.com/satryanta/geofuse/pkg/fusion"
	"github.com/satryanta/geofuse/pkg/logger"
	"github.com/satryanta/geofuse/pkg/matcher"
	"github.com/satryanta/geofuse/pkg/osmparser"
	"go.uber.org/zap"
)

var (
	osmFile = flag.String("osm", "./data/extract.osm.pbf", "openstreetmap pbf extract")
	outFile = flag.String("out", "./data/roads.snapshot", "road snapshot output file")
)

// Prepares a road snapshot: parse the highway ways of an osm extract and
// write them as a compressed snapshot the engine server loads at startup.
func main() {
	flag.Parse()

	log, err := logger.New()
	if err != nil {
		panic(err)
	}

	parser := osmparser.NewOsmParser()
	roads, err := parser.Parse(*osmFile, log)
	if err != nil {
		panic(err)
	}

	opts := fusion.DefaultOptions()
	m := matcher.NewMatcher(log, opts.SnapConfidenceThreshold, opts.MaxSnapDistance)
	if _, err := m.LoadRoadSegments(roads); err != nil {
		panic(err)
	}

	if err := m.WriteRoads(*outFile); err != nil {
		panic(err)
	}

	// read back as a sanity check
	readBack, err := matcher.ReadRoads(*outFile)
	if err != nil {
		panic(err)
	}
	log.Info("road snapshot written", zap.String("file", *outFile),
		zap.Int("roads", len(readBack)))
}
