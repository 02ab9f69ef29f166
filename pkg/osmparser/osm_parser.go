package osmparser

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/satryanta/geofuse/pkg"
	"github.com/satryanta/geofuse/pkg/datastructure"
	"github.com/satryanta/geofuse/pkg/geo"
	"go.uber.org/zap"
)

// OsmParser reads highway-tagged ways from an openstreetmap pbf extract and
// turns each way into one RoadSegment for the matcher. Three sequential
// scans: first collect the node ids referenced by accepted ways, then
// resolve their coordinates, then assemble the polylines.
type OsmParser struct {
	wayNodeMap      map[int64]struct{}
	acceptedNodeMap map[int64]nodeCoord
}

type nodeCoord struct {
	lat float64
	lon float64
}

func NewOsmParser() *OsmParser {
	return &OsmParser{
		wayNodeMap:      make(map[int64]struct{}),
		acceptedNodeMap: make(map[int64]nodeCoord),
	}
}

var acceptedHighway = map[string]struct{}{
	"motorway": {}, "trunk": {}, "primary": {}, "secondary": {},
	"tertiary": {}, "residential": {}, "service": {}, "unclassified": {},
	"motorway_link": {}, "trunk_link": {}, "primary_link": {},
	"secondary_link": {}, "tertiary_link": {}, "living_street": {},
	"road": {}, "track": {}, "motorroad": {},
}

func acceptOsmWay(way *osm.Way) bool {
	highway := way.Tags.Find("highway")
	if highway == "" {
		return false
	}
	_, ok := acceptedHighway[highway]
	return ok
}

// Parse reads mapFile and returns one road segment per accepted way.
func (p *OsmParser) Parse(mapFile string, logger *zap.Logger) ([]*datastructure.RoadSegment, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := osmpbf.New(context.Background(), f, 0)
	// must not be parallel
	countWays := 0
	for scanner.Scan() {
		o := scanner.Object()
		if o.ObjectID().Type() != osm.TypeWay {
			continue
		}
		way := o.(*osm.Way)
		if len(way.Nodes) < 2 || !acceptOsmWay(way) {
			continue
		}
		if (countWays+1)%50000 == 0 {
			logger.Sugar().Infof("scanning openstreetmap ways: %d...", countWays+1)
		}
		countWays++
		for _, node := range way.Nodes {
			p.wayNodeMap[int64(node.ID)] = struct{}{}
		}
	}
	scanner.Close()

	_, err = f.Seek(0, io.SeekStart)
	if err != nil {
		return nil, err
	}

	scanner = osmpbf.New(context.Background(), f, 0)
	for scanner.Scan() {
		o := scanner.Object()
		if o.ObjectID().Type() != osm.TypeNode {
			continue
		}
		node := o.(*osm.Node)
		if _, ok := p.wayNodeMap[int64(node.ID)]; ok {
			p.acceptedNodeMap[int64(node.ID)] = nodeCoord{lat: node.Lat, lon: node.Lon}
		}
	}
	scanner.Close()

	_, err = f.Seek(0, io.SeekStart)
	if err != nil {
		return nil, err
	}

	roads := make([]*datastructure.RoadSegment, 0, countWays)
	scanner = osmpbf.New(context.Background(), f, 0)
	defer scanner.Close()
	for scanner.Scan() {
		o := scanner.Object()
		if o.ObjectID().Type() != osm.TypeWay {
			continue
		}
		way := o.(*osm.Way)
		if len(way.Nodes) < 2 || !acceptOsmWay(way) {
			continue
		}
		road := p.processWay(way)
		if road != nil {
			roads = append(roads, road)
		}
	}

	logger.Info("openstreetmap extract parsed",
		zap.Int("ways", countWays), zap.Int("roads", len(roads)))
	return roads, nil
}

func (p *OsmParser) processWay(way *osm.Way) *datastructure.RoadSegment {
	points := make([]geo.Coordinate, 0, len(way.Nodes))
	for _, node := range way.Nodes {
		coord, ok := p.acceptedNodeMap[int64(node.ID)]
		if !ok {
			continue
		}
		points = append(points, geo.NewCoordinate(coord.lat, coord.lon))
	}
	if len(points) < 2 {
		return nil
	}

	highway := way.Tags.Find("highway")
	roadType := pkg.GetHighwayType(highway)

	oneWay := false
	if val := way.Tags.Find("oneway"); val == "yes" || val == "-1" {
		oneWay = true
	}

	maxSpeed := pkg.RoadTypeMaxSpeed(roadType)
	if val := way.Tags.Find("maxspeed"); val != "" {
		if ms, err := parseMaxSpeed(val); err == nil {
			maxSpeed = ms
		}
	}

	return datastructure.NewRoadSegment(
		int64(way.ID),
		points,
		roadType,
		maxSpeed,
		oneWay,
		way.Tags.Find("name"),
		way.Tags.Find("ref"),
		way.Tags.Find("addr:housenumber"),
		way.Tags.Find("addr:city"),
		way.Tags.Find("addr:province"),
	)
}

// parseMaxSpeed handles plain km/h values plus the "NN mph" form.
func parseMaxSpeed(val string) (float64, error) {
	val = strings.TrimSpace(val)
	if strings.HasSuffix(val, "mph") {
		num := strings.TrimSpace(strings.TrimSuffix(val, "mph"))
		mph, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, err
		}
		return mph * 1.609344, nil
	}
	return strconv.ParseFloat(val, 64)
}
