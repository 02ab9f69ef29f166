package matcher

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/satryanta/geofuse/pkg"
	"github.com/satryanta/geofuse/pkg/datastructure"
	"github.com/satryanta/geofuse/pkg/geo"
	"github.com/satryanta/geofuse/pkg/util"
)

// Road snapshot format, bzip2-compressed text. One header line with the road
// count, then per road: a numeric line (id, point count, road type, max
// speed, one-way flag), five raw string lines (name, ref, street number,
// locality, admin area — they may contain spaces), then one "lat lon" line
// per point.

// WriteRoads writes every road of the matcher to filename.
func (m *Matcher) WriteRoads(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}
	defer bz.Close()

	w := bufio.NewWriter(bz)

	fmt.Fprintf(w, "%d\n", len(m.roads))
	for _, road := range m.roads {
		oneWay := 0
		if road.OneWay() {
			oneWay = 1
		}
		fmt.Fprintf(w, "%d %d %d %f %d\n", road.ID(), road.NumPoints(),
			road.RoadType(), road.MaxSpeed(), oneWay)
		fmt.Fprintf(w, "%s\n%s\n%s\n%s\n%s\n", road.Name(), road.Ref(),
			road.StreetNumber(), road.Locality(), road.AdminArea())
		for _, p := range road.Points() {
			fmt.Fprintf(w, "%f %f\n", p.GetLat(), p.GetLon())
		}
	}

	return w.Flush()
}

// ReadRoads reads a snapshot written by WriteRoads and returns its roads in
// file order. It does not touch any matcher; callers pass the result to
// LoadRoadSegments.
func ReadRoads(filename string) ([]*datastructure.RoadSegment, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(bz)

	line, err := util.ReadLine(br)
	if err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "bad road count %q", line)
	}

	roads := make([]*datastructure.RoadSegment, 0, count)
	for i := 0; i < count; i++ {
		line, err = util.ReadLine(br)
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "bad road header %q", line)
		}
		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, err
		}
		numPoints, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, err
		}
		roadType, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, err
		}
		maxSpeed, err := util.StringToFloat64(fields[3])
		if err != nil {
			return nil, err
		}
		oneWay := fields[4] == "1"

		var name, ref, streetNumber, locality, adminArea string
		for _, dst := range []*string{&name, &ref, &streetNumber, &locality, &adminArea} {
			line, err = util.ReadLine(br)
			if err != nil {
				return nil, err
			}
			*dst = line
		}

		points := make([]geo.Coordinate, 0, numPoints)
		for j := 0; j < numPoints; j++ {
			line, err = util.ReadLine(br)
			if err != nil {
				return nil, err
			}
			coordFields := strings.Fields(line)
			if len(coordFields) != 2 {
				return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "bad coordinate %q", line)
			}
			lat, err := util.StringToFloat64(coordFields[0])
			if err != nil {
				return nil, err
			}
			lon, err := util.StringToFloat64(coordFields[1])
			if err != nil {
				return nil, err
			}
			points = append(points, geo.NewCoordinate(lat, lon))
		}

		roads = append(roads, datastructure.NewRoadSegment(id, points,
			pkg.OsmHighwayType(roadType), maxSpeed, oneWay, name, ref,
			streetNumber, locality, adminArea))
	}

	return roads, nil
}
