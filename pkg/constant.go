package pkg

const (
	// WGS-84 equatorial radius, meter
	EARTH_RADIUS_M = 6378137.0

	// flat conversion between meters and degrees used by the kalman filter
	METER_PER_DEGREE = 111320.0
	// coarser conversion used when sizing grid queries
	METER_PER_DEGREE_GRID = 111000.0

	GRID_CELL_SIZE_DEG = 0.01

	SNAP_SEARCH_RADIUS_M = 50.0
	GPS_SIGMA_M          = 10.0

	GPS_HEADING_TRUST  = 0.7
	ACCEL_NOISE_GATE   = 0.15 // m/s^2
	IMU_MAX_STEP_SEC   = 2.0
	MIN_ACCURACY_M     = 1e-9
	SMOOTHER_WINDOW    = 10
	NO_ROAD_ID         = -1
)

const (
	DEBUG = false
)

// positioning priority requested from the platform location subsystem
type Priority uint8

const (
	PRIORITY_HIGH Priority = iota
	PRIORITY_BALANCED
)

func (p Priority) String() string {
	switch p {
	case PRIORITY_HIGH:
		return "HIGH_ACCURACY"
	case PRIORITY_BALANCED:
		return "BALANCED"
	}
	return "UNKNOWN"
}

type OsmHighwayType uint8

// enum buat osm highway: https://wiki.openstreetmap.org/wiki/OSM_tags_for_routing/Telenav
const (
	MOTORWAY       OsmHighwayType = 0
	TRUNK          OsmHighwayType = 1
	PRIMARY        OsmHighwayType = 2
	SECONDARY      OsmHighwayType = 3
	TERTIARY       OsmHighwayType = 4
	RESIDENTIAL    OsmHighwayType = 5
	SERVICE        OsmHighwayType = 6
	UNCLASSIFIED   OsmHighwayType = 7
	MOTORWAY_LINK  OsmHighwayType = 8
	TRUNK_LINK     OsmHighwayType = 9
	PRIMARY_LINK   OsmHighwayType = 10
	SECONDARY_LINK OsmHighwayType = 11
	TERTIARY_LINK  OsmHighwayType = 12
	LIVING_STREET  OsmHighwayType = 13
	ROAD           OsmHighwayType = 14
	TRACK          OsmHighwayType = 15
	MOTORROAD      OsmHighwayType = 16
	UNKNOWN        OsmHighwayType = 17
)

func GetHighwayType(roadType string) OsmHighwayType {
	switch roadType {
	case "motorway":
		return MOTORWAY
	case "trunk":
		return TRUNK
	case "primary":
		return PRIMARY
	case "secondary":
		return SECONDARY
	case "tertiary":
		return TERTIARY
	case "residential":
		return RESIDENTIAL
	case "service":
		return SERVICE
	case "unclassified":
		return UNCLASSIFIED
	case "motorway_link":
		return MOTORWAY_LINK
	case "trunk_link":
		return TRUNK_LINK
	case "primary_link":
		return PRIMARY_LINK
	case "secondary_link":
		return SECONDARY_LINK
	case "tertiary_link":
		return TERTIARY_LINK
	case "living_street":
		return LIVING_STREET
	case "road":
		return ROAD
	case "track":
		return TRACK
	case "motorroad":
		return MOTORROAD
	}
	return UNKNOWN
}

func (h OsmHighwayType) String() string {
	switch h {
	case MOTORWAY:
		return "motorway"
	case TRUNK:
		return "trunk"
	case PRIMARY:
		return "primary"
	case SECONDARY:
		return "secondary"
	case TERTIARY:
		return "tertiary"
	case RESIDENTIAL:
		return "residential"
	case SERVICE:
		return "service"
	case UNCLASSIFIED:
		return "unclassified"
	case MOTORWAY_LINK:
		return "motorway_link"
	case TRUNK_LINK:
		return "trunk_link"
	case PRIMARY_LINK:
		return "primary_link"
	case SECONDARY_LINK:
		return "secondary_link"
	case TERTIARY_LINK:
		return "tertiary_link"
	case LIVING_STREET:
		return "living_street"
	case ROAD:
		return "road"
	case TRACK:
		return "track"
	case MOTORROAD:
		return "motorroad"
	}
	return "unknown"
}

// default speed (km/h) per highway class when the way has no maxspeed tag
func RoadTypeMaxSpeed(h OsmHighwayType) float64 {
	switch h {
	case MOTORWAY, MOTORROAD:
		return 100
	case TRUNK:
		return 80
	case PRIMARY:
		return 60
	case SECONDARY:
		return 50
	case TERTIARY:
		return 40
	case RESIDENTIAL, UNCLASSIFIED, ROAD:
		return 30
	case LIVING_STREET:
		return 10
	case SERVICE, TRACK:
		return 20
	case MOTORWAY_LINK, TRUNK_LINK, PRIMARY_LINK, SECONDARY_LINK, TERTIARY_LINK:
		return 40
	}
	return 30
}
