package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	"github.com/satryanta/geofuse/pkg"
	"github.com/satryanta/geofuse/pkg/datastructure"
	"github.com/satryanta/geofuse/pkg/fusion"
	"github.com/satryanta/geofuse/pkg/geo"
	helper "github.com/satryanta/geofuse/pkg/http/router/routerhelper"
	"github.com/twpayne/go-polyline"
	"go.uber.org/zap"
)

type positioningAPI struct {
	positioningService PositioningService
	log                *zap.Logger
}

func New(positioningService PositioningService, log *zap.Logger) *positioningAPI {
	return &positioningAPI{
		positioningService: positioningService,
		log:                log,
	}
}

func (api *positioningAPI) Routes(group *helper.RouteGroup) {
	group.POST("/positioning/initialize", api.initialize)
	group.POST("/positioning/permissions", api.requestPermissions)
	group.POST("/positioning/fix", api.pushFix)
	group.POST("/positioning/inertial", api.pushInertial)
	group.GET("/positioning/hmmAccuracy", api.hmmAccuracy)
	group.POST("/roads/load", api.loadRoadData)
	group.DELETE("/roads", api.clearRoadData)
	group.GET("/roads/bbox", api.roadsInBBox)
	group.GET("/trips/:id/track", api.tripTrack)
}

func (api *positioningAPI) validateStruct(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return false
	}
	return true
}

// initialize rebuilds the engine with the merged options. Unset fields keep
// their defaults; loaded roads survive the rebuild.
func (api *positioningAPI) initialize(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request initializeRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if !api.validateStruct(w, r, &request) {
		return
	}

	opts := request.apply(fusion.DefaultOptions())
	if err := api.positioningService.Initialize(opts); err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": opts}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *positioningAPI) requestPermissions(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	granted := api.positioningService.RequestPermissions()
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": granted}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *positioningAPI) pushFix(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request fixRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if !api.validateStruct(w, r, &request) {
		return
	}

	api.positioningService.PushFix(request.toFix())
	w.WriteHeader(http.StatusAccepted)
}

func (api *positioningAPI) pushInertial(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request inertialRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if !api.validateStruct(w, r, &request) {
		return
	}

	api.positioningService.PushInertial(request.toSample())
	w.WriteHeader(http.StatusAccepted)
}

func (api *positioningAPI) hmmAccuracy(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	acc := api.positioningService.HMMAccuracy()
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": envelope{"hmmAcc": acc}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// loadRoadData accepts roads either as inline coordinate lists or as google
// encoded polylines.
func (api *positioningAPI) loadRoadData(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request loadRoadDataRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if !api.validateStruct(w, r, &request) {
		return
	}

	roads := make([]*datastructure.RoadSegment, 0, len(request.Roads))
	for _, rr := range request.Roads {
		points := make([]geo.Coordinate, 0, len(rr.Coordinates))
		for _, c := range rr.Coordinates {
			points = append(points, geo.NewCoordinate(c.Latitude, c.Longitude))
		}
		if len(points) == 0 && rr.Polyline != "" {
			coords, _, err := polyline.DecodeCoords([]byte(rr.Polyline))
			if err != nil {
				api.BadRequestResponse(w, r,
					fmt.Errorf("road %d: bad polyline: %v", rr.ID, err))
				return
			}
			for _, c := range coords {
				points = append(points, geo.NewCoordinate(c[0], c[1]))
			}
		}
		if len(points) < 2 {
			api.BadRequestResponse(w, r,
				fmt.Errorf("road %d needs at least 2 coordinates", rr.ID))
			return
		}

		roadType := pkg.GetHighwayType(rr.RoadType)
		maxSpeed := rr.MaxSpeed
		if maxSpeed == 0 {
			maxSpeed = pkg.RoadTypeMaxSpeed(roadType)
		}
		roads = append(roads, datastructure.NewRoadSegment(rr.ID, points, roadType,
			maxSpeed, rr.IsOneWay, rr.Name, rr.Ref, rr.StreetNumber, rr.Locality, rr.AdminArea))
	}

	loaded, err := api.positioningService.LoadRoadData(roads)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK,
		envelope{"data": loadRoadDataResponse{Loaded: loaded}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *positioningAPI) clearRoadData(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	api.positioningService.ClearRoadData()
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": "cleared"}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *positioningAPI) roadsInBBox(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	query := r.URL.Query()

	parse := func(name string) (float64, bool) {
		val, err := strconv.ParseFloat(query.Get(name), 64)
		if err != nil {
			api.BadRequestResponse(w, r,
				errors.New(name+" is required and must be a valid float"))
			return 0, false
		}
		return val, true
	}

	minLat, ok := parse("min_lat")
	if !ok {
		return
	}
	minLon, ok := parse("min_lon")
	if !ok {
		return
	}
	maxLat, ok := parse("max_lat")
	if !ok {
		return
	}
	maxLon, ok := parse("max_lon")
	if !ok {
		return
	}

	roads := api.positioningService.RoadsInBoundingBox(minLat, minLon, maxLat, maxLon)
	resp := make([]roadResponse, 0, len(roads))
	for _, road := range roads {
		coords := make([]coordinateRequest, 0, road.NumPoints())
		for _, pt := range road.Points() {
			coords = append(coords, coordinateRequest{Latitude: pt.GetLat(), Longitude: pt.GetLon()})
		}
		resp = append(resp, roadResponse{
			ID:          road.ID(),
			Coordinates: coords,
			RoadType:    road.RoadType().String(),
			MaxSpeed:    road.MaxSpeed(),
			IsOneWay:    road.OneWay(),
			Name:        road.Name(),
			Ref:         road.Ref(),
		})
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": resp}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *positioningAPI) tripTrack(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	tripID := p.ByName("id")
	encoded, err := api.positioningService.TrackPolyline(tripID)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK,
		envelope{"data": trackResponse{TripID: tripID, Polyline: encoded}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}
