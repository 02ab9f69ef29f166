package controllers

import (
	"github.com/satryanta/geofuse/pkg/datastructure"
	"github.com/satryanta/geofuse/pkg/fusion"
)

type initializeRequest struct {
	HighAccuracy            *bool    `json:"highAccuracy"`
	GpsIntervalMs           *int     `json:"gpsIntervalMs" validate:"omitempty,min=100"`
	ImuHz                   *int     `json:"imuHz" validate:"omitempty,min=1,max=500"`
	TargetAccuracyM         *float64 `json:"targetAccuracyM" validate:"omitempty,gt=0"`
	DiscardAccuracyAboveM   *float64 `json:"discardAccuracyAboveM" validate:"omitempty,gt=0"`
	SettleSamples           *int     `json:"settleSamples" validate:"omitempty,min=1"`
	DeadbandMeters          *float64 `json:"deadbandMeters" validate:"omitempty,gte=0"`
	GoodHoldTimeoutMs       *int64   `json:"goodHoldTimeoutMs" validate:"omitempty,gte=0"`
	PromoteHighAboveM       *float64 `json:"promoteHighAboveM" validate:"omitempty,gt=0"`
	DemoteBalancedBelowM    *float64 `json:"demoteBalancedBelowM" validate:"omitempty,gt=0"`
	MinSwitchIntervalMs     *int64   `json:"minSwitchIntervalMs" validate:"omitempty,gte=0"`
	EnableSnapToRoads       *bool    `json:"enableSnapToRoads"`
	SnapConfidenceThreshold *float64 `json:"snapConfidenceThreshold" validate:"omitempty,gte=0,lte=1"`
	MaxSnapDistance         *float64 `json:"maxSnapDistance" validate:"omitempty,gt=0"`
}

// apply overlays the set fields of the request onto base.
func (r *initializeRequest) apply(base fusion.Options) fusion.Options {
	if r.HighAccuracy != nil {
		base.HighAccuracy = *r.HighAccuracy
	}
	if r.GpsIntervalMs != nil {
		base.GpsIntervalMs = *r.GpsIntervalMs
	}
	if r.ImuHz != nil {
		base.ImuHz = *r.ImuHz
	}
	if r.TargetAccuracyM != nil {
		base.TargetAccuracyM = *r.TargetAccuracyM
	}
	if r.DiscardAccuracyAboveM != nil {
		base.DiscardAccuracyAboveM = *r.DiscardAccuracyAboveM
	}
	if r.SettleSamples != nil {
		base.SettleSamples = *r.SettleSamples
	}
	if r.DeadbandMeters != nil {
		base.DeadbandMeters = *r.DeadbandMeters
	}
	if r.GoodHoldTimeoutMs != nil {
		base.GoodHoldTimeoutMs = *r.GoodHoldTimeoutMs
	}
	if r.PromoteHighAboveM != nil {
		base.PromoteHighAboveM = *r.PromoteHighAboveM
	}
	if r.DemoteBalancedBelowM != nil {
		base.DemoteBalancedBelowM = *r.DemoteBalancedBelowM
	}
	if r.MinSwitchIntervalMs != nil {
		base.MinSwitchIntervalMs = *r.MinSwitchIntervalMs
	}
	if r.EnableSnapToRoads != nil {
		base.EnableSnapToRoads = *r.EnableSnapToRoads
	}
	if r.SnapConfidenceThreshold != nil {
		base.SnapConfidenceThreshold = *r.SnapConfidenceThreshold
	}
	if r.MaxSnapDistance != nil {
		base.MaxSnapDistance = *r.MaxSnapDistance
	}
	return base
}

type coordinateRequest struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

type roadRequest struct {
	ID           int64               `json:"id" validate:"required"`
	Coordinates  []coordinateRequest `json:"coordinates" validate:"omitempty,min=2,dive"`
	Polyline     string              `json:"polyline"`
	RoadType     string              `json:"roadType"`
	MaxSpeed     float64             `json:"maxSpeed" validate:"omitempty,gte=0"`
	IsOneWay     bool                `json:"isOneWay"`
	Name         string              `json:"name"`
	Ref          string              `json:"ref"`
	StreetNumber string              `json:"streetNumber"`
	Locality     string              `json:"locality"`
	AdminArea    string              `json:"adminArea"`
}

type loadRoadDataRequest struct {
	Roads []roadRequest `json:"roads" validate:"required,min=1,dive"`
}

type loadRoadDataResponse struct {
	Loaded int `json:"loaded"`
}

type fixRequest struct {
	Ts  int64   `json:"ts" validate:"required"`
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lon float64 `json:"lon" validate:"min=-180,max=180"`
	Acc float64 `json:"acc" validate:"gt=0"`
	Spd float64 `json:"spd" validate:"gte=0"`
	Hdg float64 `json:"hdg" validate:"gte=0,lt=360"`
}

func (r *fixRequest) toFix() datastructure.Fix {
	return datastructure.NewFix(r.Ts, r.Lat, r.Lon, r.Acc, r.Spd, r.Hdg)
}

type inertialRequest struct {
	Ts int64   `json:"ts" validate:"required"`
	Ax float64 `json:"ax"`
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`
	Gx float64 `json:"gx"`
	Gy float64 `json:"gy"`
	Gz float64 `json:"gz"`
}

func (r *inertialRequest) toSample() datastructure.InertialSample {
	return datastructure.NewInertialSample(r.Ts, r.Ax, r.Ay, r.Az, r.Gx, r.Gy, r.Gz)
}

type roadResponse struct {
	ID          int64               `json:"id"`
	Coordinates []coordinateRequest `json:"coordinates"`
	RoadType    string              `json:"roadType"`
	MaxSpeed    float64             `json:"maxSpeed"`
	IsOneWay    bool                `json:"isOneWay"`
	Name        string              `json:"name"`
	Ref         string              `json:"ref"`
	FullAddress string              `json:"fullAddress"`
}

type trackResponse struct {
	TripID   string `json:"tripId"`
	Polyline string `json:"polyline"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
