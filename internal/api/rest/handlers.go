package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nodeorb/scm-risk-engine/internal/domain/compliance"
	"github.com/nodeorb/scm-risk-engine/internal/domain/errors"
	"github.com/nodeorb/scm-risk-engine/internal/domain/geo"
	"github.com/nodeorb/scm-risk-engine/internal/service/access"
	"github.com/nodeorb/scm-risk-engine/internal/service/conflict"
	"github.com/nodeorb/scm-risk-engine/internal/service/geofence"
	"github.com/nodeorb/scm-risk-engine/internal/service/hos"
	"github.com/nodeorb/scm-risk-engine/internal/service/pricing"
	"github.com/nodeorb/scm-risk-engine/internal/service/sanctions"
)

const maxBodySize = 1 << 20

// Services holds all the services needed by the REST API
type Services struct {
	Geofence  geofence.Service
	Access    access.Service
	HOS       hos.Service
	Sanctions sanctions.Service
	Conflict  conflict.Service
	Pricing   pricing.Service
	// DefaultRegion applies to HOS requests that carry none
	DefaultRegion hos.Region
}

// Handler serves the validator endpoints
type Handler struct {
	services  Services
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandler creates a new REST API handler
func NewHandler(services Services, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if services.DefaultRegion == "" {
		services.DefaultRegion = hos.RegionUS
	}
	return &Handler{
		services:  services,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger.Named("rest"),
		now:       time.Now,
	}
}

// decode reads a JSON body into dst and validates it
func (h *Handler) decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.NewValidationError("INVALID_JSON", "request body is not valid JSON: "+err.Error())
	}
	return h.validator.Struct(dst)
}

// handle adapts a typed endpoint to http.HandlerFunc
func (h *Handler) handle(fn func(context.Context, *http.Request) (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := fn(r.Context(), r)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		writeSuccess(w, r, http.StatusOK, res)
	}
}

func (h *Handler) region(s string) hos.Region {
	if s == "" {
		return h.services.DefaultRegion
	}
	return hos.ParseRegion(s)
}

func (h *Handler) at(ts *time.Time) time.Time {
	if ts != nil {
		return *ts
	}
	return h.now()
}

// Geofence

func (h *Handler) validateGeofence(ctx context.Context, r *http.Request) (interface{}, error) {
	var req GeofenceValidateRequest
	if err := h.decode(r, &req); err != nil {
		return nil, err
	}
	return h.services.Geofence.ValidateGeofence(ctx, geofence.ValidateGeofenceRequest{
		UserID:       req.UserID,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		GeofenceType: req.GeofenceType,
		OrderID:      req.OrderID,
	})
}

func (h *Handler) validateRoute(ctx context.Context, r *http.Request) (interface{}, error) {
	var req RouteValidateRequest
	if err := h.decode(r, &req); err != nil {
		return nil, err
	}
	now := h.now()
	points := make([]geo.Point, len(req.Points))
	for i, p := range req.Points {
		points[i] = p.toPoint(now)
	}
	return h.services.Geofence.ValidateRoute(ctx, req.UserID, points, req.CorridorWidthMeters)
}

func (h *Handler) decodeSpoofing(r *http.Request) (string, geo.Point, *geo.Point, error) {
	var req SpoofingRequest
	if err := h.decode(r, &req); err != nil {
		return "", geo.Point{}, nil, err
	}
	now := h.now()
	current := req.Current.toPoint(now)
	var previous *geo.Point
	if req.Previous != nil {
		p := req.Previous.toPoint(now)
		previous = &p
	}
	return req.UserID, current, previous, nil
}

func (h *Handler) geofenceSpoofing(ctx context.Context, r *http.Request) (interface{}, error) {
	userID, current, previous, err := h.decodeSpoofing(r)
	if err != nil {
		return nil, err
	}
	return h.services.Geofence.DetectGpsSpoofing(ctx, userID, current, previous)
}

// Access

func (h *Handler) cargoAccess(ctx context.Context, r *http.Request) (interface{}, error) {
	var req CargoAccessRequest
	if err := h.decode(r, &req); err != nil {
		return nil, err
	}
	return h.services.Access.ValidateCargoAccess(ctx, access.CargoAccessRequest{
		UserID:          req.UserID,
		OrderID:         req.OrderID,
		DeviceLatitude:  req.DeviceLatitude,
		DeviceLongitude: req.DeviceLongitude,
		CargoLatitude:   req.CargoLatitude,
		CargoLongitude:  req.CargoLongitude,
	})
}

func (h *Handler) accessSpoofing(ctx context.Context, r *http.Request) (interface{}, error) {
	userID, current, previous, err := h.decodeSpoofing(r)
	if err != nil {
		return nil, err
	}
	return h.services.Access.DetectGpsSpoofing(ctx, userID, current, previous)
}

func (h *Handler) sensitiveData(ctx context.Context, r *http.Request) (interface{}, error) {
	var req SensitiveDataRequest
	if err := h.decode(r, &req); err != nil {
		return nil, err
	}
	return h.services.Access.ValidateSensitiveDataAccess(ctx, access.SensitiveDataAccessRequest{
		UserID:                req.UserID,
		DataType:              req.DataType,
		Latitude:              req.Latitude,
		Longitude:             req.Longitude,
		RequiredSecurityLevel: req.RequiredSecurityLevel,
	})
}

// Hours of service

func (h *Handler) hoursOfService(ctx context.Context, r *http.Request) (interface{}, error) {
	var req HoursOfServiceRequest
	if err := h.decode(r, &req); err != nil {
		return nil, err
	}
	return h.services.HOS.ValidateHoursOfService(ctx, req.DriverID, req.VehicleID, h.at(req.Timestamp), h.region(req.Region))
}

func (h *Handler) shiftEligibility(ctx context.Context, r *http.Request) (interface{}, error) {
	var req ShiftEligibilityRequest
	if err := h.decode(r, &req); err != nil {
		return nil, err
	}
	return h.services.HOS.CanStartShift(ctx, req.DriverID, h.at(req.Timestamp), h.region(req.Region))
}

func (h *Handler) fatigue(ctx context.Context, r *http.Request) (interface{}, error) {
	var req FatigueRequest
	if err := h.decode(r, &req); err != nil {
		return nil, err
	}
	return h.services.HOS.DetectDriverFatigue(ctx, req.DriverID, req.SpeedKmh, req.Acceleration, *req.HourOfDay)
}

// Sanctions

func (h *Handler) userSanctions(ctx context.Context, r *http.Request) (interface{}, error) {
	return h.services.Sanctions.CheckSanctions(ctx, r.PathValue("id"))
}

func (h *Handler) companySanctions(ctx context.Context, r *http.Request) (interface{}, error) {
	return h.services.Sanctions.CheckCompanySanctions(ctx, r.PathValue("id"))
}

func (h *Handler) countrySanctions(ctx context.Context, r *http.Request) (interface{}, error) {
	return h.services.Sanctions.CheckCountrySanctions(ctx, r.PathValue("code"))
}

func (h *Handler) counterpartySanctions(ctx context.Context, r *http.Request) (interface{}, error) {
	return h.services.Sanctions.CheckCounterparty(ctx, r.PathValue("id"), r.PathValue("type"))
}

// Conflict of interest

func (h *Handler) conflictCheck(ctx context.Context, r *http.Request) (interface{}, error) {
	var req ConflictCheckRequest
	if err := h.decode(r, &req); err != nil {
		return nil, err
	}
	return h.services.Conflict.CheckConflictOfInterest(ctx, req.ShipperUserID, req.CarrierUserID, req.OrderID)
}

// Pricing

func (h *Handler) validatePrice(ctx context.Context, r *http.Request) (interface{}, error) {
	var req ManualPriceRequest
	if err := h.decode(r, &req); err != nil {
		return nil, err
	}
	return h.services.Pricing.ValidateAndRecord(ctx, pricing.ManualInput{
		UserID:        req.UserID,
		OrderID:       req.OrderID,
		MaterialsCost: req.MaterialsCost,
		LaborCost:     req.LaborCost,
		Currency:      req.Currency,
	})
}

type appealResponse struct {
	ID           uuid.UUID               `json:"id"`
	AppealStatus compliance.AppealStatus `json:"appeal_status"`
}

func (h *Handler) updateAppeal(ctx context.Context, r *http.Request) (interface{}, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, errors.NewValidationError("INVALID_ID", "entry id must be a UUID")
	}
	var req AppealRequest
	if err := h.decode(r, &req); err != nil {
		return nil, err
	}
	status := compliance.AppealStatus(req.Status)
	if err := h.services.Pricing.UpdateAppealStatus(ctx, id, status, req.AuditorComment); err != nil {
		return nil, err
	}
	parsed, _ := compliance.ParseAppealStatus(req.Status)
	return appealResponse{ID: id, AppealStatus: parsed}, nil
}
