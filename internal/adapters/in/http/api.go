package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// NewShipment defines model for NewShipment.
type NewShipment struct {
	Address     string  `json:"address"`
	Dimensions  string  `json:"dimensions"`
	ProductType string  `json:"product_type"`
	Weight      float64 `json:"weight"`
}

// AssignmentRequest defines model for AssignmentRequest.
type AssignmentRequest struct {
	Carrier    string `json:"carrier"`
	Route      string `json:"route"`
	ShipmentID int64  `json:"shipmentId"`
	Vehicle    string `json:"vehicle"`
}

// StatusUpdate defines model for StatusUpdate.
type StatusUpdate struct {
	NewStatus string `json:"newStatus"`
}

// Shipment defines model for Shipment.
type Shipment struct {
	Address     string  `json:"address"`
	Carrier     string  `json:"carrier,omitempty"`
	Dimensions  string  `json:"dimensions"`
	ID          int64   `json:"id"`
	ProductType string  `json:"product_type"`
	Route       string  `json:"route,omitempty"`
	Status      string  `json:"status"`
	Vehicle     string  `json:"vehicle,omitempty"`
	Weight      float64 `json:"weight"`
}

// ShipmentEnvelope defines model for ShipmentEnvelope.
type ShipmentEnvelope struct {
	Shipment Shipment `json:"shipment"`
}

// ShipmentList defines model for ShipmentList.
type ShipmentList struct {
	Shipments []Shipment `json:"shipments"`
}

// AssignmentResult defines model for AssignmentResult.
type AssignmentResult struct {
	Ok       bool     `json:"ok"`
	Shipment Shipment `json:"shipment"`
}

// StatusEvent defines model for StatusEvent.
type StatusEvent struct {
	Sequence   int64     `json:"sequence"`
	ShipmentID int64     `json:"shipmentId"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

// StatusUpdateResult defines model for StatusUpdateResult.
type StatusUpdateResult struct {
	Event StatusEvent `json:"event"`
	Ok    bool        `json:"ok"`
}

// HistoryEntry defines model for HistoryEntry.
type HistoryEntry struct {
	Sequence  int64     `json:"sequence"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusReport defines model for StatusReport.
type StatusReport struct {
	CurrentStatus string         `json:"currentStatus"`
	History       []HistoryEntry `json:"history"`
	ShipmentID    int64          `json:"shipmentId"`
}

// CarrierPerformance defines model for CarrierPerformance.
type CarrierPerformance struct {
	AvgDeliveryTime    float64 `json:"avgDeliveryTime"`
	CarrierName        string  `json:"carrierName"`
	CompletedShipments int     `json:"completedShipments"`
}

// DeliveryReport defines model for DeliveryReport.
type DeliveryReport struct {
	Report []CarrierPerformance `json:"report"`
}

// Error defines model for Error.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

// ListShipmentsParams defines parameters for ListShipments.
type ListShipmentsParams struct {
	Status *string `form:"status,omitempty" json:"status,omitempty"`
}

// GetDeliveryReportParams defines parameters for GetDeliveryReport.
type GetDeliveryReportParams struct {
	StartDate string  `form:"startDate" json:"startDate"`
	EndDate   string  `form:"endDate" json:"endDate"`
	Carrier   *string `form:"carrier,omitempty" json:"carrier,omitempty"`
	Page      *int    `form:"page,omitempty" json:"page,omitempty"`
	PageSize  *int    `form:"pageSize,omitempty" json:"pageSize,omitempty"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /api/shipments)
	ListShipments(ctx echo.Context, params ListShipmentsParams) error
	// (POST /api/shipments)
	CreateShipment(ctx echo.Context) error
	// (PUT /api/shipments/assign)
	AssignShipment(ctx echo.Context) error
	// (GET /api/shipments/report/advanced)
	GetDeliveryReport(ctx echo.Context, params GetDeliveryReportParams) error
	// (GET /api/shipments/{id})
	GetShipment(ctx echo.Context, id int64) error
	// (GET /api/shipments/{id}/status)
	GetShipmentStatus(ctx echo.Context, id int64) error
	// (PUT /api/shipments/{id}/status)
	UpdateShipmentStatus(ctx echo.Context, id int64) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) ListShipments(ctx echo.Context) error {
	var params ListShipmentsParams
	if err := runtime.BindQueryParameter("form", true, false, "status", ctx.QueryParams(), &params.Status); err != nil {
		return badParameter(ctx, "status", err)
	}
	return w.Handler.ListShipments(ctx, params)
}

func (w *ServerInterfaceWrapper) CreateShipment(ctx echo.Context) error {
	return w.Handler.CreateShipment(ctx)
}

func (w *ServerInterfaceWrapper) AssignShipment(ctx echo.Context) error {
	return w.Handler.AssignShipment(ctx)
}

func (w *ServerInterfaceWrapper) GetDeliveryReport(ctx echo.Context) error {
	var params GetDeliveryReportParams
	query := ctx.QueryParams()
	if err := runtime.BindQueryParameter("form", true, true, "startDate", query, &params.StartDate); err != nil {
		return badParameter(ctx, "startDate", err)
	}
	if err := runtime.BindQueryParameter("form", true, true, "endDate", query, &params.EndDate); err != nil {
		return badParameter(ctx, "endDate", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "carrier", query, &params.Carrier); err != nil {
		return badParameter(ctx, "carrier", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "page", query, &params.Page); err != nil {
		return badParameter(ctx, "page", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "pageSize", query, &params.PageSize); err != nil {
		return badParameter(ctx, "pageSize", err)
	}
	return w.Handler.GetDeliveryReport(ctx, params)
}

func (w *ServerInterfaceWrapper) GetShipment(ctx echo.Context) error {
	id, err := bindShipmentID(ctx)
	if err != nil {
		return badParameter(ctx, "id", err)
	}
	return w.Handler.GetShipment(ctx, id)
}

func (w *ServerInterfaceWrapper) GetShipmentStatus(ctx echo.Context) error {
	id, err := bindShipmentID(ctx)
	if err != nil {
		return badParameter(ctx, "id", err)
	}
	return w.Handler.GetShipmentStatus(ctx, id)
}

func (w *ServerInterfaceWrapper) UpdateShipmentStatus(ctx echo.Context) error {
	id, err := bindShipmentID(ctx)
	if err != nil {
		return badParameter(ctx, "id", err)
	}
	return w.Handler.UpdateShipmentStatus(ctx, id)
}

func bindShipmentID(ctx echo.Context) (int64, error) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	return id, err
}

func badParameter(ctx echo.Context, name string, err error) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    codeInvalidInput,
		Message: "invalid format for parameter " + name + ": " + err.Error(),
	})
}

// EchoRouter is the subset of echo used to register routes.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{Handler: si}

	router.GET(baseURL+"/api/shipments", wrapper.ListShipments)
	router.POST(baseURL+"/api/shipments", wrapper.CreateShipment)
	router.PUT(baseURL+"/api/shipments/assign", wrapper.AssignShipment)
	router.GET(baseURL+"/api/shipments/report/advanced", wrapper.GetDeliveryReport)
	router.GET(baseURL+"/api/shipments/:id", wrapper.GetShipment)
	router.GET(baseURL+"/api/shipments/:id/status", wrapper.GetShipmentStatus)
	router.PUT(baseURL+"/api/shipments/:id/status", wrapper.UpdateShipmentStatus)
}
