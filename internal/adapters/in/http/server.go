// Package http is the REST adapter of the shipment tracking core.
package http

import (
	"net/http"

	"shiptrack/internal/core/application/usecases/commands"
	"shiptrack/internal/core/application/usecases/queries"
	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/pkg/logger"

	"github.com/labstack/echo/v4"
)

var _ ServerInterface = (*Server)(nil)

// Server implements the ServerInterface for handling HTTP requests.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createShipmentHandler commands.CreateShipmentCommandHandler
	assignShipmentHandler commands.AssignShipmentCommandHandler
	advanceStatusHandler  commands.AdvanceStatusCommandHandler

	// Query handlers
	getShipmentsHandler      queries.GetShipmentsQueryHandler
	getShipmentHandler       queries.GetShipmentQueryHandler
	getShipmentStatusHandler queries.GetShipmentStatusQueryHandler
	getDeliveryReportHandler queries.GetDeliveryReportQueryHandler

	log *logger.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createShipmentHandler commands.CreateShipmentCommandHandler,
	assignShipmentHandler commands.AssignShipmentCommandHandler,
	advanceStatusHandler commands.AdvanceStatusCommandHandler,
	getShipmentsHandler queries.GetShipmentsQueryHandler,
	getShipmentHandler queries.GetShipmentQueryHandler,
	getShipmentStatusHandler queries.GetShipmentStatusQueryHandler,
	getDeliveryReportHandler queries.GetDeliveryReportQueryHandler,
	log *logger.Logger,
) *Server {
	return &Server{
		createShipmentHandler:    createShipmentHandler,
		assignShipmentHandler:    assignShipmentHandler,
		advanceStatusHandler:     advanceStatusHandler,
		getShipmentsHandler:      getShipmentsHandler,
		getShipmentHandler:       getShipmentHandler,
		getShipmentStatusHandler: getShipmentStatusHandler,
		getDeliveryReportHandler: getDeliveryReportHandler,
		log:                      log.Named("http"),
	}
}

// CreateShipment handles POST /api/shipments - registers a Pending shipment.
func (s *Server) CreateShipment(ctx echo.Context) error {
	var body NewShipment
	if err := ctx.Bind(&body); err != nil {
		return invalidBody(ctx)
	}

	cmd, err := commands.NewCreateShipmentCommand(body.Weight, body.Dimensions, body.ProductType, body.Address)
	if err != nil {
		return s.fail(ctx, err)
	}

	created, err := s.createShipmentHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, ShipmentEnvelope{Shipment: shipmentFromDomain(created)})
}

// ListShipments handles GET /api/shipments - lists shipments, optionally by status.
func (s *Server) ListShipments(ctx echo.Context, params ListShipmentsParams) error {
	status := ""
	if params.Status != nil {
		status = *params.Status
	}
	query, err := queries.NewGetShipmentsQuery(status)
	if err != nil {
		return s.fail(ctx, err)
	}

	found, err := s.getShipmentsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := ShipmentList{Shipments: make([]Shipment, len(found))}
	for i, item := range found {
		response.Shipments[i] = shipmentFromResponse(item)
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetShipment handles GET /api/shipments/{id}.
func (s *Server) GetShipment(ctx echo.Context, id int64) error {
	query, err := queries.NewGetShipmentQuery(id)
	if err != nil {
		return s.fail(ctx, err)
	}

	found, err := s.getShipmentHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, ShipmentEnvelope{Shipment: shipmentFromResponse(found)})
}

// AssignShipment handles PUT /api/shipments/assign - binds route, carrier and
// vehicle to a pending shipment and puts it in transit.
func (s *Server) AssignShipment(ctx echo.Context) error {
	var body AssignmentRequest
	if err := ctx.Bind(&body); err != nil {
		return invalidBody(ctx)
	}

	cmd, err := commands.NewAssignShipmentCommand(body.ShipmentID, body.Route, body.Carrier, body.Vehicle)
	if err != nil {
		return s.fail(ctx, err)
	}

	assigned, err := s.assignShipmentHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, AssignmentResult{Ok: true, Shipment: shipmentFromDomain(assigned)})
}

// GetShipmentStatus handles GET /api/shipments/{id}/status. Shipments without
// history report Unknown rather than 404.
func (s *Server) GetShipmentStatus(ctx echo.Context, id int64) error {
	query, err := queries.NewGetShipmentStatusQuery(id)
	if err != nil {
		return s.fail(ctx, err)
	}

	report, err := s.getShipmentStatusHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := StatusReport{
		ShipmentID:    report.ShipmentID.Int64(),
		CurrentStatus: report.CurrentStatus.String(),
		History:       make([]HistoryEntry, len(report.History)),
	}
	for i, ev := range report.History {
		response.History[i] = HistoryEntry{
			Status:    ev.Status.String(),
			Sequence:  ev.Sequence,
			Timestamp: ev.Timestamp,
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetDeliveryReport handles GET /api/shipments/report/advanced - average
// delivery time in minutes and delivered count per carrier.
func (s *Server) GetDeliveryReport(ctx echo.Context, params GetDeliveryReportParams) error {
	var carrier string
	var page, pageSize int
	if params.Carrier != nil {
		carrier = *params.Carrier
	}
	if params.Page != nil {
		page = *params.Page
	}
	if params.PageSize != nil {
		pageSize = *params.PageSize
	}
	query, err := queries.NewGetDeliveryReportQuery(params.StartDate, params.EndDate, carrier, page, pageSize)
	if err != nil {
		return s.fail(ctx, err)
	}

	rows, err := s.getDeliveryReportHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := DeliveryReport{Report: make([]CarrierPerformance, len(rows))}
	for i, row := range rows {
		response.Report[i] = CarrierPerformance{
			CarrierName:        row.CarrierName,
			AvgDeliveryTime:    row.AvgDeliveryTime.Minutes(),
			CompletedShipments: row.CompletedShipments,
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

// UpdateShipmentStatus handles PUT /api/shipments/{id}/status.
func (s *Server) UpdateShipmentStatus(ctx echo.Context, id int64) error {
	var body StatusUpdate
	if err := ctx.Bind(&body); err != nil {
		return invalidBody(ctx)
	}

	cmd, err := commands.NewAdvanceStatusCommand(id, body.NewStatus)
	if err != nil {
		return s.fail(ctx, err)
	}

	ev, err := s.advanceStatusHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, StatusUpdateResult{Ok: true, Event: eventFromDomain(ev)})
}

func invalidBody(ctx echo.Context) error {
	return ctx.JSON(http.StatusBadRequest, Error{Code: codeInvalidInput, Message: "invalid request body"})
}

func shipmentFromDomain(s *shipment.Shipment) Shipment {
	out := Shipment{
		ID:          s.ID().Int64(),
		Weight:      s.Weight(),
		Dimensions:  s.Dimensions(),
		ProductType: s.ProductType(),
		Address:     s.Address(),
		Status:      s.Status().String(),
	}
	if a := s.Assignment(); a != nil {
		out.Route = a.RouteName()
		out.Carrier = a.CarrierName()
		out.Vehicle = a.VehiclePlate()
	}
	return out
}

func shipmentFromResponse(r queries.ShipmentResponse) Shipment {
	out := Shipment{
		ID:          r.ID.Int64(),
		Weight:      r.Weight,
		Dimensions:  r.Dimensions,
		ProductType: r.ProductType,
		Address:     r.Address,
		Status:      r.Status.String(),
	}
	if r.Assignment != nil {
		out.Route = r.Assignment.RouteName
		out.Carrier = r.Assignment.CarrierName
		out.Vehicle = r.Assignment.VehiclePlate
	}
	return out
}

func eventFromDomain(ev shipment.StatusEvent) StatusEvent {
	return StatusEvent{
		ShipmentID: ev.ShipmentID().Int64(),
		Status:     ev.Status().String(),
		Sequence:   ev.Sequence(),
		Timestamp:  ev.Timestamp(),
	}
}
