package queries

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"shiptrack/internal/pkg/errs"
	"shiptrack/internal/pkg/guard"
)

// ReportDateLayout is the calendar date format of report bounds.
const ReportDateLayout = time.DateOnly

const MaxReportPageSize = 100

var ErrGetDeliveryReportQueryIsNotConstructed = errors.New(
	"GetDeliveryReportQuery must be created via NewGetDeliveryReportQuery constructor",
)

// GetDeliveryReportQuery aggregates delivered shipments per carrier over the
// UTC calendar days [startDate, endDate], both inclusive.
//
// Example:
//
//	query, err := NewGetDeliveryReportQuery("2025-01-01", "2025-01-31", "ACME", 0, 0)
type GetDeliveryReportQuery struct {
	from     time.Time
	until    time.Time
	carrier  string
	page     int
	pageSize int

	guard guard.ConstructorGuard
}

// NewGetDeliveryReportQuery accepts an empty carrier, meaning every carrier.
// A zero pageSize returns every row; page then defaults to 1.
func NewGetDeliveryReportQuery(startDate, endDate, carrier string, page, pageSize int) (GetDeliveryReportQuery, error) {
	from, err := parseReportDate("startDate", startDate)
	if err != nil {
		return GetDeliveryReportQuery{}, err
	}
	to, err := parseReportDate("endDate", endDate)
	if err != nil {
		return GetDeliveryReportQuery{}, err
	}
	if to.Before(from) {
		return GetDeliveryReportQuery{}, errs.NewValueIsInvalidErrorWithCause("endDate",
			fmt.Errorf("%s is before startDate %s", endDate, startDate))
	}

	if page == 0 {
		page = 1
	}
	if page < 1 {
		return GetDeliveryReportQuery{}, errs.NewValueIsOutOfRangeError("page", page, 1, "unbounded")
	}
	if pageSize < 0 || pageSize > MaxReportPageSize {
		return GetDeliveryReportQuery{}, errs.NewValueIsOutOfRangeError("pageSize", pageSize, 0, MaxReportPageSize)
	}

	return GetDeliveryReportQuery{
		from:     from,
		until:    to.AddDate(0, 0, 1),
		carrier:  strings.TrimSpace(carrier),
		page:     page,
		pageSize: pageSize,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func parseReportDate(name, raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, errs.NewValueIsRequiredError(name)
	}
	t, err := time.ParseInLocation(ReportDateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return t, nil
}

func (q GetDeliveryReportQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryReportQueryIsNotConstructed)
}

// From is the first instant covered by the report.
func (q GetDeliveryReportQuery) From() time.Time { return q.from }

// Until is the first instant after the report window.
func (q GetDeliveryReportQuery) Until() time.Time { return q.until }

func (q GetDeliveryReportQuery) Carrier() string { return q.carrier }

func (q GetDeliveryReportQuery) Page() int { return q.page }

func (q GetDeliveryReportQuery) PageSize() int { return q.pageSize }

// CarrierPerformanceResponse is one report row. AvgDeliveryTime is the mean time
// between the InTransit and Delivered events of the carrier's shipments.
type CarrierPerformanceResponse struct {
	CarrierName        string
	AvgDeliveryTime    time.Duration
	CompletedShipments int
}
