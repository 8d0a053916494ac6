package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/usecases"
	"github.com/samirrijal/barangaymap/internal/pkg/geospatial"
)

const dateLayout = "2006-01-02"

// JurisdictionHandler returns the boundary, viewport limits, mask layers and
// legend a client needs to draw the restricted map.
func JurisdictionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Geofence.View())
	}
}

// GeofenceCheckHandler answers whether lat/lng may be pinned.
func GeofenceCheckHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		loc, err := locationQuery(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(deps.Geofence.Check(c.UserContext(), loc))
	}
}

// ListIncidentsHandler returns incident markers, optionally limited to a
// viewport given as bbox=west,south,east,north.
func ListIncidentsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, err := reportFilter(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		viewport, err := incidentArea(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		markers, err := deps.Incidents.Markers(c.UserContext(), filter, viewport)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(markers)
	}
}

// ListReportsHandler lists reports, newest first, with filters and paging.
func ListReportsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, err := reportFilter(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		reports, err := deps.Reports.List(c.UserContext(), filter)
		if err != nil {
			return errFromDomain(c, err)
		}

		offset, limit := pageParams(c, 50, 200)
		page, pg := paginate(reports, offset, limit)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// CreateReportHandler files a new report. Locations outside the boundary
// are refused with 422 out_of_bounds.
func CreateReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in usecases.CreateReportInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		report, err := deps.Reports.Create(c.UserContext(), in)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Location("/v1/reports/" + report.ID)
		return c.Status(fiber.StatusCreated).JSON(report)
	}
}

// GetReportHandler returns a single report.
func GetReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report, err := deps.Reports.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(report)
	}
}

type statusUpdate struct {
	Status domain.IncidentStatus `json:"status"`
}

// UpdateReportStatusHandler moves a report through its lifecycle.
func UpdateReportStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body statusUpdate
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		report, err := deps.Reports.UpdateStatus(c.UserContext(), c.Params("id"), body.Status)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(report)
	}
}

// ListAlertsHandler returns the latest community alerts.
func ListAlertsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		alerts, err := deps.Alerts.List(c.UserContext(), c.QueryInt("limit", 20))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(alerts)
	}
}

func locationQuery(c *fiber.Ctx) (domain.Location, error) {
	rawLat, rawLng := c.Query("lat"), c.Query("lng")
	if rawLat == "" || rawLng == "" {
		return domain.Location{}, fmt.Errorf("lat and lng are required")
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil || !validLat(lat) {
		return domain.Location{}, fmt.Errorf("lat must be a number between -90 and 90")
	}
	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil || !validLng(lng) {
		return domain.Location{}, fmt.Errorf("lng must be a number between -180 and 180")
	}
	return domain.Location{Lat: lat, Lng: lng}, nil
}

// The comparisons are written so NaN fails them.
func validLat(v float64) bool { return v >= -90 && v <= 90 }
func validLng(v float64) bool { return v >= -180 && v <= 180 }

// reportFilter reads q, type, status (comma separated) and from/to dates.
func reportFilter(c *fiber.Ctx) (domain.ReportFilter, error) {
	f := domain.ReportFilter{
		Search: strings.TrimSpace(c.Query("q")),
		Types:  splitList(c.Query("type")),
	}
	if len(f.Search) > 200 {
		return f, fmt.Errorf("q too long (max 200 characters)")
	}
	for _, s := range splitList(c.Query("status")) {
		status := domain.IncidentStatus(s)
		if !status.Known() {
			return f, fmt.Errorf("unknown status %q", s)
		}
		f.Statuses = append(f.Statuses, status)
	}

	var err error
	if f.From, err = parseDate(c.Query("from")); err != nil {
		return f, fmt.Errorf("from: %w", err)
	}
	if f.To, err = parseDate(c.Query("to")); err != nil {
		return f, fmt.Errorf("to: %w", err)
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, fmt.Errorf("to must not be before from")
	}
	return f, nil
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD")
	}
	return t, nil
}

func parseBBox(raw string) (domain.BoundingBox, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return domain.BoundingBox{}, fmt.Errorf("bbox must be west,south,east,north")
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return domain.BoundingBox{}, fmt.Errorf("bbox: %q is not a number", p)
		}
		v[i] = f
	}
	box := domain.BoundingBox{West: v[0], South: v[1], East: v[2], North: v[3]}
	if !box.Valid() {
		return domain.BoundingBox{}, fmt.Errorf("bbox: north must exceed south and east must exceed west")
	}
	return box, nil
}

const (
	defaultNearRadius = 500.0
	maxNearRadius     = 5000.0
)

// incidentArea reads either bbox=west,south,east,north or
// near=lat,lng[&radius=meters]. Neither means no spatial filter.
func incidentArea(c *fiber.Ctx) (*domain.BoundingBox, error) {
	rawBox, rawNear := c.Query("bbox"), c.Query("near")
	switch {
	case rawBox != "" && rawNear != "":
		return nil, fmt.Errorf("use either bbox or near, not both")
	case rawBox != "":
		box, err := parseBBox(rawBox)
		if err != nil {
			return nil, err
		}
		return &box, nil
	case rawNear != "":
		parts := strings.Split(rawNear, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("near must be lat,lng")
		}
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 != nil || err2 != nil || !validLat(lat) || !validLng(lng) {
			return nil, fmt.Errorf("near: invalid coordinates %q", rawNear)
		}
		radius := c.QueryFloat("radius", defaultNearRadius)
		if !(radius > 0 && radius <= maxNearRadius) {
			return nil, fmt.Errorf("radius must be between 0 and %.0f meters", maxNearRadius)
		}
		box := geospatial.AroundPoint(domain.Location{Lat: lat, Lng: lng}, radius)
		return &box, nil
	}
	return nil, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
