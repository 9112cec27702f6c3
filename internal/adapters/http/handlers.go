package http

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/laufrunde/internal/core/domain"
	"github.com/samirrijal/laufrunde/internal/pkg/metrics"
)

// planInput is the body of plan creation and input changes.
type planInput struct {
	Lat        float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon        float64 `json:"lon" validate:"gte=-180,lte=180"`
	DistanceKm float64 `json:"distance_km" validate:"gt=0,lte=100"`
}

func (in planInput) origin() domain.GeoPoint {
	return domain.GeoPoint{Lat: in.Lat, Lon: in.Lon}
}

type selectInput struct {
	Index *int `json:"index" validate:"required,gte=0"`
}

type nameInput struct {
	Name string `json:"name" validate:"max=120"`
}

// optionView is a route option as shown to the runner.
type optionView struct {
	Index             int               `json:"index"`
	Bearing           float64           `json:"bearing"`
	DistanceKm        float64           `json:"distance_km"`
	EstimatedDuration string            `json:"estimated_duration"`
	Waypoints         []domain.GeoPoint `json:"waypoints"`
	Path              []domain.GeoPoint `json:"path"`
}

// planView is the JSON representation of a planning session.
type planView struct {
	ID           string           `json:"id"`
	State        domain.PlanState `json:"state"`
	Origin       domain.GeoPoint  `json:"origin"`
	TargetKm     float64          `json:"target_km"`
	Generation   int              `json:"generation"`
	Options      []optionView     `json:"options"`
	Selected     int              `json:"selected"`
	Route        *optionView      `json:"route,omitempty"`
	HeadlineKm   *float64         `json:"headline_km,omitempty"`
	Pace         string           `json:"pace"`
	SavedRouteID string           `json:"saved_route_id,omitempty"`
	Message      string           `json:"message,omitempty"`
}

func newOptionView(i int, o domain.RouteOption, pace float64) optionView {
	return optionView{
		Index:             i,
		Bearing:           o.Bearing,
		DistanceKm:        o.DistanceKm(),
		EstimatedDuration: domain.FormatDuration(domain.EstimateDuration(o.DistanceKm(), pace)),
		Waypoints:         o.Candidate.Waypoints,
		Path:              o.Candidate.Path,
	}
}

func newPlanView(s *domain.PlanSession, pace float64) planView {
	v := planView{
		ID:           s.ID,
		State:        s.State,
		Origin:       s.Origin,
		TargetKm:     s.TargetKm,
		Generation:   s.Generation,
		Options:      make([]optionView, 0, len(s.Options)),
		Selected:     s.Selected,
		Pace:         domain.FormatPace(pace),
		SavedRouteID: s.SavedRouteID,
		Message:      s.Message,
	}
	for i, o := range s.Options {
		v.Options = append(v.Options, newOptionView(i, o, pace))
	}
	if s.Route != nil {
		r := newOptionView(s.Selected, *s.Route, pace)
		v.Route = &r
	}
	if h := s.Headline(); h != nil {
		km := h.DistanceKm()
		v.HeadlineKm = &km
	}
	return v
}

// paceParam reads the optional ?pace= (minutes per km) query parameter.
func paceParam(c *fiber.Ctx) float64 {
	pace := c.QueryFloat("pace", domain.DefaultPaceMinPerKm)
	if pace <= 0 || pace > 30 {
		return domain.DefaultPaceMinPerKm
	}
	return pace
}

func planJSON(c *fiber.Ctx, status int, s *domain.PlanSession) error {
	c.Set("Cache-Control", "no-store")
	return c.Status(status).JSON(newPlanView(s, paceParam(c)))
}

// CreatePlanHandler starts a planning session.
func CreatePlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in planInput
		if err := bindJSON(c, &in); err != nil {
			return errBadRequest(c, err.Error())
		}
		s, err := deps.Planner.Create(c.UserContext(), in.origin(), in.DistanceKm)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Location("/v1/plans/" + s.ID)
		return planJSON(c, fiber.StatusCreated, s)
	}
}

// GetPlanHandler returns a planning session.
func GetPlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := deps.Planner.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return planJSON(c, fiber.StatusOK, s)
	}
}

// UpdatePlanInputHandler changes start point or distance and drops any options.
func UpdatePlanInputHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in planInput
		if err := bindJSON(c, &in); err != nil {
			return errBadRequest(c, err.Error())
		}
		s, err := deps.Planner.UpdateInput(c.UserContext(), c.Params("id"), in.origin(), in.DistanceKm)
		if err != nil {
			return errFromDomain(c, err)
		}
		return planJSON(c, fiber.StatusOK, s)
	}
}

// GeneratePlanHandler runs the loop search for a session and waits for the options.
func GeneratePlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := deps.Planner.Generate(c.UserContext(), c.Params("id"))
		recordGenerate(s, err)
		if errors.Is(err, domain.ErrNoRouteFound) && s != nil {
			return newError(c, fiber.StatusUnprocessableEntity, "no_route_found", s.Message)
		}
		if err != nil {
			return errFromDomain(c, err)
		}
		return planJSON(c, fiber.StatusOK, s)
	}
}

func recordGenerate(s *domain.PlanSession, err error) {
	switch {
	case err == nil:
		metrics.RecordOptions(len(s.Options), "")
	case errors.Is(err, domain.ErrNoRouteFound):
		metrics.RecordOptions(0, "no_route")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		metrics.RecordOptions(0, "cancelled")
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrStaleResult), errors.Is(err, domain.ErrNotFound):
		// rejected before or after the search, nothing to record
	default:
		metrics.RecordOptions(0, "error")
	}
}

// SelectOptionHandler previews one of the generated options.
func SelectOptionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in selectInput
		if err := bindJSON(c, &in); err != nil {
			return errBadRequest(c, err.Error())
		}
		s, err := deps.Planner.Select(c.UserContext(), c.Params("id"), *in.Index)
		if err != nil {
			return errFromDomain(c, err)
		}
		return planJSON(c, fiber.StatusOK, s)
	}
}

// ConfirmPlanHandler locks in the selected option.
func ConfirmPlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := deps.Planner.Confirm(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return planJSON(c, fiber.StatusOK, s)
	}
}

// ExportPlanHandler hands the confirmed route off to a navigation app.
func ExportPlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in nameInput
		if err := bindJSON(c, &in); err != nil {
			return errBadRequest(c, err.Error())
		}
		s, link, err := deps.Planner.Export(c.UserContext(), c.Params("id"), in.Name)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(fiber.Map{
			"plan": newPlanView(s, paceParam(c)),
			"link": link,
		})
	}
}

// ResetPlanHandler clears options and route and returns to planning.
func ResetPlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := deps.Planner.Reset(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return planJSON(c, fiber.StatusOK, s)
	}
}

// SavePlanHandler stores the confirmed route of a session.
func SavePlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in nameInput
		if err := bindJSON(c, &in); err != nil {
			return errBadRequest(c, err.Error())
		}
		s, rec, err := deps.Planner.Save(c.UserContext(), c.Params("id"), in.Name)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set("Cache-Control", "no-store")
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"plan":  newPlanView(s, paceParam(c)),
			"route": rec,
		})
	}
}

// ListSavedRoutesHandler returns saved routes, newest first.
func ListSavedRoutesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Pagination
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 20)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		routes, total, err := deps.Saved.List(c.UserContext(), limit, offset)
		if err != nil {
			return errFromDomain(c, err)
		}
		if routes == nil {
			routes = []domain.SavedRoute{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: routes, Pagination: pg})
	}
}

// NearbySavedRoutesHandler returns saved routes starting close to a point.
func NearbySavedRoutesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, lon, err := latLonQuery(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		radius := c.QueryFloat("radius", 2000)
		if radius <= 0 || radius > 50000 {
			return errBadRequest(c, "radius must be between 1 and 50000 meters")
		}
		limit := c.QueryInt("limit", 20)

		routes, err := deps.Saved.Nearby(c.UserContext(), domain.GeoPoint{Lat: lat, Lon: lon}, radius, limit)
		if err != nil {
			return errFromDomain(c, err)
		}
		if routes == nil {
			routes = []domain.SavedRoute{}
		}
		return c.JSON(routes)
	}
}

// GetSavedRouteHandler returns a single saved route.
func GetSavedRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, err := deps.Saved.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(rec)
	}
}

// RenameSavedRouteHandler changes the name of a saved route.
func RenameSavedRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in nameInput
		if err := bindJSON(c, &in); err != nil {
			return errBadRequest(c, err.Error())
		}
		rec, err := deps.Saved.Rename(c.UserContext(), c.Params("id"), in.Name)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(rec)
	}
}

// DeleteSavedRouteHandler removes a saved route.
func DeleteSavedRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Saved.Delete(c.UserContext(), c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SavedRouteGPXHandler downloads a saved route as a GPX track.
func SavedRouteGPXHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, err := deps.Saved.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		data, err := deps.Export.GPX(rec)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set("Content-Type", "application/gpx+xml")
		c.Set("Content-Disposition", `attachment; filename="`+gpxFilename(rec.Name)+`"`)
		return c.Send(data)
	}
}

// SavedRouteLinkHandler returns the navigation hand-off for a saved route.
func SavedRouteLinkHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, err := deps.Saved.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		link, err := deps.Export.RouteLink(rec)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(link)
	}
}

// LoadSavedRouteHandler opens a saved route in a new, already confirmed session.
func LoadSavedRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := deps.Planner.LoadSaved(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Location("/v1/plans/" + s.ID)
		return planJSON(c, fiber.StatusCreated, s)
	}
}

// WeatherHandler returns the current weather at a start point.
func WeatherHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, lon, err := latLonQuery(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		w, err := deps.Weather.Current(c.UserContext(), domain.GeoPoint{Lat: lat, Lon: lon})
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set("Cache-Control", "public, max-age=600")
		return c.JSON(w)
	}
}

// SearchPlacesHandler geocodes a free-text query to candidate start points.
func SearchPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := strings.TrimSpace(c.Query("q"))
		if query == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		limit := c.QueryInt("limit", 5)
		if limit <= 0 || limit > 10 {
			limit = 5
		}

		places, err := deps.Places.Search(c.UserContext(), query, limit)
		if err != nil {
			return errFromDomain(c, err)
		}
		if places == nil {
			places = []domain.Place{}
		}
		return c.JSON(places)
	}
}

// latLonQuery reads the required lat and lon query parameters.
func latLonQuery(c *fiber.Ctx) (float64, float64, error) {
	rawLat, rawLon := c.Query("lat"), c.Query("lon")
	if rawLat == "" || rawLon == "" {
		return 0, 0, errors.New("lat and lon are required")
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return 0, 0, errors.New("lat must be a number")
	}
	lon, err := strconv.ParseFloat(rawLon, 64)
	if err != nil {
		return 0, 0, errors.New("lon must be a number")
	}
	if err := (domain.GeoPoint{Lat: lat, Lon: lon}).Validate(); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

func gpxFilename(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "route.gpx"
	}
	return b.String() + ".gpx"
}
