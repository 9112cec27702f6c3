package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/samirrijal/laufrunde/internal/core/domain"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestSearchObserver(t *testing.T) {
	before := counterValue(t, SearchAttempts.WithLabelValues("accepted"))
	failedBefore := counterValue(t, SearchAttempts.WithLabelValues("failed"))

	var o SearchObserver
	o.ObserveAttempt(context.Background(), domain.AttemptReport{Accepted: true, DiffKm: 0.2})
	o.ObserveAttempt(context.Background(), domain.AttemptReport{Err: errors.New("boom")})

	if got := counterValue(t, SearchAttempts.WithLabelValues("accepted")); got != before+1 {
		t.Fatalf("expected accepted counter %v, got %v", before+1, got)
	}
	if got := counterValue(t, SearchAttempts.WithLabelValues("failed")); got != failedBefore+1 {
		t.Fatalf("expected failed counter %v, got %v", failedBefore+1, got)
	}
}

func TestRecordRouteEvent(t *testing.T) {
	c := RouteEventsConsumed.WithLabelValues(string(domain.RouteSavedType))
	before := counterValue(t, c)
	RecordRouteEvent(&domain.RouteEvent{Type: domain.RouteSavedType, DistanceKm: 5})
	if got := counterValue(t, c); got != before+1 {
		t.Fatalf("expected %v, got %v", before+1, got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", Handler())

	if _, err := app.Test(httptest.NewRequest("GET", "/ping", nil), -1); err != nil {
		t.Fatalf("ping: %v", err)
	}
	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "laufrunde_http_requests_total") {
		t.Fatalf("metrics output missing request counter")
	}
}
