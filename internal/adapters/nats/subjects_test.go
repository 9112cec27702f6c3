package natsadapter

import (
	"testing"

	"github.com/samirrijal/laufrunde/internal/core/domain"
)

func TestSubjects(t *testing.T) {
	cases := map[domain.RouteEventType]string{
		domain.RouteConfirmed: "laufrunde.route.confirmed",
		domain.RouteExported:  "laufrunde.route.exported",
		domain.RouteSavedType: "laufrunde.route.saved",
	}
	for typ, want := range cases {
		if got := RouteEventSubject(typ); got != want {
			t.Errorf("%s: expected %s, got %s", typ, want, got)
		}
	}
	if got := ProgressSubject("abc"); got != "laufrunde.plan.abc.progress" {
		t.Fatalf("unexpected progress subject %s", got)
	}
}
