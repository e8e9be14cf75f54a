package renderer

import (
	"strings"
	"testing"

	"github.com/goliatone/go-navgate/navigation"
	"github.com/goliatone/go-navgate/role"
	"github.com/goliatone/go-navgate/session"
)

func testCatalog(t *testing.T) *navigation.Catalog {
	t.Helper()
	catalog, err := navigation.New([]navigation.Item{
		{ID: "dashboard", Label: "Dashboard", Path: "/dashboard", Roles: role.NewSet(role.Solo, role.Growth, role.Enterprise, role.Admin), Exact: true, Section: "Workspace"},
		{ID: "deals", Label: "Deals", Path: "/deals", Roles: role.NewSet(role.Solo, role.Growth, role.Enterprise, role.Admin), Section: "Workspace", SubItems: []navigation.SubItem{
			{Label: "Pipeline", Path: "/deals/pipeline"},
			{Label: "Archive", Path: "/deals/archive"},
		}},
		{ID: "admin", Label: "Admin", Path: "/admin", Roles: role.NewSet(role.Admin), Section: "Operations"},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return catalog
}

func signedIn(r role.Role) session.Session {
	return session.Session{Loaded: true, SignedIn: true, Role: r, UserID: "user-1"}
}

func TestRenderMarksActiveEntry(t *testing.T) {
	r := New(testCatalog(t))

	html, err := r.Render(signedIn(role.Solo), "/deals/12345")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, `<nav role="navigation" aria-label="Main navigation">`) {
		t.Fatalf("missing nav landmark: %s", html)
	}
	if !strings.Contains(html, `<a href="/deals" class="active" aria-current="page">Deals</a>`) {
		t.Fatalf("deals should be active: %s", html)
	}
	if strings.Contains(html, `<a href="/dashboard" class="active"`) {
		t.Fatalf("dashboard must not be active: %s", html)
	}
}

func TestRenderFiltersByRole(t *testing.T) {
	r := New(testCatalog(t))

	html, err := r.Render(signedIn(role.Solo), "/dashboard")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "/admin") {
		t.Fatalf("solo must not see admin entry: %s", html)
	}
	if strings.Contains(html, "Operations") {
		t.Fatalf("empty section must not render a heading: %s", html)
	}

	html, err = r.Render(signedIn(role.Admin), "/dashboard")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "/admin") || !strings.Contains(html, "Operations") {
		t.Fatalf("admin should see operations section: %s", html)
	}
}

func TestRenderUnknownRoleDefaultsToSolo(t *testing.T) {
	r := New(testCatalog(t))

	html, err := r.Render(session.Session{Loaded: true, SignedIn: true}, "/dashboard")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "/dashboard") {
		t.Fatalf("solo entries should render: %s", html)
	}
	if strings.Contains(html, "/admin") {
		t.Fatalf("zero-value role must not unlock admin: %s", html)
	}
}

func TestRenderCustomLabel(t *testing.T) {
	r := New(testCatalog(t), WithLabel("Deal workspace"))

	html, err := r.Render(signedIn(role.Solo), "/dashboard")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, `aria-label="Deal workspace"`) {
		t.Fatalf("custom label missing: %s", html)
	}
}

func TestRenderSubNavOnlyForActiveParent(t *testing.T) {
	r := New(testCatalog(t))

	html, err := r.RenderSubNav(signedIn(role.Solo), "/deals/pipeline")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, `aria-label="Deals navigation"`) {
		t.Fatalf("sub nav label missing: %s", html)
	}
	if !strings.Contains(html, `<a href="/deals/pipeline" class="active" aria-current="page">Pipeline</a>`) {
		t.Fatalf("pipeline sub item should be active: %s", html)
	}
	if strings.Contains(html, `"/deals/archive" class="active"`) {
		t.Fatalf("archive must not be active: %s", html)
	}

	html, err = r.RenderSubNav(signedIn(role.Solo), "/dashboard")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if html != "" {
		t.Fatalf("no sub nav expected for dashboard, got %s", html)
	}
}

func TestRenderNilCatalog(t *testing.T) {
	r := New(nil)
	if _, err := r.Render(signedIn(role.Solo), "/dashboard"); err == nil {
		t.Fatal("expected error for nil catalog")
	}
}
