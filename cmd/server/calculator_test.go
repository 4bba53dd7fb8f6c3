package main

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/Simplici0/nebula-roi/internal/roi"
)

func scenarioForm() url.Values {
	form := url.Values{}
	form.Set("sanitationCost", "100")
	form.Set("outbreaksPerYear", "2")
	form.Set("outbreakCost", "5000")
	form.Set("sickDays", "10")
	form.Set("workersComp", "200")
	form.Set("customCost", "")
	form.Set("savingsRate", "0.3")
	form.Set("leaseCost", "750")
	return form
}

func TestHandleCalculator_StartsSessionWithDefaults(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodGet, "/", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := ts.state(t); got != roi.DefaultInputState() {
		t.Fatalf("expected default state, got %+v", got)
	}

	body := rr.Body.String()
	for _, expected := range []string{"NebulaOne ROI Calculator", "Monthly Sanitation Cost", "Payback Period:</strong> N/A", "Tip: enter sanitation"} {
		if !strings.Contains(body, expected) {
			t.Fatalf("expected body to contain %q", expected)
		}
	}
}

func TestHandleCalcSubmit_UpdatesSessionState(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/", nil)

	rr := ts.do(t, http.MethodPost, "/calc", scenarioForm())
	expectRedirect(t, rr, "/")

	state := ts.state(t)
	result, _ := roi.Compute(state)
	if result.Baseline != 13200 {
		t.Fatalf("baseline = %v, want 13200", result.Baseline)
	}

	rr = ts.do(t, http.MethodGet, "/", nil)
	body := rr.Body.String()
	for _, expected := range []string{"$3,960.00", "-56.0%", "28 months", `value="100"`, "Projected savings do not cover"} {
		if !strings.Contains(body, expected) {
			t.Fatalf("expected body to contain %q", expected)
		}
	}
}

func TestHandleCalcSubmit_KeepsFieldsMissingFromForm(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/", nil)
	ts.do(t, http.MethodPost, "/calc", scenarioForm())

	form := url.Values{}
	form.Set("purchasePrice", "500")
	ts.do(t, http.MethodPost, "/calc", form)

	state := ts.state(t)
	if state.PurchasePrice != roi.MinPurchasePrice {
		t.Fatalf("purchasePrice = %v, want clamp to %v", state.PurchasePrice, roi.MinPurchasePrice)
	}
	if state.SanitationCost != 100 || state.SickDays != 10 {
		t.Fatalf("fields not in the form were changed: %+v", state)
	}
}

func TestHandleModeSubmit_SwitchesModeOnly(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/", nil)
	ts.do(t, http.MethodPost, "/calc", scenarioForm())
	before := ts.state(t)

	rr := ts.do(t, http.MethodPost, "/mode", url.Values{"mode": {"purchase"}})
	expectRedirect(t, rr, "/")

	after := ts.state(t)
	if after.Mode != roi.ModePurchase {
		t.Fatalf("mode = %q, want purchase", after.Mode)
	}
	if after.SetMode(roi.ModeLease) != before {
		t.Fatalf("mode switch changed other fields: %+v vs %+v", after, before)
	}

	body := ts.do(t, http.MethodGet, "/", nil).Body.String()
	for _, expected := range []string{"-86.8%", "91 months", "Purchase Price"} {
		if !strings.Contains(body, expected) {
			t.Fatalf("expected body to contain %q", expected)
		}
	}
}

func TestHandleModeSubmit_RejectsUnknownMode(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPost, "/mode", url.Values{"mode": {"rent"}})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleReset_RestoresDefaults(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/", nil)
	ts.do(t, http.MethodPost, "/calc", scenarioForm())
	ts.do(t, http.MethodPost, "/mode", url.Values{"mode": {"purchase"}})

	rr := ts.do(t, http.MethodPost, "/reset", url.Values{})
	expectRedirect(t, rr, "/")

	if got := ts.state(t); got != roi.DefaultInputState() {
		t.Fatalf("expected defaults after reset, got %+v", got)
	}
}

func TestHandleLeadSubmit_HandsEmailToSink(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/", nil)
	ts.do(t, http.MethodPost, "/calc", scenarioForm())

	rr := ts.do(t, http.MethodPost, "/lead", url.Values{"email": {"buyer@example.com"}})
	expectRedirect(t, rr, "/?success=")

	if len(ts.sink.leads) != 1 {
		t.Fatalf("expected 1 lead, got %d", len(ts.sink.leads))
	}
	got := ts.sink.leads[0]
	if got.Email != "buyer@example.com" || got.Mode != roi.ModeLease || got.Savings != 3960 {
		t.Fatalf("unexpected lead: %+v", got)
	}
	if ts.state(t).Email != "buyer@example.com" {
		t.Fatalf("expected email kept in session state")
	}
}

func TestHandleLeadSubmit_RequiresEmail(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPost, "/lead", url.Values{"email": {"  "}})
	expectRedirect(t, rr, "/?error=")

	if len(ts.sink.leads) != 0 {
		t.Fatalf("expected no leads, got %+v", ts.sink.leads)
	}
}

func TestHandleLeadSubmit_IsRateLimited(t *testing.T) {
	ts := newTestServer(t)
	ts.handler = ts.srv.routes(newIPRateLimiter(1), newIPRateLimiter(100), "../../web/static")

	form := url.Values{"email": {"buyer@example.com"}}
	expectRedirect(t, ts.do(t, http.MethodPost, "/lead", form), "/?success=")

	rr := ts.do(t, http.MethodPost, "/lead", form)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rr.Code)
	}
}

func TestHandleReportMarkdown(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/", nil)
	ts.do(t, http.MethodPost, "/calc", scenarioForm())

	rr := ts.do(t, http.MethodGet, "/report.md", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Content-Type"), "text/markdown") {
		t.Fatalf("unexpected content type %q", rr.Header().Get("Content-Type"))
	}
	if !strings.Contains(rr.Body.String(), "| Payback Period | 28 months |") {
		t.Fatalf("unexpected report body: %s", rr.Body.String())
	}
}

func TestHandleReport_RendersHTML(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/", nil)
	ts.do(t, http.MethodPost, "/calc", scenarioForm())

	rr := ts.do(t, http.MethodGet, "/report", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "<table>") {
		t.Fatalf("expected rendered table, got %s", rr.Body.String())
	}
}

func TestHandleCalculator_ExpiredSessionStartsFresh(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/", nil)
	ts.do(t, http.MethodPost, "/calc", scenarioForm())

	for _, c := range ts.cookies {
		if c.Name == calcCookieName {
			oldID := c.Value
			_ = ts.sessions.Delete(context.Background(), oldID)
		}
	}

	rr := ts.do(t, http.MethodGet, "/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got := ts.state(t); got != roi.DefaultInputState() {
		t.Fatalf("expected fresh defaults, got %+v", got)
	}
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("unexpected health response: %d %q", rr.Code, rr.Body.String())
	}
}

func TestHandleCalculator_RendersAfterHugeInput(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/", nil)
	expectRedirect(t, ts.do(t, http.MethodPost, "/calc", url.Values{"sanitationCost": {"1e308"}, "leaseCost": {"1e308"}}), "/")

	for _, path := range []string{"/", "/report", "/report.md"} {
		if rr := ts.do(t, http.MethodGet, path, nil); rr.Code != http.StatusOK {
			t.Fatalf("GET %s: expected status 200, got %d", path, rr.Code)
		}
	}
}
