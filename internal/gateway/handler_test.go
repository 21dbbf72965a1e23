package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/appsift/appstore-gateway/internal/appstore"
	"github.com/appsift/appstore-gateway/internal/metrics"
	"github.com/appsift/appstore-gateway/internal/middleware"
	"github.com/appsift/appstore-gateway/pkg/logger"
)

const testAPIKey = "test-secret"

// spyCatalog records calls and returns a canned result or error.
type spyCatalog struct {
	calls  int
	lastOp string

	lastApp       appstore.AppParams
	lastList      appstore.ListParams
	lastSearch    appstore.SearchParams
	lastDeveloper appstore.DeveloperParams
	lastReviews   appstore.ReviewsParams
	lastID        appstore.IDParams

	result json.RawMessage
	err    error
}

func (s *spyCatalog) record(op string) (json.RawMessage, error) {
	s.calls++
	s.lastOp = op
	return s.result, s.err
}

func (s *spyCatalog) App(_ context.Context, p appstore.AppParams) (json.RawMessage, error) {
	s.lastApp = p
	return s.record("app")
}

func (s *spyCatalog) List(_ context.Context, p appstore.ListParams) (json.RawMessage, error) {
	s.lastList = p
	return s.record("list")
}

func (s *spyCatalog) Search(_ context.Context, p appstore.SearchParams) (json.RawMessage, error) {
	s.lastSearch = p
	return s.record("search")
}

func (s *spyCatalog) Developer(_ context.Context, p appstore.DeveloperParams) (json.RawMessage, error) {
	s.lastDeveloper = p
	return s.record("developer")
}

func (s *spyCatalog) Reviews(_ context.Context, p appstore.ReviewsParams) (json.RawMessage, error) {
	s.lastReviews = p
	return s.record("reviews")
}

func (s *spyCatalog) Similar(_ context.Context, p appstore.IDParams) (json.RawMessage, error) {
	s.lastID = p
	return s.record("similar")
}

func (s *spyCatalog) Privacy(_ context.Context, p appstore.IDParams) (json.RawMessage, error) {
	s.lastID = p
	return s.record("privacy")
}

func (s *spyCatalog) VersionHistory(_ context.Context, p appstore.IDParams) (json.RawMessage, error) {
	s.lastID = p
	return s.record("versionHistory")
}

// newTestRouter assembles the router the way main does, minus CORS.
func newTestRouter(catalog appstore.Catalog) *mux.Router {
	log := logger.NewDefault("gateway-test")
	m := metrics.New("gateway-test")

	router := mux.NewRouter()
	router.Use(
		middleware.NewKeyAuth(testAPIKey, log, []string{"/health"}).Handler,
	)
	New(catalog, log, m, "test").RegisterRoutes(router)
	return router
}

func doRequest(t *testing.T, router *mux.Router, path, apiKey string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if apiKey != "" {
		req.Header.Set(middleware.APIKeyHeader, apiKey)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func errorBody(t *testing.T, res *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not a JSON error envelope: %v (body %q)", err, res.Body.String())
	}
	return body["error"]
}

func TestInvalidKeyRejectedWithoutCatalogCall(t *testing.T) {
	cases := []struct {
		name string
		key  string
	}{
		{name: "missing_key", key: ""},
		{name: "wrong_key", key: "wrong"},
		{name: "case_mismatch", key: "TEST-SECRET"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spy := &spyCatalog{result: json.RawMessage(`{}`)}
			router := newTestRouter(spy)

			res := doRequest(t, router, "/search?term=candy", tc.key)

			if res.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", res.Code, http.StatusUnauthorized)
			}
			if got := errorBody(t, res); got != "Unauthorized - Invalid API Key" {
				t.Fatalf("error = %q, want %q", got, "Unauthorized - Invalid API Key")
			}
			if spy.calls != 0 {
				t.Fatalf("catalog calls = %d, want 0", spy.calls)
			}
		})
	}
}

func TestListCoercesCategoryAndNum(t *testing.T) {
	spy := &spyCatalog{result: json.RawMessage(`[]`)}
	router := newTestRouter(spy)

	res := doRequest(t, router, "/list/topfreeapplications?category=6014&num=10", testAPIKey)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", res.Code, res.Body.String())
	}
	if spy.lastList.Collection != "topfreeapplications" {
		t.Fatalf("collection = %q, want topfreeapplications", spy.lastList.Collection)
	}
	if spy.lastList.Category != 6014 {
		t.Fatalf("category = %d, want 6014", spy.lastList.Category)
	}
	if spy.lastList.Num != 10 {
		t.Fatalf("num = %d, want 10", spy.lastList.Num)
	}
}

func TestListRejectsNonNumericCategory(t *testing.T) {
	spy := &spyCatalog{result: json.RawMessage(`[]`)}
	router := newTestRouter(spy)

	res := doRequest(t, router, "/list/topfreeapplications?category=games", testAPIKey)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.Code)
	}
	if spy.calls != 0 {
		t.Fatalf("catalog calls = %d, want 0", spy.calls)
	}
}

func TestNotFoundClassificationPerOperation(t *testing.T) {
	classified := []string{
		"/app/123",
		"/developer/456",
		"/privacy/123",
		"/version-history/123",
	}
	unclassified := []string{
		"/list/topfreeapplications",
		"/search?term=candy",
		"/reviews/123",
		"/similar/123",
	}

	for _, path := range classified {
		t.Run("classified_"+path, func(t *testing.T) {
			spy := &spyCatalog{err: errors.New("App not found (404)")}
			res := doRequest(t, newTestRouter(spy), path, testAPIKey)
			if res.Code != http.StatusNotFound {
				t.Fatalf("status = %d, want 404", res.Code)
			}

			spy = &spyCatalog{err: errors.New("upstream exploded")}
			res = doRequest(t, newTestRouter(spy), path, testAPIKey)
			if res.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want 500", res.Code)
			}
		})
	}

	for _, path := range unclassified {
		t.Run("unclassified_"+path, func(t *testing.T) {
			// Even a recognizable not-found message reports 500 here.
			spy := &spyCatalog{err: errors.New("App not found (404)")}
			res := doRequest(t, newTestRouter(spy), path, testAPIKey)
			if res.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want 500", res.Code)
			}
			if got := errorBody(t, res); got != "App not found (404)" {
				t.Fatalf("error = %q, want original message", got)
			}
		})
	}
}

func TestSuccessPayloadPassedThroughVerbatim(t *testing.T) {
	payload := `{"id":553834731,"title":"Candy Crush Saga"}`
	spy := &spyCatalog{result: json.RawMessage(payload)}
	router := newTestRouter(spy)

	res := doRequest(t, router, "/app/553834731", testAPIKey)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	if res.Body.String() != payload {
		t.Fatalf("body = %q, want %q byte-for-byte", res.Body.String(), payload)
	}
	if ct := res.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q, want application/json", ct)
	}
	if spy.lastApp.ID != "553834731" {
		t.Fatalf("app id = %q, want 553834731", spy.lastApp.ID)
	}
}

func TestAppNotFoundEnvelope(t *testing.T) {
	spy := &spyCatalog{err: errors.New("App not found (404)")}
	router := newTestRouter(spy)

	res := doRequest(t, router, "/app/bogus", testAPIKey)

	if res.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", res.Code)
	}
	if got := errorBody(t, res); got != "App not found (404)" {
		t.Fatalf("error = %q, want %q", got, "App not found (404)")
	}
}

func TestAppForwardsOptionalParameters(t *testing.T) {
	spy := &spyCatalog{result: json.RawMessage(`{}`)}
	router := newTestRouter(spy)

	res := doRequest(t, router, "/app/42?ratings=true&country=gb&lang=en-gb", testAPIKey)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	want := appstore.AppParams{ID: "42", Ratings: true, Country: "gb", Lang: "en-gb"}
	if spy.lastApp != want {
		t.Fatalf("app params = %+v, want %+v", spy.lastApp, want)
	}
}

func TestReviewsForwardsPageAndSort(t *testing.T) {
	spy := &spyCatalog{result: json.RawMessage(`[]`)}
	router := newTestRouter(spy)

	res := doRequest(t, router, "/reviews/99?page=3&sort=mostHelpful", testAPIKey)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	if spy.lastReviews.ID != "99" || spy.lastReviews.Page != 3 || spy.lastReviews.Sort != "mostHelpful" {
		t.Fatalf("reviews params = %+v", spy.lastReviews)
	}
}

func TestHealthBypassesAuth(t *testing.T) {
	spy := &spyCatalog{}
	router := newTestRouter(spy)

	res := doRequest(t, router, "/health", "")

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	if spy.calls != 0 {
		t.Fatalf("catalog calls = %d, want 0", spy.calls)
	}
}
