package converter

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"thermogauge/internal/migrate"
	"thermogauge/internal/modules/converter/types"
	"thermogauge/internal/modules/converter/views"
	"thermogauge/internal/observability"
)

func TestRegisterFeature_endToEnd(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	if err := migrate.Run(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := views.LoadTemplates(); err != nil {
		t.Fatalf("load templates: %v", err)
	}

	mux := http.NewServeMux()
	RegisterFeature(mux, db, 20, observability.NewUnregisteredMetrics(), slog.New(slog.DiscardHandler), nil)

	form := url.Values{"celsius": {"36.6"}}
	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), ">97.9<") {
		t.Fatalf("POST /convert = %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/convert?celsius=14&decimals=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/convert = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/conversions", nil))
	var got []types.Conversion
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode conversions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("conversions = %d; want 2", len(got))
	}
	if got[0].Input != "14" || got[0].Source != types.SourceAPI {
		t.Errorf("newest = %+v; want api/14", got[0])
	}
	if got[1].Input != "36.6" || got[1].Source != types.SourceWeb {
		t.Errorf("oldest = %+v; want web/36.6", got[1])
	}
}
