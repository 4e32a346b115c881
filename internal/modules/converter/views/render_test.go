package views

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"thermogauge/internal/modules/converter/types"
	"thermogauge/internal/temperature"
)

func mustLoad(t *testing.T) {
	t.Helper()
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}
}

func sampleResult() types.Result {
	r := temperature.Convert(45, 2)
	band := temperature.ColorFor(r.Celsius)
	return types.Result{
		Input:    "45",
		Decimals: 2,
		Reading:  r,
		Band:     band,
		Color:    band.Color(),
		Gauges:   temperature.Gauges(r),
	}
}

func TestLoadTemplates_success(t *testing.T) {
	mustLoad(t)
	if pageTmpl == nil {
		t.Fatal("LoadTemplates() left pageTmpl nil")
	}
	for _, name := range []string{"converter.html", "history.html", "partials/result.html", "partials/error.html", "partials/history.html", "partials/stations.html"} {
		if pageTmpl.Lookup(name) == nil {
			t.Errorf("template %q not defined", name)
		}
	}
}

func TestLoadTemplates_failure_sub(t *testing.T) {
	// fs.Sub rejects an invalid path.
	if err := loadTemplatesFromFS(fstest.MapFS{}, "../templates"); err == nil {
		t.Fatal("loadTemplatesFromFS(emptyFS, \"../templates\") = nil; want error")
	}
}

func TestLoadTemplates_failure_noFiles(t *testing.T) {
	// Nothing matches *.html, so ParseFS fails.
	if err := loadTemplatesFromFS(fstest.MapFS{}, "templates"); err == nil {
		t.Fatal("loadTemplatesFromFS(emptyFS, \"templates\") = nil; want error")
	}
}

func TestLoadTemplates_failure_parse(t *testing.T) {
	prev := pageTmpl
	t.Cleanup(func() { pageTmpl = prev })

	badFS := fstest.MapFS{
		"templates/base.html":           {Data: []byte("{{ .")},
		"templates/partials/error.html": {Data: []byte("ok")},
	}
	if err := loadTemplatesFromFS(badFS, "templates"); err == nil {
		t.Fatal("loadTemplatesFromFS(badFS, \"templates\") = nil; want error")
	}
}

func TestRender_notLoaded(t *testing.T) {
	prev := pageTmpl
	pageTmpl = nil
	t.Cleanup(func() { pageTmpl = prev })

	var buf bytes.Buffer
	err := RenderConverter(&buf, &ConverterData{})
	if err == nil {
		t.Fatal("RenderConverter() = nil; want error when templates not loaded")
	}
	if !strings.Contains(err.Error(), "not loaded") {
		t.Errorf("err = %q; want message containing \"not loaded\"", err.Error())
	}
}

func TestRenderConverter_empty(t *testing.T) {
	mustLoad(t)

	var buf bytes.Buffer
	if err := RenderConverter(&buf, &ConverterData{Title: "Converter"}); err != nil {
		t.Fatalf("RenderConverter(empty) = %v; want nil", err)
	}
	out := buf.String()
	for _, want := range []string{"Thermogauge", `id="celsius-input"`, `hx-post="/convert"`, `hx-get="/partials/stations"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, `id="results"`) {
		t.Error("empty page rendered a result")
	}
}

func TestRenderConverter_withResultAndError(t *testing.T) {
	mustLoad(t)
	rv := NewResultView(sampleResult())

	var buf bytes.Buffer
	if err := RenderConverter(&buf, &ConverterData{Title: "Converter", Input: "45", Result: &rv}); err != nil {
		t.Fatalf("RenderConverter(result) = %v", err)
	}
	if !strings.Contains(buf.String(), `value="45"`) {
		t.Error("input value not echoed")
	}
	if !strings.Contains(buf.String(), "318.15") {
		t.Error("kelvin value missing")
	}

	buf.Reset()
	ev := &ErrorView{Message: temperature.KindFormat.Message(), Kind: temperature.KindFormat.String()}
	if err := RenderConverter(&buf, &ConverterData{Title: "Converter", Input: "abc", Error: ev}); err != nil {
		t.Fatalf("RenderConverter(error) = %v", err)
	}
	if !strings.Contains(buf.String(), "input-form__input--error") {
		t.Error("error class missing on input")
	}
	if !strings.Contains(buf.String(), "Enter a valid number (maximum 6 decimals)") {
		t.Error("error message missing")
	}
}

func TestRenderResultPartial(t *testing.T) {
	mustLoad(t)
	rv := NewResultView(sampleResult())

	var buf bytes.Buffer
	if err := RenderResultPartial(&buf, &rv); err != nil {
		t.Fatalf("RenderResultPartial = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`id="fahrenheit-result"`, ">113<",
		`id="kelvin-result"`, ">318.15<",
		`id="celsius-fill"`, "height: 47.5%; background-color: #ef4444",
		`data-band="hot"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("partial missing %q; got %q", want, out)
		}
	}
	if strings.Contains(out, "<!doctype html>") {
		t.Error("partial rendered the page layout")
	}
}

func TestRenderErrorPartial_escapesMessage(t *testing.T) {
	mustLoad(t)
	var buf bytes.Buffer
	if err := RenderErrorPartial(&buf, &ErrorView{Message: "<b>bad</b>", Kind: "format_error"}); err != nil {
		t.Fatalf("RenderErrorPartial = %v", err)
	}
	if strings.Contains(buf.String(), "<b>") {
		t.Errorf("message not escaped: %q", buf.String())
	}
	if !strings.Contains(buf.String(), `data-kind="format_error"`) {
		t.Error("kind attribute missing")
	}
}

func TestRenderHistoryPartial(t *testing.T) {
	mustLoad(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := NewConversionRows([]types.Conversion{
		{ID: 2, CreatedAt: at, Source: types.SourceMQTT, StationID: "pico-1", Input: "-5", Reading: temperature.Convert(-5, 0)},
		{ID: 1, CreatedAt: at, Source: types.SourceWeb, Input: "14", Reading: temperature.Convert(14, 2)},
	})

	data := &HistoryData{
		Rows:        rows,
		Total:       45,
		CurrentPage: 2,
		TotalPages:  3,
		HasPrev:     true,
		HasNext:     true,
		PrevPage:    1,
		NextPage:    3,
		PageItems:   []PaginationItem{{Page: 1}, {Page: 2}, {Page: 3}},
	}
	var buf bytes.Buffer
	if err := RenderHistoryPartial(&buf, data); err != nil {
		t.Fatalf("RenderHistoryPartial = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"2026-03-01 12:00:00", "pico-1", "57.2", "287.15", "page=1", "page=3", `pagination__current">2<`, "45 conversions", "#3b82f6"} {
		if !strings.Contains(out, want) {
			t.Errorf("history partial missing %q", want)
		}
	}
}

func TestRenderHistoryPartial_empty(t *testing.T) {
	mustLoad(t)
	var buf bytes.Buffer
	data := &HistoryData{CurrentPage: 1, TotalPages: 1, PageItems: []PaginationItem{{Page: 1}}}
	if err := RenderHistoryPartial(&buf, data); err != nil {
		t.Fatalf("RenderHistoryPartial(empty) = %v", err)
	}
	if !strings.Contains(buf.String(), "No conversions yet.") {
		t.Errorf("empty history missing placeholder; got %q", buf.String())
	}
}

func TestRenderStationsPartial(t *testing.T) {
	mustLoad(t)
	var buf bytes.Buffer
	if err := RenderStationsPartial(&buf, &StationsData{}); err != nil {
		t.Fatalf("RenderStationsPartial(empty) = %v", err)
	}
	if !strings.Contains(buf.String(), "No station has reported") {
		t.Error("empty stations placeholder missing")
	}

	buf.Reset()
	rows := NewConversionRows([]types.Conversion{{StationID: "pico-7", Reading: temperature.Convert(21.5, 1)}})
	if err := RenderStationsPartial(&buf, &StationsData{Stations: rows}); err != nil {
		t.Fatalf("RenderStationsPartial = %v", err)
	}
	if !strings.Contains(buf.String(), "pico-7") || !strings.Contains(buf.String(), "70.7 °F") {
		t.Errorf("station row missing; got %q", buf.String())
	}
}

func TestRenderHistory(t *testing.T) {
	mustLoad(t)
	var buf bytes.Buffer
	if err := RenderHistory(&buf, &HistoryParams{Title: "History"}); err != nil {
		t.Fatalf("RenderHistory = %v", err)
	}
	if !strings.Contains(buf.String(), `hx-get="/partials/history?page=1"`) {
		t.Error("history shell does not load the partial")
	}
}

func TestNewResultView_formatsWithoutTrailingZeros(t *testing.T) {
	r := temperature.Convert(14, 2)
	rv := NewResultView(types.Result{Reading: r, Band: temperature.ColorFor(r.Celsius), Gauges: temperature.Gauges(r)})
	if rv.Celsius != "14" || rv.Fahrenheit != "57.2" || rv.Kelvin != "287.15" {
		t.Errorf("NewResultView = %+v", rv)
	}
	if rv.Band != "cool" {
		t.Errorf("Band = %q; want cool", rv.Band)
	}
	if len(rv.Gauges) != 3 || rv.Gauges[2].Unit != "K" {
		t.Errorf("Gauges = %+v", rv.Gauges)
	}
}
