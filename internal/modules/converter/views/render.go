package views

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"time"

	"thermogauge/internal/modules/converter/types"
	"thermogauge/internal/temperature"
)

var pageTmpl *template.Template

var errNotLoaded = errors.New("templates not loaded: call views.LoadTemplates during startup")

var funcs = template.FuncMap{
	"fillStyle": fillStyle,
}

// loadTemplatesFromFS loads page and partial templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	t, err := template.New("").Funcs(funcs).ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	pageTmpl = t
	return nil
}

// LoadTemplates loads the embedded templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

func render(w io.Writer, name string, data any) error {
	if pageTmpl == nil {
		return errNotLoaded
	}
	return pageTmpl.ExecuteTemplate(w, name, data)
}

// fillStyle is the inline style of a thermometer's liquid column.
func fillStyle(fill float64, color string) template.CSS {
	return template.CSS(fmt.Sprintf("height: %s%%; background-color: %s",
		temperature.Format(temperature.Round(fill, 2)), color))
}

// GaugeView is one thermometer.
type GaugeView struct {
	Scale string
	Value string
	Unit  string
	Fill  float64
	Color string
}

// ResultView is a converted temperature ready for display. Numbers are
// preformatted so the page shows exactly what was rounded.
type ResultView struct {
	Input      string
	Decimals   int
	Celsius    string
	Fahrenheit string
	Kelvin     string
	Band       string
	Color      string
	Gauges     []GaugeView
}

func NewResultView(r types.Result) ResultView {
	gauges := make([]GaugeView, 0, len(r.Gauges))
	for _, g := range r.Gauges {
		gauges = append(gauges, GaugeView{
			Scale: string(g.Scale),
			Value: temperature.Format(g.Value),
			Unit:  g.Unit,
			Fill:  g.Fill,
			Color: g.Color,
		})
	}
	return ResultView{
		Input:      r.Input,
		Decimals:   r.Decimals,
		Celsius:    temperature.Format(float64(r.Reading.Celsius)),
		Fahrenheit: temperature.Format(float64(r.Reading.Fahrenheit)),
		Kelvin:     temperature.Format(float64(r.Reading.Kelvin)),
		Band:       r.Band.String(),
		Color:      r.Color,
		Gauges:     gauges,
	}
}

// ErrorView is the inline message shown under the input.
type ErrorView struct {
	Message string
	Kind    string
}

// ConversionRow is one line of the history table or the station list.
type ConversionRow struct {
	ID         int64
	Time       string
	Source     string
	StationID  string
	Input      string
	Celsius    string
	Fahrenheit string
	Kelvin     string
	Color      string
}

func NewConversionRow(c types.Conversion) ConversionRow {
	return ConversionRow{
		ID:         c.ID,
		Time:       c.CreatedAt.UTC().Format(time.DateTime),
		Source:     string(c.Source),
		StationID:  c.StationID,
		Input:      c.Input,
		Celsius:    temperature.Format(float64(c.Reading.Celsius)),
		Fahrenheit: temperature.Format(float64(c.Reading.Fahrenheit)),
		Kelvin:     temperature.Format(float64(c.Reading.Kelvin)),
		Color:      temperature.ColorFor(c.Reading.Celsius).Color(),
	}
}

func NewConversionRows(cs []types.Conversion) []ConversionRow {
	rows := make([]ConversionRow, 0, len(cs))
	for _, c := range cs {
		rows = append(rows, NewConversionRow(c))
	}
	return rows
}

// ConverterData is the view model for the converter page.
type ConverterData struct {
	Title  string
	Input  string
	Result *ResultView
	Error  *ErrorView
}

func RenderConverter(w io.Writer, data *ConverterData) error {
	return render(w, "converter.html", data)
}

// HistoryParams is the view model for the history page shell; rows load via HTMX.
type HistoryParams struct {
	Title string
}

func RenderHistory(w io.Writer, data *HistoryParams) error {
	return render(w, "history.html", data)
}

// RenderResultPartial executes only the result cards and thermometers.
func RenderResultPartial(w io.Writer, data *ResultView) error {
	return render(w, "partials/result.html", data)
}

// RenderErrorPartial executes only the validation message.
func RenderErrorPartial(w io.Writer, data *ErrorView) error {
	return render(w, "partials/error.html", data)
}

// PaginationItem is one entry in the pagination bar: either a page number or an ellipsis.
type PaginationItem struct {
	Page     int
	Ellipsis bool
}

// HistoryData is the view model for the history partial.
type HistoryData struct {
	Rows        []ConversionRow
	Total       int
	CurrentPage int
	TotalPages  int
	HasPrev     bool
	HasNext     bool
	PrevPage    int
	NextPage    int
	PageItems   []PaginationItem
}

// RenderHistoryPartial executes only the history table and pagination bar.
// Use for HTMX fragment refresh.
func RenderHistoryPartial(w io.Writer, data *HistoryData) error {
	return render(w, "partials/history.html", data)
}

// StationsData is the view model for the live station list.
type StationsData struct {
	Stations []ConversionRow
}

// RenderStationsPartial executes only the stations partial.
// Use for HTMX polling on the converter page.
func RenderStationsPartial(w io.Writer, data *StationsData) error {
	return render(w, "partials/stations.html", data)
}
