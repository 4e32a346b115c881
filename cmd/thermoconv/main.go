// Command thermoconv validates Celsius values and prints them in Fahrenheit
// and Kelvin together with their gauge fill and colour band.
//
//	thermoconv [-decimals n] [-json] [-record] [-selftest] <celsius>...
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"thermogauge/internal/config"
	"thermogauge/internal/db"
	"thermogauge/internal/migrate"
	"thermogauge/internal/modules/converter/repository"
	"thermogauge/internal/modules/converter/service"
	"thermogauge/internal/modules/converter/types"
	"thermogauge/internal/observability"
	"thermogauge/internal/temperature"
)

const barWidth = 20

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	decimals    int
	decimalsSet bool
	asJSON      bool
	record      bool
	selftest    bool
}

// converter is satisfied by *service.Service; without -record a local
// implementation converts without storing anything.
type converter interface {
	Convert(ctx context.Context, req types.Request) (types.Result, error)
}

type previewOnly struct{ svc *service.Service }

func (p previewOnly) Convert(_ context.Context, req types.Request) (types.Result, error) {
	return p.svc.Preview(req)
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("thermoconv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.IntVar(&opts.decimals, "decimals", 0, "fractional digits 0-6 (default: as many as the input has)")
	fs.BoolVar(&opts.asJSON, "json", false, "print one JSON object per value")
	fs.BoolVar(&opts.record, "record", false, "store conversions in the database configured by the environment")
	fs.BoolVar(&opts.selftest, "selftest", false, "check the reference conversions and exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: thermoconv [-decimals n] [-json] [-record] [-selftest] <celsius>...")
		fs.PrintDefaults()
	}

	flagArgs, values := splitArgs(args)
	if err := fs.Parse(flagArgs); err != nil {
		return 2
	}
	values = append(values, fs.Args()...)

	if opts.selftest {
		return selftest(stdout)
	}
	if len(values) == 0 {
		fs.Usage()
		return 2
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "decimals" {
			opts.decimalsSet = true
		}
	})
	if opts.decimalsSet && (opts.decimals < 0 || opts.decimals > temperature.MaxDecimals) {
		fmt.Fprintf(stderr, "thermoconv: -decimals must be between 0 and %d\n", temperature.MaxDecimals)
		return 2
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	metrics := observability.NewUnregisteredMetrics()

	var conv converter = previewOnly{svc: service.NewService(nil, metrics, logger)}
	if opts.record {
		svc, closeDB, err := openRecorder(logger, metrics)
		if err != nil {
			fmt.Fprintf(stderr, "thermoconv: %v\n", err)
			return 1
		}
		defer closeDB()
		conv = svc
	}

	var decimals *int
	if opts.decimalsSet {
		decimals = &opts.decimals
	}

	out := newPrinter(stdout, opts.asJSON)
	status := 0
	for _, v := range values {
		res, err := conv.Convert(context.Background(), types.Request{Input: v, Decimals: decimals, Source: types.SourceCLI})
		var verr *temperature.ValidationError
		switch {
		case errors.As(err, &verr):
			out.invalid(v, verr.Kind)
			status = 1
			continue
		case err != nil && res.Gauges == nil:
			fmt.Fprintf(stderr, "thermoconv: %q: %v\n", v, err)
			status = 1
			continue
		case err != nil:
			fmt.Fprintf(stderr, "thermoconv: %q not recorded: %v\n", v, err)
			status = 1
		}
		out.result(res)
	}
	if err := out.err; err != nil {
		fmt.Fprintf(stderr, "thermoconv: write: %v\n", err)
		return 1
	}
	return status
}

var negativeNumber = regexp.MustCompile(`^-\d`)

// splitArgs separates flags from values so that negative temperatures such as
// -40 are not mistaken for flags.
func splitArgs(args []string) (flags, values []string) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			return flags, append(values, args[i+1:]...)
		case negativeNumber.MatchString(a):
			values = append(values, a)
		case strings.HasPrefix(a, "-"):
			flags = append(flags, a)
			name := strings.TrimLeft(a, "-")
			if name == "decimals" && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		default:
			values = append(values, a)
		}
	}
	return flags, values
}

func openRecorder(logger *slog.Logger, metrics *observability.Metrics) (*service.Service, func(), error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	conn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := migrate.Run(context.Background(), conn); err != nil {
		_ = db.Close(conn)
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	svc := service.NewService(repository.NewRepository(conn), metrics, logger)
	return svc, func() {
		if err := db.Close(conn); err != nil {
			logger.Error("db close", "error", err)
		}
	}, nil
}

type printer struct {
	w      io.Writer
	asJSON bool
	enc    *json.Encoder
	r      *lipgloss.Renderer
	err    error
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	return &printer{w: w, asJSON: asJSON, enc: json.NewEncoder(w), r: lipgloss.NewRenderer(w)}
}

type jsonLine struct {
	Input    string               `json:"input"`
	Valid    bool                 `json:"valid"`
	Kind     temperature.Kind     `json:"kind,omitempty"`
	Error    string               `json:"error,omitempty"`
	Decimals *int                 `json:"decimals,omitempty"`
	Reading  *temperature.Reading `json:"reading,omitempty"`
	Band     string               `json:"band,omitempty"`
	Color    string               `json:"color,omitempty"`
	Gauges   []temperature.Gauge  `json:"gauges,omitempty"`
}

func (p *printer) invalid(input string, k temperature.Kind) {
	if p.asJSON {
		p.encode(jsonLine{Input: input, Kind: k, Error: k.Message()})
		return
	}
	p.printf("%s  %s\n", input, p.r.NewStyle().Foreground(lipgloss.Color("#ef4444")).Render(k.Message()))
}

func (p *printer) result(res types.Result) {
	if p.asJSON {
		p.encode(jsonLine{
			Input:    res.Input,
			Valid:    true,
			Decimals: &res.Decimals,
			Reading:  &res.Reading,
			Band:     res.Band.String(),
			Color:    res.Color,
			Gauges:   res.Gauges,
		})
		return
	}

	band := p.r.NewStyle().Foreground(lipgloss.Color(res.Color)).Bold(true)
	p.printf("%s °C  =  %s °F  =  %s K  %s\n",
		temperature.Format(float64(res.Reading.Celsius)),
		temperature.Format(float64(res.Reading.Fahrenheit)),
		temperature.Format(float64(res.Reading.Kelvin)),
		band.Render("["+res.Band.String()+"]"),
	)
	fill := p.r.NewStyle().Foreground(lipgloss.Color(res.Color))
	for _, g := range res.Gauges {
		n := int(g.Fill / 100 * barWidth)
		p.printf("  %-3s %s%s %5s%%\n",
			g.Unit,
			fill.Render(strings.Repeat("█", n)),
			strings.Repeat("░", barWidth-n),
			temperature.Format(temperature.Round(g.Fill, 1)),
		)
	}
}

func (p *printer) encode(v any) {
	if p.err == nil {
		p.err = p.enc.Encode(v)
	}
}

func (p *printer) printf(format string, a ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, a...)
	}
}

// selftest checks the two reference conversions the widget was built around.
func selftest(w io.Writer) int {
	checks := []struct {
		celsius temperature.Celsius
		want    temperature.Reading
	}{
		{45, temperature.Reading{Celsius: 45, Fahrenheit: 113, Kelvin: 318.15}},
		{14, temperature.Reading{Celsius: 14, Fahrenheit: 57.2, Kelvin: 287.15}},
	}
	status := 0
	for _, c := range checks {
		got := temperature.Convert(c.celsius, temperature.DefaultDecimals)
		verdict := "ok"
		if got != c.want {
			verdict = "FAIL"
			status = 1
		}
		fmt.Fprintf(w, "%-4s %s °C -> %s °F, %s K (want %s °F, %s K)\n",
			verdict,
			temperature.Format(float64(c.celsius)),
			temperature.Format(float64(got.Fahrenheit)),
			temperature.Format(float64(got.Kelvin)),
			temperature.Format(float64(c.want.Fahrenheit)),
			temperature.Format(float64(c.want.Kelvin)),
		)
	}
	return status
}
