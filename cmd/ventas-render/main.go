package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"ventas/internal/analytics"
	"ventas/internal/backend"
	"ventas/internal/cli"
	"ventas/internal/core"
	"ventas/internal/log"
	"ventas/internal/render"
	"ventas/internal/services"
	appweb "ventas/web"
)

// exitWarning is returned when there is nothing to draw for the filter.
const exitWarning = 2

var args struct {
	Month   string        `help:"Month to render (YYYY-MM). Defaults to DEFAULT_MONTH." xor:"filter"`
	Start   string        `help:"First day of a date range (YYYY-MM-DD)." xor:"filter"`
	End     string        `help:"Last day of a date range (YYYY-MM-DD)."`
	Out     string        `short:"o" help:"Write the PNG to this file instead of stdout." type:"path"`
	DPI     int           `default:"100" help:"Output resolution."`
	Timeout time.Duration `default:"2m" help:"Give up after this long."`
}

func main() {
	kctx := kong.Parse(&args,
		kong.Name("ventas-render"),
		kong.Description("Render the sales dashboard for a month or date range as a PNG."),
	)

	cli.LoadEnvFile()
	// stdout may carry the image.
	logger := cli.SetupLogger(os.Stderr)
	cfg := cli.MustLoadConfig(logger)

	f, err := filterFromArgs(cfg.DefaultMonth)
	if core.IsWarning(err) {
		fmt.Fprintln(os.Stderr, warningText(err))
		os.Exit(exitWarning)
	}
	kctx.FatalIfErrorf(err)

	ctx, cancel := context.WithTimeout(context.Background(), args.Timeout)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize data backend", err)
	}
	defer func() { _ = result.Cleanup() }()

	svc := services.NewDashboardService(
		result.Reader,
		services.NewLogoSource(cfg.LogoPath, appweb.DefaultLogo),
		render.New(render.WithDPI(args.DPI)),
		analytics.Options{
			TopN:          cfg.TopN,
			Window:        cfg.MovingAverageWindow,
			LowSalesRatio: cfg.LowSalesRatio,
			Holidays:      cfg.HolidayDates(),
		},
	)

	var buf bytes.Buffer
	d, err := svc.Render(ctx, &buf, f)
	if err != nil {
		if core.IsWarning(err) {
			fmt.Fprintln(os.Stderr, warningText(err))
			_ = result.Cleanup()
			os.Exit(exitWarning)
		}
		cli.Fatal(logger, "Render failed", err)
	}

	if err := writeOutput(buf.Bytes()); err != nil {
		cli.Fatal(logger, "Failed to write image", err)
	}
	logger.Info("Dashboard rendered",
		log.FieldFilterMode, f.Mode,
		log.FieldDays, len(d.Daily),
		log.FieldBytes, buf.Len(),
		"out", outputName())
}

func filterFromArgs(defaultMonth string) (core.Filter, error) {
	if args.Start != "" || args.End != "" {
		if args.Start == "" || args.End == "" {
			return core.Filter{}, fmt.Errorf("--start and --end must be given together: %w", core.ErrIncompleteRange)
		}
		start, err := core.ParseDate(args.Start)
		if err != nil {
			return core.Filter{}, fmt.Errorf("--start %q: %w", args.Start, err)
		}
		end, err := core.ParseDate(args.End)
		if err != nil {
			return core.Filter{}, fmt.Errorf("--end %q: %w", args.End, err)
		}
		return core.RangeFilter(start, end), nil
	}
	month := args.Month
	if month == "" {
		month = defaultMonth
	}
	if _, err := core.ParseMonth(month); err != nil {
		return core.Filter{}, fmt.Errorf("--month %q: %w", month, err)
	}
	return core.MonthFilter(month), nil
}

// warningText drops the wrapping context; both warnings carry their user-facing text.
func warningText(err error) string {
	for _, w := range []error{core.ErrIncompleteRange, core.ErrNoData} {
		if errors.Is(err, w) {
			return w.Error()
		}
	}
	return err.Error()
}

func writeOutput(png []byte) error {
	if args.Out == "" {
		_, err := os.Stdout.Write(png)
		return err
	}
	return os.WriteFile(args.Out, png, 0o644)
}

func outputName() string {
	if args.Out == "" {
		return "stdout"
	}
	return args.Out
}
