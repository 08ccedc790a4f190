package services

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"ventas/internal/analytics"
	"ventas/internal/core"
	"ventas/internal/render"
	"ventas/internal/sources"
)

// DashboardService runs the load → filter → aggregate → render pipeline.
// Every call reloads the dataset through reader; there is no state shared
// between calls besides whatever caching reader does.
type DashboardService struct {
	reader   sources.TransactionReader
	logo     LogoSource
	renderer *render.Renderer
	opts     analytics.Options
}

func NewDashboardService(reader sources.TransactionReader, logo LogoSource, renderer *render.Renderer, opts analytics.Options) *DashboardService {
	if renderer == nil {
		renderer = render.New()
	}
	return &DashboardService{
		reader:   reader,
		logo:     logo,
		renderer: renderer,
		opts:     opts,
	}
}

// Build loads the dataset and computes the dashboard for f.
func (s *DashboardService) Build(ctx context.Context, f core.Filter) (core.Dashboard, error) {
	txs, err := s.load(ctx)
	if err != nil {
		return core.Dashboard{}, err
	}
	return s.build(ctx, txs, f)
}

// Render builds the dashboard for f and writes the composite PNG to w.
// The dataset and the logo are loaded concurrently.
func (s *DashboardService) Render(ctx context.Context, w io.Writer, f core.Filter) (core.Dashboard, error) {
	var (
		txs  []core.Transaction
		logo image.Image
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.load(gctx)
		return err
	})
	g.Go(func() error {
		if s.logo == nil {
			return nil
		}
		var err error
		logo, err = s.logo.Logo(gctx)
		if err != nil {
			return fmt.Errorf("load logo: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Dashboard{}, err
	}

	d, err := s.build(ctx, txs, f)
	if err != nil {
		return core.Dashboard{}, err
	}

	start := time.Now()
	if err := s.renderer.Render(w, d, logo); err != nil {
		return core.Dashboard{}, fmt.Errorf("render dashboard: %w", err)
	}
	slog.DebugContext(ctx, "Dashboard rendered",
		"filter", f.Key(),
		"duration", time.Since(start))
	return d, nil
}

func (s *DashboardService) load(ctx context.Context) ([]core.Transaction, error) {
	if s.reader == nil {
		return nil, fmt.Errorf("dashboard service: no transaction source configured")
	}
	txs, err := s.reader.ReadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return txs, nil
}

func (s *DashboardService) build(ctx context.Context, txs []core.Transaction, f core.Filter) (core.Dashboard, error) {
	d, err := analytics.Build(txs, f, s.opts)
	if err != nil {
		if core.IsWarning(err) {
			slog.InfoContext(ctx, "Nothing to draw", "filter", f.Key(), "reason", err)
		}
		return core.Dashboard{}, err
	}
	slog.DebugContext(ctx, "Dashboard built",
		"filter", f.Key(),
		"rows", d.Summary.Rows,
		"days", len(d.Daily))
	return d, nil
}
