package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"

	"ventas/internal/amqp"
	"ventas/internal/cli"
	"ventas/internal/config"
	"ventas/internal/core"
	"ventas/internal/log"
	"ventas/internal/services"
	"ventas/internal/sources/csvfile"
	"ventas/internal/storage"
)

// runContext is passed to every command's Run method.
type runContext struct {
	ctx     context.Context
	cfg     *config.Config
	logger  *log.Logger
	service *services.ImportService
}

var args struct {
	Timeout time.Duration `default:"5m" help:"Give up after this long."`

	Load    loadCmd    `cmd:"" help:"Import CSV files into SQLite as one batch."`
	Batches batchesCmd `cmd:"" help:"List imported batches, newest first."`
	Drop    dropCmd    `cmd:"" help:"Delete an import batch and its transactions."`
}

type loadCmd struct {
	Files     []string `arg:"" help:"CSV files to import." type:"existingfile"`
	Delimiter string   `help:"Field delimiter. Defaults to CSV_DELIMITER."`
	Source    string   `help:"Label stored with the batch. Defaults to the file names."`
}

type batchesCmd struct{}

type dropCmd struct {
	ID string `arg:"" help:"Batch id as printed by 'batches'."`
}

func main() {
	kctx := kong.Parse(&args,
		kong.Name("ventas-import"),
		kong.Description("Load POS exports into the SQLite store used by DATA_BACKEND=sqlite."),
	)

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Stderr).WithComponent(log.ComponentImport)
	cfg := cli.MustLoadConfig(logger)

	ctx, cancel := context.WithTimeout(context.Background(), args.Timeout)
	defer cancel()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		cli.Fatal(logger, "Failed to open SQLite store", err)
	}

	// Keep the interface nil when AMQP is off.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, "")
		if err != nil {
			logger.Warn("AMQP unavailable, dataset events will not be published", log.FieldError, err)
		} else {
			publisher = client
		}
	}

	svc := services.NewImportService(repo, publisher)
	err = kctx.Run(&runContext{ctx: ctx, cfg: cfg, logger: logger, service: svc})
	if cerr := svc.Close(); cerr != nil {
		logger.Warn("Close failed", log.FieldError, cerr)
	}
	kctx.FatalIfErrorf(err)
}

func (c *loadCmd) Run(rc *runContext) error {
	comma := rc.cfg.CSVComma()
	if c.Delimiter != "" {
		r := []rune(c.Delimiter)
		if len(r) != 1 {
			return fmt.Errorf("delimiter %q must be a single character", c.Delimiter)
		}
		comma = r[0]
	}

	parsed := make([][]core.Transaction, len(c.Files))
	g, ctx := errgroup.WithContext(rc.ctx)
	for i, path := range c.Files {
		g.Go(func() error {
			fh, err := os.Open(path)
			if err != nil {
				return err
			}
			defer fh.Close()
			txs, err := csvfile.Parse(ctx, fh, comma)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			rc.logger.Info("Parsed file", log.FieldSource, path, log.FieldRows, len(txs))
			parsed[i] = txs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var all []core.Transaction
	for _, txs := range parsed {
		all = append(all, txs...)
	}

	source := c.Source
	if source == "" {
		names := make([]string, len(c.Files))
		for i, f := range c.Files {
			names[i] = filepath.Base(f)
		}
		source = strings.Join(names, ",")
	}

	res, err := rc.service.Import(rc.ctx, source, all)
	if err != nil {
		return err
	}
	fmt.Printf("%s\t%d rows\n", res.BatchID, res.Rows)
	return nil
}

func (c *batchesCmd) Run(rc *runContext) error {
	batches, err := rc.service.Batches(rc.ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOURCE\tROWS\tIMPORTED")
	for _, b := range batches {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", b.ID, b.Source, b.Rows, b.ImportedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func (c *dropCmd) Run(rc *runContext) error {
	if err := rc.service.Delete(rc.ctx, c.ID); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", c.ID)
	return nil
}
