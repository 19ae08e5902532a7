package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pnt-cleaner/helpers/utils"
	"github.com/pnt-cleaner/internal/engine"
	"github.com/pnt-cleaner/internal/report"
	"github.com/pnt-cleaner/internal/sinks"
	"github.com/pnt-cleaner/internal/sources"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// recordSource an engine source that knows its column names
type recordSource interface {
	engine.Source
	Header() []string
}

// openSource reads a CSV export when input is set, the configured table otherwise
func (c *cli) openSource(ctx context.Context, input string) (recordSource, error) {
	if input != "" {
		src, err := sources.OpenCSV(c.fs, input)
		if err != nil {
			return nil, err
		}
		return src, nil
	}

	pool, err := c.deps.Postgres(ctx)
	if err != nil {
		return nil, err
	}
	src, err := sources.OpenPostgres(ctx, pool, sources.TableConfig{
		Table:    c.cfg.Database.Table,
		IDColumn: c.cfg.Database.IDColumn,
		Limit:    c.cfg.Database.Limit,
	}, c.logger)
	if err != nil {
		return nil, err
	}
	return src, nil
}

type cleanOptions struct {
	input     string
	sinks     []string
	script    string
	summary   string
	limit     uint64
	strict    bool
	workers   int
	batchSize int
}

func (c *cli) cleanCmd() *cobra.Command {
	var opts cleanOptions
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean a procurement table and write the results",
		Long: `Reads records from a CSV export (--input) or the configured Postgres table,
cleans every column with its rule and writes the results to the selected sinks:
  script    UPDATE statements in a text file
  postgres  UPDATE statements applied in one transaction per batch
  mongo     one audit document per record`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("limit") {
				c.cfg.Database.Limit = opts.limit
			}
			if flags.Changed("strict") {
				c.cfg.Worker.Strict = opts.strict
			}
			if flags.Changed("workers") {
				c.cfg.Worker.Workers = opts.workers
			}
			if flags.Changed("batch-size") {
				c.cfg.Worker.BatchSize = opts.batchSize
			}
			if opts.script == "" {
				opts.script = c.cfg.Output.ScriptPath
			}
			if opts.summary == "" {
				opts.summary = c.cfg.Output.SummaryPath
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			return c.runClean(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.input, "input", "", "CSV export to clean instead of the database table")
	flags.StringSliceVar(&opts.sinks, "sinks", []string{"script"}, "outputs: script, postgres, mongo")
	flags.StringVar(&opts.script, "script", "", "UPDATE script path (default output.script_path)")
	flags.StringVar(&opts.summary, "summary", "", "summary workbook path (default output.summary_path)")
	flags.Uint64Var(&opts.limit, "limit", 0, "maximum rows read from the database")
	flags.BoolVar(&opts.strict, "strict", false, "abort on the first value that cannot be interpreted")
	flags.IntVar(&opts.workers, "workers", 0, "records cleaned in parallel")
	flags.IntVar(&opts.batchSize, "batch-size", 0, "records per sink write")
	return cmd
}

func (c *cli) openSinks(ctx context.Context, names []string, script, runID string) ([]engine.Sink, error) {
	table, idColumn := c.cfg.Database.Table, c.cfg.Database.IDColumn

	var out []engine.Sink
	for _, name := range names {
		switch name {
		case "script":
			s, err := sinks.CreateScriptFile(c.fs, script, table, idColumn)
			if err != nil {
				return out, err
			}
			out = append(out, s)
		case "postgres":
			pool, err := c.deps.Postgres(ctx)
			if err != nil {
				return out, err
			}
			out = append(out, sinks.NewPostgresSink(pool, table, idColumn, c.logger))
		case "mongo":
			db, err := c.deps.Mongo(ctx)
			if err != nil {
				return out, err
			}
			collection := db.Collection(c.cfg.Mongo.AuditCollection)
			if err := sinks.EnsureAuditIndexes(ctx, collection); err != nil {
				c.logger.Warn("Cannot create audit indexes", zap.Error(err))
			}
			out = append(out, sinks.NewMongoSink(collection, table, runID, c.logger))
		default:
			return out, fmt.Errorf("unknown sink %q", name)
		}
	}
	return out, nil
}

func closeSinks(list []engine.Sink) error {
	var errs []error
	for _, s := range list {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

func (c *cli) runClean(cmd *cobra.Command, opts cleanOptions) (err error) {
	ctx := cmd.Context()
	runID := utils.GenerateRunID()
	logger := c.logger.With(zap.String("run_id", runID))

	eng, err := c.deps.BuildEngine(ctx)
	if err != nil {
		return err
	}

	src, err := c.openSource(ctx, opts.input)
	if err != nil {
		return err
	}
	defer src.Close()

	if missing := eng.Processor.Dispatcher().MissingColumns(src.Header()); len(missing) > 0 {
		logger.Warn("Source lacks columns with cleaning rules", zap.Int("missing", len(missing)))
		for _, col := range missing {
			fmt.Fprintf(cmd.ErrOrStderr(), "missing column: %s\n", col)
		}
	}

	outputs, err := c.openSinks(ctx, opts.sinks, opts.script, runID)
	defer func() {
		if cerr := closeSinks(outputs); cerr != nil && err == nil {
			err = fmt.Errorf("close sinks: %w", cerr)
		}
	}()
	if err != nil {
		return err
	}

	summary := report.NewSummarySink()
	pool := engine.NewPool(eng.Processor, c.deps.PoolConfig(), logger)
	stats, err := pool.Run(ctx, src, append(outputs, summary)...)
	if err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}

	if opts.summary != "" {
		if err := summary.SaveWorkbook(c.fs, opts.summary); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"run %s: %d records in %s (cleaned %d, rejected %d, absent %d, untouched %d, failed %d)\n",
		runID, stats.Records, stats.Duration.Round(time.Millisecond),
		stats.Cleaned, stats.Rejected, stats.Absent, stats.Untouched, stats.Failed)
	return nil
}
