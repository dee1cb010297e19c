package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/dm/ecemon/internal/client"
	"github.com/dm/ecemon/internal/config"
	"github.com/dm/ecemon/internal/engine"
	"github.com/dm/ecemon/internal/logging"
	"github.com/dm/ecemon/internal/metrics"
	"github.com/dm/ecemon/internal/persist"
	"github.com/dm/ecemon/internal/summary"
	"github.com/dm/ecemon/internal/tui"
)

const name = "ecemon"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand(os.Stdout, os.Stderr).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// newCommand builds the CLI. Progress and the summary go to stdout, logs to stderr.
func newCommand(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     "Collect health and capacity metrics from an Elastic Cloud Enterprise installation",
		UsageText: name + " [options]\n" + name + " show [options] <report.json>",
		Description: `Walks the ECE control plane (platform, allocators, deployments), queries
cluster health and stats on every selected deployment's Elasticsearch
endpoint, prints a summary and writes the full report to a file.

Settings are read from a .env file, then the environment, then flags.

Examples:
  ecemon --host https://ece.example.com:12443 --api-key $KEY
  ecemon -f 'prod-*' -o prod.yaml --format yaml
  ecemon show ece_metrics.json --browse`,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     rootFlags(),
		Commands: []*cli.Command{
			showCmd(stdout, stderr),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Present() {
				return fmt.Errorf("unexpected argument %q", cmd.Args().First())
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runCollect(ctx, cfg, stdout, stderr)
		},
	}
}

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "env-file",
			Usage: "dotenv file to load before reading the environment",
			Value: ".env",
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "ECE control-plane URL, e.g. https://ece.example.com:12443 (env ECE_HOST)",
		},
		&cli.StringFlag{
			Name:  "api-key",
			Usage: "ECE API key (env ECE_API_KEY)",
		},
		&cli.StringFlag{
			Name:  "username",
			Usage: "basic auth user when no API key is given (env ECE_USERNAME)",
		},
		&cli.StringFlag{
			Name:  "password",
			Usage: "basic auth password (env ECE_PASSWORD)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "report file path (env OUTPUT_FILE, default ece_metrics.json)",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "report format: json or yaml (env OUTPUT_FORMAT)",
		},
		&cli.BoolFlag{
			Name:  "verify-tls",
			Usage: "verify TLS certificates (env VERIFY_SSL)",
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "glob on deployment names, e.g. 'prod-*' (env FILTER_NAME)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "per-request timeout (env REQUEST_TIMEOUT, default 30s)",
		},
		&cli.FloatFlag{
			Name:  "max-rps",
			Usage: "maximum requests per second, 0 for unpaced (env MAX_REQUESTS_PER_SECOND)",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "also write Prometheus textfile metrics to this path (env METRICS_FILE)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level: debug, info, warn, error (env LOG_LEVEL)",
		},
		&cli.BoolFlag{
			Name:  "browse",
			Usage: "open an interactive browser over the report after writing it",
		},
	}
}

// loadConfig layers .env, the environment and explicitly set flags, then
// validates the result.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	if err := config.LoadDotEnv(cmd.String("env-file")); err != nil {
		return config.Config{}, err
	}
	s, err := config.FromEnv()
	if err != nil {
		return config.Config{}, err
	}
	applyFlags(cmd, &s)
	return config.Resolve(s)
}

// applyFlags copies flags onto s. A flag overrides the environment only when
// it was given on the command line.
func applyFlags(cmd *cli.Command, s *config.Settings) {
	if cmd.IsSet("host") {
		s.Host = cmd.String("host")
	}
	if cmd.IsSet("api-key") {
		s.APIKey = cmd.String("api-key")
	}
	if cmd.IsSet("username") {
		s.Username = cmd.String("username")
	}
	if cmd.IsSet("password") {
		s.Password = cmd.String("password")
	}
	if cmd.IsSet("output") {
		s.OutputFile = cmd.String("output")
	}
	if cmd.IsSet("format") {
		s.OutputFormat = cmd.String("format")
	}
	if cmd.IsSet("verify-tls") {
		s.VerifyTLS = cmd.Bool("verify-tls")
	}
	if cmd.IsSet("filter") {
		s.Filter = cmd.String("filter")
	}
	if cmd.IsSet("timeout") {
		s.Timeout = cmd.Duration("timeout")
	}
	if cmd.IsSet("max-rps") {
		s.MaxRPS = cmd.Float("max-rps")
	}
	if cmd.IsSet("metrics-file") {
		s.MetricsFile = cmd.String("metrics-file")
	}
	if cmd.IsSet("log-level") {
		s.LogLevel = cmd.String("log-level")
	}
	s.Browse = cmd.Bool("browse")
}

// runCollect performs one collection run. Fetch failures are part of the
// report; only output failures are returned.
func runCollect(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) (err error) {
	logger := logging.New(stderr, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))
	if !cfg.VerifyTLS {
		logger.Warn("TLS certificate verification disabled")
	}

	recorder := metrics.NewRecorder()
	c, err := client.NewDefaultClient(client.ClientConfig{
		BaseURL:            cfg.BaseURL,
		Credentials:        cfg.Credentials,
		InsecureSkipVerify: !cfg.VerifyTLS,
		RequestTimeout:     cfg.Timeout,
		RequestsPerSecond:  cfg.MaxRPS,
		RunID:              runID,
		Logger:             logger,
		OnResult:           recorder.ObserveFetch,
	})
	if err != nil {
		return err
	}
	defer c.Close()

	fmt.Fprintf(stdout, "--- Starting Metrics Collection for Host: %s ---\n", cfg.BaseURL)
	logger.Debug("starting collection",
		zap.String("host", cfg.BaseURL),
		zap.String("auth", cfg.Credentials.Kind()),
		zap.String("filter", cfg.Filter.Pattern()),
	)

	start := time.Now()
	collector := engine.NewCollector(c, engine.CollectorOptions{
		Filter:   cfg.Filter,
		Progress: stdout,
		Logger:   logger,
	})
	report, collectErr := collector.Collect(ctx)
	if collectErr != nil {
		logger.Warn("collection interrupted, writing partial report", zap.Error(collectErr))
	}

	s := engine.Summarize(report)
	if rerr := summary.Render(stdout, s); rerr != nil {
		logger.Error("failed to print summary", zap.Error(rerr))
	}

	fmt.Fprintf(stdout, "Attempting to write all collected data to '%s'...\n", cfg.OutputFile)
	if werr := persist.Write(cfg.OutputFile, report, cfg.OutputFormat); werr != nil {
		logger.Error("failed to write report", zap.String("path", cfg.OutputFile), zap.Error(werr))
		err = multierr.Append(err, werr)
	} else {
		fmt.Fprintf(stdout, "Successfully saved metrics to '%s'\n", cfg.OutputFile)
	}

	if cfg.MetricsFile != "" {
		recorder.RecordSummary(s)
		recorder.RecordDuration(time.Since(start))
		if merr := recorder.WriteTextfile(cfg.MetricsFile); merr != nil {
			logger.Error("failed to write metrics", zap.String("path", cfg.MetricsFile), zap.Error(merr))
			err = multierr.Append(err, merr)
		} else {
			logger.Info("metrics written", zap.String("path", cfg.MetricsFile))
		}
	}

	if cfg.Browse && ctx.Err() == nil {
		err = multierr.Append(err, tui.Run(ctx, cfg.BaseURL, runID, s))
	}
	return err
}

func showCmd(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print the summary of a previously written JSON report",
		ArgsUsage: "<report.json>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("show requires exactly one report file")
			}
			level, err := logging.ParseLevel(cmd.String("log-level"))
			if err != nil {
				return err
			}
			logger := logging.New(stderr, level)
			defer func() { _ = logger.Sync() }()

			path := cmd.Args().First()
			report, err := persist.Read(path)
			if err != nil {
				return err
			}
			logger.Debug("report loaded",
				zap.String("path", path),
				zap.Int("deployments", len(report.Deployments)),
			)

			s := engine.Summarize(report)
			if err := summary.Render(stdout, s); err != nil {
				return fmt.Errorf("print summary: %w", err)
			}
			if cmd.Bool("browse") {
				return tui.Run(ctx, path, "", s)
			}
			return nil
		},
	}
}
