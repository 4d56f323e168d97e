package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/perjones/mdblog/internal/config"
	"github.com/perjones/mdblog/internal/content"
	"github.com/perjones/mdblog/internal/gitsource"
	"github.com/perjones/mdblog/internal/history"
	"github.com/perjones/mdblog/internal/logfields"
	"github.com/perjones/mdblog/internal/metrics"
	"github.com/perjones/mdblog/internal/server"
	"github.com/perjones/mdblog/internal/site"
)

// workspaceDir holds cloned content repositories.
const workspaceDir = ".mdblog-workspace"

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
	} `cmd:"" help:"Build the site into the configured output directory"`

	Check struct {
	} `cmd:"" help:"Run the full build pipeline without publishing output"`

	Serve struct {
	} `cmd:"" help:"Build the site, then serve it with rebuild on change"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a configuration file and seed content"`

	Builds struct {
		Limit int `help:"Maximum number of records to show" default:"20"`
	} `cmd:"" help:"Show recent build history"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch kctx.Command() {
	case "build":
		err = runBuild(ctx, false)
	case "check":
		err = runBuild(ctx, true)
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit(CLI.Config, CLI.Init.Force)
	case "builds":
		err = runBuilds(ctx, CLI.Builds.Limit)
	default:
		err = fmt.Errorf("unknown command: %s", kctx.Command())
	}
	if err != nil {
		slog.Error("Command failed", logfields.Error(err))
		os.Exit(1)
	}
}

// newSource resolves the content source, cloning the configured git
// repository first when one is set.
func newSource(ctx context.Context, cfg *config.Config) (content.Source, error) {
	root := cfg.Content.Directory
	if cfg.Content.Source != nil {
		checkout, err := gitsource.NewClient(workspaceDir).Clone(ctx, cfg.Content.Source)
		if err != nil {
			return nil, err
		}
		// With a git source, content.directory names a path inside the
		// cloned repository.
		root = filepath.Join(checkout, strings.TrimPrefix(cfg.Content.Directory, "./"))
	}
	return content.NewDirSource(root), nil
}

func runBuild(ctx context.Context, checkOnly bool) error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	source, err := newSource(ctx, cfg)
	if err != nil {
		return err
	}

	builder, err := site.NewBuilder(cfg, source)
	if err != nil {
		return err
	}
	builder.SetCheckOnly(checkOnly)

	report, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	if checkOnly {
		slog.Info("Check passed",
			slog.Int("pages", report.Pages), slog.Int("assets", report.Assets))
	} else {
		slog.Info("Site built",
			logfields.Path(cfg.Output.Directory),
			slog.Int("pages", report.Pages), slog.Int("assets", report.Assets))
	}
	return nil
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	opts := server.Options{}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Server.Metrics {
		prec := metrics.NewPrometheusRecorder(prometheus.NewRegistry())
		opts.Metrics = prec
		recorder = prec
	}

	if cfg.Server.HistoryDB != "" {
		store, err := history.Open(cfg.Server.HistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.History = store
	}

	opts.Rebuild = func(ctx context.Context) (*site.Report, error) {
		source, err := newSource(ctx, cfg)
		if err != nil {
			return nil, err
		}
		builder, err := site.NewBuilder(cfg, source)
		if err != nil {
			return nil, err
		}
		return builder.SetRecorder(recorder).Build(ctx)
	}

	srv := server.New(cfg, opts)

	// Initial build before serving; a failure here still starts the
	// server so the status API can report it.
	report, err := opts.Rebuild(ctx)
	if err != nil {
		slog.Error("Initial build failed", logfields.Error(err))
	}
	if report != nil {
		srv.SetLastReport(ctx, report)
	}

	return srv.Start(ctx)
}

func runInit(configPath string, force bool) error {
	if err := config.Init(configPath, force); err != nil {
		return err
	}
	slog.Info("Configuration written", logfields.Path(configPath))

	if err := seedContent("content", force); err != nil {
		return err
	}
	slog.Info("Seed content written", logfields.Path("content"))
	return nil
}

func runBuilds(ctx context.Context, limit int) error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if cfg.Server.HistoryDB == "" {
		return fmt.Errorf("server.history_db is not configured")
	}

	store, err := history.Open(cfg.Server.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("no builds recorded")
		return nil
	}

	for _, rec := range recs {
		line := fmt.Sprintf("%s  %s  %-8s  pages=%d assets=%d  %s",
			rec.StartedAt.Format("2006-01-02 15:04:05"),
			rec.BuildID[:8], rec.Outcome, rec.Pages, rec.Assets,
			rec.Duration.Round(time.Millisecond))
		if rec.Error != "" {
			line += "  error=" + rec.Error
		}
		fmt.Println(line)
	}
	return nil
}
