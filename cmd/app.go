package cmd

import (
	"context"
	"fmt"

	"github.com/teemow/recap/internal/analysis"
	"github.com/teemow/recap/internal/claude"
	"github.com/teemow/recap/internal/config"
	"github.com/teemow/recap/internal/drive"
	"github.com/teemow/recap/internal/instrumentation"
	"github.com/teemow/recap/internal/pipeline"
	"github.com/teemow/recap/internal/queue"
	"github.com/teemow/recap/internal/ratelimit"
	"github.com/teemow/recap/internal/server"
	"github.com/teemow/recap/internal/sheets"
	"github.com/teemow/recap/internal/zoom"
)

// app bundles the wired pipeline shared by the serve, process, backfill
// and mcp commands.
type app struct {
	cfg       *config.Config
	zoom      *zoom.Client
	queue     *queue.Queue
	analyzer  *analysis.Service
	processor *pipeline.Processor
	sc        *server.ServerContext
}

// buildApp wires the full pipeline from config: Zoom and Google clients,
// the rate-limited request queue, the Claude coordinator, the analysis
// service and the processor, all composed into a ServerContext. The
// provider may be nil for commands that run without instrumentation.
func buildApp(ctx context.Context, cfg *config.Config, provider *instrumentation.Provider) (*app, error) {
	instrumented := provider != nil && provider.Enabled()

	var zoomOpts []zoom.Option
	if cfg.Zoom.BaseURL != "" {
		zoomOpts = append(zoomOpts, zoom.WithBaseURL(cfg.Zoom.BaseURL))
	}
	zoomClient, err := zoom.NewClient(ctx, zoom.Credentials{
		AccountID:    cfg.Zoom.AccountID,
		ClientID:     cfg.Zoom.ClientID,
		ClientSecret: cfg.Zoom.ClientSecret,
	}, zoomOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Zoom client: %w", err)
	}

	var driveOpts []drive.Option
	if cfg.Google.SharedDriveID != "" {
		driveOpts = append(driveOpts, drive.WithSharedDrive(cfg.Google.SharedDriveID))
	}
	driveClient, err := drive.NewClient(ctx, cfg.Google.CredentialsFile, driveOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive client: %w", err)
	}

	// The token bucket holds a full minute of budget and refills
	// continuously, so short bursts are allowed but the per-minute
	// spend cannot exceed the configured limit.
	tpm := float64(cfg.Anthropic.TokensPerMinute)
	bucket := ratelimit.NewTokenBucket(tpm, tpm/60)

	claudeOpts := []claude.ClientOption{
		claude.WithModel(cfg.Anthropic.Model),
		claude.WithCooldown(cfg.Anthropic.Cooldown),
	}
	if cfg.Anthropic.BaseURL != "" {
		claudeOpts = append(claudeOpts, claude.WithBaseURL(cfg.Anthropic.BaseURL))
	}
	if instrumented {
		claudeOpts = append(claudeOpts, claude.WithClientMetrics(provider.Metrics()))
	}
	modelClient := claude.NewClient(cfg.Anthropic.APIKey, claudeOpts...)

	var queueOpts []queue.Option
	if instrumented {
		queueOpts = append(queueOpts, queue.WithMetrics(provider.Metrics()))
	}
	q := queue.New(bucket, modelClient.Complete, queueOpts...)

	coordOpts := []claude.CoordinatorOption{
		claude.WithCallCeiling(cfg.Anthropic.CallCeiling),
		claude.WithChunkBaseDelay(cfg.Anthropic.ChunkBaseDelay),
	}
	if instrumented {
		coordOpts = append(coordOpts, claude.WithCoordinatorMetrics(provider.Metrics()))
	}
	coordinator := claude.NewCoordinator(q, coordOpts...)

	analyzer := analysis.NewService(coordinator,
		analysis.WithInterKindDelay(cfg.Analysis.InterKindDelay),
		analysis.WithMaxOutputTokens(cfg.Anthropic.MaxOutputTokens),
		analysis.WithTemperature(cfg.Anthropic.Temperature),
	)

	var procOpts []pipeline.Option
	if kinds := cfg.AnalysisKinds(); len(kinds) > 0 {
		procOpts = append(procOpts, pipeline.WithDefaultKinds(kinds))
	}
	if cfg.Google.ReportSpreadsheet != "" {
		report, err := sheets.NewClient(ctx, cfg.Google.CredentialsFile, cfg.Google.ReportSpreadsheet)
		if err != nil {
			return nil, fmt.Errorf("failed to create Sheets client: %w", err)
		}
		procOpts = append(procOpts, pipeline.WithReport(report))
	}
	if instrumented {
		procOpts = append(procOpts, pipeline.WithMetrics(provider.Metrics()))
	}
	processor := pipeline.NewProcessor(zoomClient, driveClient, analyzer, cfg.Google.RootFolderID, procOpts...)

	ctxOpts := []server.ContextOption{
		server.WithAnalyzer(analyzer),
		server.WithRecordings(zoomClient),
	}
	if instrumented {
		audit := instrumentation.NewAuditLoggerWithConfig(nil, instrumentation.DefaultConfig().AuditLogging)
		ctxOpts = append(ctxOpts, server.WithInstrumentation(provider.Metrics(), audit))
	}
	sc := server.NewServerContext(ctx, processor, q, ctxOpts...)

	return &app{
		cfg:       cfg,
		zoom:      zoomClient,
		queue:     q,
		analyzer:  analyzer,
		processor: processor,
		sc:        sc,
	}, nil
}

// shutdown tears the app down, draining the request queue.
func (a *app) shutdown() error {
	return a.sc.Shutdown()
}
