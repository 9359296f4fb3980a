// Package wire is the composition root: the only place concrete adapters
// are chosen and wired to the service layer's interface dependencies.
// Build constructs everything; StartBackground, in this same file, starts
// the reconciliation and lease-expiry loops.
package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	pgdb "github.com/marcus-ai/marcus/internal/adapter/postgres"

	"github.com/marcus-ai/marcus/internal/adapter/board/memboard"
	boardpool "github.com/marcus-ai/marcus/internal/adapter/board/pooled"
	"github.com/marcus-ai/marcus/internal/adapter/eventbus/inproc"
	"github.com/marcus-ai/marcus/internal/adapter/ledgerstore/fsstore"
	"github.com/marcus-ai/marcus/internal/adapter/ledgerstore/pgstore"
	"github.com/marcus-ai/marcus/internal/adapter/locker/memlock"
	"github.com/marcus-ai/marcus/internal/adapter/locker/pglocker"
	"github.com/marcus-ai/marcus/internal/adapter/oracle/anthropic"
	"github.com/marcus-ai/marcus/internal/adapter/oracle/heuristic"
	oraclepool "github.com/marcus-ai/marcus/internal/adapter/oracle/pooled"

	"github.com/marcus-ai/marcus/internal/config"
	"github.com/marcus-ai/marcus/internal/domain/assignment"
	domainlease "github.com/marcus-ai/marcus/internal/domain/lease"
	"github.com/marcus-ai/marcus/internal/domain/reversion"
	"github.com/marcus-ai/marcus/internal/port/board"
	"github.com/marcus-ai/marcus/internal/port/eventbus"
	"github.com/marcus-ai/marcus/internal/port/ledgerstore"
	"github.com/marcus-ai/marcus/internal/port/locker"
	"github.com/marcus-ai/marcus/internal/port/oracle"

	"github.com/marcus-ai/marcus/internal/service/coordinator"
	"github.com/marcus-ai/marcus/internal/service/graph"
	"github.com/marcus-ai/marcus/internal/service/inferrer"
	"github.com/marcus-ai/marcus/internal/service/ledger"
	"github.com/marcus-ai/marcus/internal/service/lease"
	"github.com/marcus-ai/marcus/internal/service/matcher"
	"github.com/marcus-ai/marcus/internal/service/reconciler"

	"github.com/marcus-ai/marcus/internal/transport/adminhttp"
	"github.com/marcus-ai/marcus/internal/transport/eventws"
	mcptransport "github.com/marcus-ai/marcus/internal/transport/mcp"
)

// App holds the top-level resources needed to run and gracefully stop the
// coordinator, and the background loops StartBackground starts on it.
type App struct {
	Pool *pgxpool.Pool // nil unless a postgres backend was selected

	Config      config.Config
	Coordinator *coordinator.Service
	Reconciler  *reconciler.Service
	Lease       *lease.Manager
	Ledger      *ledger.Service
	MCPServer   *mcptransport.Server

	// AdminServer is nil unless cfg.AdminAddr is set; ListenAndServe/Shutdown
	// are the caller's responsibility, mirroring how MCPServer.Run is driven
	// from cmd/marcus rather than started inside Build.
	AdminServer *http.Server

	log *slog.Logger
}

// Build is the composition root: the only place concrete types are wired
// to their interface dependencies. Backend selection (ledgerstore, locker,
// oracle) is driven entirely by cfg.
func Build(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	var (
		pool  *pgxpool.Pool
		store ledgerstore.Store
		lock  locker.AdvisoryLocker
	)

	switch cfg.LedgerBackend {
	case config.LedgerBackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("wire: LEDGER_BACKEND=postgres requires DATABASE_URL")
		}
		p, err := pgdb.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("wire: connecting to database: %w", err)
		}
		pool = p
		pgs, err := pgstore.New(ctx, pool)
		if err != nil {
			return nil, fmt.Errorf("wire: initializing postgres ledger store: %w", err)
		}
		store = pgs
		lock = pglocker.New(pool)
	default:
		fss, err := fsstore.New(cfg.DataDir, cfg.FsyncOnSave)
		if err != nil {
			return nil, fmt.Errorf("wire: initializing filesystem ledger store: %w", err)
		}
		store = fss
		lock = memlock.New()
	}

	var ora oracle.Oracle
	switch cfg.OracleBackend {
	case config.OracleBackendAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("wire: ORACLE_BACKEND=anthropic requires ANTHROPIC_API_KEY")
		}
		ora = anthropic.New(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	case config.OracleBackendHeuristic:
		ora = heuristic.New()
	case config.OracleBackendNone:
		ora = nil
	default:
		ora = heuristic.New()
	}

	// No production Board client is built (kanban integration is an
	// external collaborator specified only by interface); memboard stands
	// in as the default standalone run mode. Both Board and Oracle are
	// wrapped with a bounded-concurrency pool per §5.
	var brd board.Board = boardpool.New(memboard.New(), cfg.BoardPoolSize)
	if ora != nil {
		ora = oraclepool.New(ora, cfg.OraclePoolSize)
	}

	bus := inproc.New(log, cfg.EventQueueMax)

	ledgerSvc := ledger.New(store, lock)
	if _, err := ledgerSvc.Load(ctx); err != nil {
		return nil, fmt.Errorf("wire: loading assignment ledger: %w", err)
	}

	graphSvc := graph.New()
	leaseMgr := lease.New(cfg.Lease, bus)
	for _, a := range ledgerSvc.All() {
		leaseMgr.Restore(domainLeaseFromAssignment(a))
	}

	matcherSvc := matcher.New(graphSvc)
	inferrerSvc := inferrer.New(cfg.Inferrer, ora, store, log)

	coord := coordinator.New(cfg.Coordinator, brd, ora, graphSvc, ledgerSvc, leaseMgr, matcherSvc, inferrerSvc, bus, log)

	revCounter := reversion.NewCounter()
	reconSvc := reconciler.New(brd, ledgerSvc, leaseMgr, revCounter, bus, log, cfg.Lease.DefaultDuration)

	mcpServer := mcptransport.New(coord, log)

	var adminServer *http.Server
	if cfg.AdminAddr != "" {
		hub := eventws.NewHub(log)
		if err := hub.Subscribe(ctx, bus); err != nil {
			return nil, fmt.Errorf("wire: subscribing event hub: %w", err)
		}
		router := adminhttp.NewRouter(coord, hub, log)
		adminServer = &http.Server{Addr: cfg.AdminAddr, Handler: router}
	}

	log.Info("application wired",
		"ledger_backend", cfg.LedgerBackend,
		"oracle_backend", cfg.OracleBackend,
	)

	return &App{
		Pool:        pool,
		Config:      cfg,
		Coordinator: coord,
		Reconciler:  reconSvc,
		Lease:       leaseMgr,
		Ledger:      ledgerSvc,
		MCPServer:   mcpServer,
		AdminServer: adminServer,
		log:         log,
	}, nil
}

// StartupReconcile runs the one-shot reconciliation pass (§4.6) before the
// tool surface starts accepting calls.
func (a *App) StartupReconcile(ctx context.Context) error {
	report, err := a.Reconciler.StartupReconcile(ctx)
	if err != nil {
		return err
	}
	a.log.Info("startup reconciliation complete",
		"removed", report.Removed, "restored", report.Restored,
		"verified", report.Verified, "errors", report.Errors)
	return nil
}

// StartBackground starts the steady-state reconciliation loop and the
// lease-expiry sweep as supervised, backoff-protected goroutines, following
// the teacher's reaper.go background-loop-start idiom.
func (a *App) StartBackground(ctx context.Context) {
	interval := a.Config.CheckInterval

	go coordinator.Every(ctx, a.log, "reconciler", interval, func(ctx context.Context) error {
		a.Reconciler.RunCycle(ctx)
		return nil
	})

	go coordinator.Every(ctx, a.log, "lease-expiry", interval, func(ctx context.Context) error {
		a.Lease.Tick(ctx, time.Now().UTC())
		return nil
	})

	if a.AdminServer != nil {
		go func() {
			if err := a.AdminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.log.Error("admin http server exited", "error", err)
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.AdminServer.Shutdown(shutdownCtx); err != nil {
				a.log.Error("admin http server shutdown", "error", err)
			}
		}()
	}
}

// domainLeaseFromAssignment rebuilds the in-memory lease state the
// Assignment Ledger's durable record implies, for startup restore. The
// ledger does not persist the lease's own id, since it is never looked up
// by it; a fresh one is minted here.
func domainLeaseFromAssignment(a assignment.Assignment) domainlease.Lease {
	return domainlease.Lease{
		ID:            uuid.New(),
		TaskID:        a.TaskID,
		AgentID:       a.AgentID,
		Status:        domainlease.Status(a.Status),
		AcquiredAt:    a.AssignedAt,
		ExpiresAt:     a.LeaseExpiresAt,
		LastHeartbeat: a.LastHeartbeat,
		RenewalCount:  a.RenewalCount,
	}
}
