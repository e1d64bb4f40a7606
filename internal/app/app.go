// Package app wires configuration, infrastructure and HTTP handlers into one process.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/situacio-backend/internal/db"
	httpserver "github.com/yungbote/situacio-backend/internal/http"
	httpH "github.com/yungbote/situacio-backend/internal/http/handlers"
	httpMW "github.com/yungbote/situacio-backend/internal/http/middleware"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/export"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/ingest"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/session"
	"github.com/yungbote/situacio-backend/internal/observability"
	"github.com/yungbote/situacio-backend/internal/platform/chrome"
	"github.com/yungbote/situacio-backend/internal/platform/gcp"
	"github.com/yungbote/situacio-backend/internal/platform/gdrive"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
	"github.com/yungbote/situacio-backend/internal/realtime"
	"github.com/yungbote/situacio-backend/internal/realtime/bus"
	"github.com/yungbote/situacio-backend/internal/repos"
)

type App struct {
	Log    *logger.Logger
	Cfg    Config
	Server *httpserver.Server

	hub     *realtime.Hub
	bus     bus.Bus
	closers []io.Closer
	otelOff func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	log, err := logger.New(envLogMode())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	a := &App{Log: log, Cfg: cfg}
	a.otelOff = observability.Init(ctx, log, cfg.Otel)

	if err := a.wire(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	log, cfg := a.Log, a.Cfg

	// Ledger
	ledgerDB, err := db.Open(log, cfg.DB)
	if err != nil {
		return fmt.Errorf("init ledger db: %w", err)
	}
	a.closers = append(a.closers, ledgerDB)
	if err := ledgerDB.AutoMigrateAll(); err != nil {
		return fmt.Errorf("ledger automigrate: %w", err)
	}
	ledger := repos.NewExportRecordRepo(ledgerDB.DB(), log)

	// Sessions + realtime
	a.hub = realtime.NewHub(log)
	var store session.Store
	var broker realtime.Broker
	switch cfg.SessionStore {
	case StoreMemory:
		store = session.NewMemoryStore(cfg.SessionTTL)
	case StoreRedis:
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		a.closers = append(a.closers, rdb)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		store = session.NewRedisStore(rdb, cfg.SessionTTL)
		b, err := bus.NewRedisBus(log, rdb, cfg.RedisChannel)
		if err != nil {
			return err
		}
		a.bus = b
		broker = b
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q (want memory|redis)", cfg.SessionStore)
	}
	sessions := session.NewManager(log, store)
	publisher := realtime.NewPublisher(log, a.hub, broker)

	// Ingestion + extraction
	var pdf ingest.PDFText
	if cfg.Document.Enabled() {
		doc, err := gcp.NewDocument(ctx, log, cfg.Document)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, doc)
		pdf = doc
	} else {
		log.Info("Document AI not configured; PDFs are read as raw text")
	}
	reader := ingest.NewReader(log, pdf)
	extractor, err := newExtractor(ctx, log, cfg)
	if err != nil {
		return err
	}

	// Export
	var archiver export.Archiver
	if cfg.ArchiveBucket != "" {
		storageCfg, err := gcp.ResolveObjectStorageConfigFromEnv()
		if err != nil {
			return err
		}
		arch, err := gcp.NewArchive(ctx, log, cfg.ArchiveBucket, storageCfg)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, arch)
		archiver = arch
	}
	capturer := chrome.New(log, chrome.Config{
		Bin:        cfg.ChromeBin,
		ControlURL: cfg.ChromeControlURL,
		Timeout:    cfg.ChromeTimeout,
		NoSandbox:  cfg.ChromeNoSandbox,
	})
	a.closers = append(a.closers, capturer)
	orchestrator := export.NewOrchestrator(log, export.Deps{
		Sessions:  sessions,
		Capturer:  capturer,
		Tokens:    gdrive.NewTokenSource(cfg.GoogleDisableADC),
		Uploader:  gdrive.NewUploader(log, &http.Client{Timeout: 60 * time.Second}),
		Recorder:  ledger,
		Archiver:  archiver,
		Publisher: publisher,
	})

	// HTTP
	auth, err := httpMW.NewSessionAuth(log, cfg.SessionSigningKey, cfg.SessionTTL)
	if err != nil {
		return err
	}
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	a.Server = httpserver.NewServer(httpserver.RouterConfig{
		Log:             log,
		ServiceName:     serviceName,
		CORSOrigins:     cfg.CORSOrigins,
		SessionAuth:     auth,
		HealthHandler:   httpH.NewHealthHandler(),
		SessionHandler:  httpH.NewSessionHandler(log, sessions, auth, publisher),
		DocumentHandler: httpH.NewDocumentHandler(log, sessions, reader, extractor, publisher),
		PreviewHandler:  httpH.NewPreviewHandler(log, sessions, orchestrator),
		ExportHandler:   httpH.NewExportHandler(log, orchestrator, ledger),
		RealtimeHandler: httpH.NewRealtimeHandler(log, a.hub),
	})
	return nil
}

// Run serves HTTP until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.bus != nil {
		if err := a.bus.StartForwarder(ctx, a.hub.Broadcast); err != nil {
			return fmt.Errorf("start realtime forwarder: %w", err)
		}
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("HTTP server listening", "addr", addr)
	return a.Server.Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.Log.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
	if a.otelOff != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelOff(ctx)
		cancel()
	}
	a.Log.Sync()
}
