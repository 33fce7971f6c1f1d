package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/do"

	"github.com/Mahaveer86619/mindguide/internal/adapters/llm"
	"github.com/Mahaveer86619/mindguide/internal/adapters/notify"
	firestorestore "github.com/Mahaveer86619/mindguide/internal/adapters/storage/firestore"
	memstore "github.com/Mahaveer86619/mindguide/internal/adapters/storage/memory"
	pgstore "github.com/Mahaveer86619/mindguide/internal/adapters/storage/postgres"
	redisstore "github.com/Mahaveer86619/mindguide/internal/adapters/storage/redis"
	"github.com/Mahaveer86619/mindguide/internal/app/assessment"
	"github.com/Mahaveer86619/mindguide/internal/app/conversation"
	"github.com/Mahaveer86619/mindguide/internal/app/reports"
	"github.com/Mahaveer86619/mindguide/internal/app/session"
	"github.com/Mahaveer86619/mindguide/internal/config"
	"github.com/Mahaveer86619/mindguide/internal/domain"
	"github.com/Mahaveer86619/mindguide/internal/observability"
)

// storage bundles whatever the configured backend provides.
type storage struct {
	conversations domain.ConversationStore
	reports       domain.ReportArchive
	locker        domain.DistributedLocker
	closer        io.Closer
}

// Shutdown is called by the injector.
func (s *storage) Shutdown() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// logSink keeps the optional log file open for the process lifetime.
type logSink struct {
	file *os.File
}

func (l *logSink) Shutdown() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// newInjector registers every component for cfg. Nothing is built until it
// is first invoked.
func newInjector(ctx context.Context, cfg *config.Config) *do.Injector {
	di := do.New()

	do.ProvideValue(di, ctx)
	do.ProvideValue(di, cfg)

	do.Provide(di, newRegistry)
	do.Provide(di, newMetrics)
	do.Provide(di, newCompleter)
	do.Provide(di, newStorage)
	do.Provide(di, newNotifier)
	do.Provide(di, newSessionManager)
	do.Provide(di, newMachine)
	do.Provide(di, newConversationService)
	do.Provide(di, newReportsService)

	return di
}

// initLogging installs the process logger before anything else logs.
func initLogging(cfg *config.Config) (*logSink, error) {
	sink := &logSink{}
	opts := observability.LogOptions{Format: cfg.Log.Format, Level: cfg.Log.Level}
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		sink.file = f
		opts.File = f
	}
	observability.Init(opts)
	return sink, nil
}

func newRegistry(_ *do.Injector) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, nil
}

func newMetrics(di *do.Injector) (*observability.Metrics, error) {
	return observability.NewMetrics(do.MustInvoke[*prometheus.Registry](di)), nil
}

func newCompleter(di *do.Injector) (domain.Completer, error) {
	ctx := do.MustInvoke[context.Context](di)
	cfg := do.MustInvoke[*config.Config](di)

	switch cfg.LLM.Provider {
	case "gemini":
		slog.Info("using Gemini completer", "model", cfg.LLM.Model, "vertex", cfg.LLM.APIKey == "")
		return llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey:   cfg.LLM.APIKey,
			Project:  cfg.LLM.GCPProject,
			Location: cfg.LLM.GCPLocation,
			Model:    cfg.LLM.Model,
		})
	case "openai":
		slog.Info("using OpenAI-compatible completer", "model", cfg.LLM.Model, "base_url", cfg.LLM.BaseURL)
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		})
	default:
		slog.Info("using mock completer")
		return llm.NewMockLLM(), nil
	}
}

func newStorage(di *do.Injector) (*storage, error) {
	ctx := do.MustInvoke[context.Context](di)
	cfg := do.MustInvoke[*config.Config](di).Storage

	switch cfg.Backend {
	case "redis":
		slog.Info("using redis storage", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		store := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redisstore.WithTTL(cfg.RedisTTL))
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return &storage{
			conversations: store,
			reports:       store,
			locker:        redisstore.NewLocker(store.Client(), "mindguide:"),
			closer:        store,
		}, nil

	case "firestore":
		slog.Info("using firestore storage", "project", cfg.FirestoreProject)
		store, err := firestorestore.NewStore(ctx, cfg.FirestoreProject)
		if err != nil {
			return nil, err
		}
		return &storage{conversations: store, reports: store, closer: store}, nil

	case "postgres":
		slog.Info("using postgres storage")
		store, err := pgstore.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return &storage{conversations: store, reports: store, closer: store}, nil

	default:
		slog.Info("using in-memory storage")
		return &storage{
			conversations: memstore.NewConversationStore(),
			reports:       memstore.NewReportStore(),
		}, nil
	}
}

func newNotifier(di *do.Injector) (domain.Notifier, error) {
	cfg := do.MustInvoke[*config.Config](di).Notify

	if cfg.Channel == "smtp" {
		slog.Info("emergency alerts via smtp", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
		return notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.From,
		})
	}
	return notify.NewLogNotifier(), nil
}

func newSessionManager(di *do.Injector) (*session.Manager, error) {
	opts := []session.Option{session.WithLogger(observability.Logger())}
	if locker := do.MustInvoke[*storage](di).locker; locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	return session.NewManager(opts...), nil
}

func newMachine(di *do.Injector) (*assessment.Machine, error) {
	metrics := do.MustInvoke[*observability.Metrics](di)
	gen := assessment.NewGenerator(
		do.MustInvoke[domain.Completer](di),
		assessment.WithFallbackHook(func(c domain.Condition, _ int, _ error) {
			metrics.Fallback(string(c))
		}),
	)
	return assessment.NewMachine(gen), nil
}

func newConversationService(di *do.Injector) (*conversation.Service, error) {
	cfg := do.MustInvoke[*config.Config](di)
	store := do.MustInvoke[*storage](di)

	return conversation.NewService(
		do.MustInvoke[*assessment.Machine](di),
		store.conversations,
		conversation.WithArchive(store.reports),
		conversation.WithNotifier(do.MustInvoke[domain.Notifier](di)),
		conversation.WithLocks(do.MustInvoke[*session.Manager](di)),
		conversation.WithMetrics(do.MustInvoke[*observability.Metrics](di)),
		conversation.WithAutoStart(cfg.Assessment.AutoStart),
	), nil
}

func newReportsService(di *do.Injector) (*reports.Service, error) {
	return reports.NewService(do.MustInvoke[*storage](di).reports), nil
}
