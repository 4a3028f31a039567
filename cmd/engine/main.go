package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"jobpilot-engine/internal/cache"
	"jobpilot-engine/internal/config"
	"jobpilot-engine/internal/dispatch"
	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/events"
	"jobpilot-engine/internal/httpapi"
	"jobpilot-engine/internal/letter"
	"jobpilot-engine/internal/logger"
	"jobpilot-engine/internal/match"
	"jobpilot-engine/internal/scheduler"
	"jobpilot-engine/internal/secrets"
	"jobpilot-engine/internal/source"
	"jobpilot-engine/internal/store"
	"jobpilot-engine/internal/track"
	"jobpilot-engine/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(os.Getenv("JOBPILOT_LOG_JSON") == "1", os.Getenv("JOBPILOT_DEBUG") == "1")
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init failed:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(log); err != nil {
		log.Fatal("engine exited", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	// Engine data dir: use env if provided (desktop shell can pass one),
	// else local folder.
	dataDir := os.Getenv("JOBPILOT_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	// One engine per data dir. A second instance would fight over the
	// sqlite file and double-send applications.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("instance lock: %w", err)
	}
	if !locked {
		return errors.New("another engine instance holds " + lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		return fmt.Errorf("config bootstrap: %w", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		normalized, vr := config.NormalizeAndValidate(cfg)
		if !vr.OK() {
			return cfg, fmt.Errorf("config invalid: %v", vr.Errors)
		}
		for _, warn := range vr.Warnings {
			log.Warn("config warning", zap.String("warning", warn))
		}
		return normalized, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		return fmt.Errorf("config load (%s): %w", userCfgPath, err)
	}
	cfgVal.Store(cfg)
	getCfg := func() config.Config { return cfgVal.Load().(config.Config) }

	profile, err := loadProfile(dataDir, log)
	if err != nil {
		return err
	}
	getProfile := func() domain.CandidateProfile { return profile }

	dbPath := filepath.Join(dataDir, "jobpilot.db")
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	hub := events.NewHub()

	// Quota survives restarts: seed from what already went out today.
	quota := dispatch.NewQuota(cfg.Workflow.MaxApplicationsPerDay, nil)
	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	if used, err := store.CountApplicationsSince(context.Background(), db.Pool, midnight); err != nil {
		log.Warn("quota seed failed", zap.Error(err))
	} else {
		quota.Seed(used)
	}

	limiter := dispatch.NewHostLimiter(cfg.Dispatch.HostRatePerSec, cfg.Dispatch.HostBurst)
	mailer := buildMailer(cfg, profile, log)

	strategies := []dispatch.Strategy{
		dispatch.NewPortalStrategy(limiter, profile),
		dispatch.NewFormStrategy(limiter, profile),
	}
	if mailer != nil {
		strategies = append(strategies, &dispatch.EmailStrategy{Mailer: mailer, Profile: profile})
	}
	dispatcher := dispatch.New(dispatch.Config{
		Quota:     quota,
		Ledger:    &dispatch.StoreLedger{DB: db.Pool},
		Hub:       hub,
		Log:       log,
		JitterMin: time.Duration(cfg.Dispatch.JitterMinSeconds) * time.Second,
		JitterMax: time.Duration(cfg.Dispatch.JitterMaxSeconds) * time.Second,
	}, strategies...)

	letters := buildLetters(cfg, log)
	tracker := track.New(db.Pool, mailer, hub, log)

	orch := workflow.New(workflow.Orchestrator{
		ConfigFn:  getCfg,
		ProfileFn: getProfile,
		Fetcher:   buildSources(cfg, log),
		Matcher:   match.New(),
		Applier:   dispatcher,
		Tracker:   tracker,
		Letters:   letters,
		Cache:     cache.New(cache.DefaultTTL),
		DB:        db.Pool,
		Hub:       hub,
		Log:       log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config edits can change the daily cap; pick them up off the hub.
	go watchConfigUpdates(ctx, hub, quota, getCfg)

	// Follow-up sweep twice a day; the due calculation does the real
	// spacing.
	go scheduler.Every(ctx, log, 12*time.Hour, "followups", func(ctx context.Context) error {
		sent, err := tracker.SweepFollowUps(ctx, getCfg().Workflow.FollowUpIntervalDays)
		if sent > 0 {
			log.Info("follow-ups sent", zap.Int("count", sent))
		}
		return err
	})

	if cfg.Tracker.InboxEnabled {
		go scheduler.Every(ctx, log, time.Hour, "inbox", func(ctx context.Context) error {
			return pollInbox(ctx, db, getCfg(), log)
		})
	}

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db.Pool,
		Hub:         hub,
		Log:         log,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		Orch:        orch,
		Matcher:     match.New(),
		Letters:     letters,
		Dispatcher:  dispatcher,
		Profile:     getProfile,
	})

	token, err := randomToken(16)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler: httpapi.Chain(mux,
			httpapi.RequestID,
			httpapi.Recover(log),
			httpapi.Cors,
			httpapi.AccessLog(log),
		),
		ReadHeaderTimeout: 5 * time.Second,
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv))

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Info("engine listening",
		zap.String("addr", "http://"+addr),
		zap.String("db", dbPath),
		zap.String("shutdown_token", token))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if orch.AutoEnabled() {
			_ = orch.StopAuto()
		}
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// loadProfile reads profile.yml from the data dir. A missing profile is
// tolerated so the engine can come up before onboarding; scoring will
// just be useless until one exists.
func loadProfile(dataDir string, log *zap.Logger) (domain.CandidateProfile, error) {
	path := filepath.Join(dataDir, "profile.yml")
	p, err := config.LoadProfile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn("no profile found, scoring disabled until one is created",
			zap.String("path", path))
		return domain.CandidateProfile{ID: "default"}, nil
	}
	if err != nil {
		return domain.CandidateProfile{}, fmt.Errorf("profile load: %w", err)
	}
	return p, nil
}

func buildSources(cfg config.Config, log *zap.Logger) *source.Multi {
	var srcs []source.Source
	if cfg.Sources.API.Enabled && len(cfg.Sources.API.Endpoints) > 0 {
		srcs = append(srcs, source.NewPostingsAPI(cfg.Sources.API.Endpoints))
	}
	if cfg.Sources.Boards.Enabled {
		for _, b := range cfg.Sources.Boards.Pages {
			srcs = append(srcs, source.NewBoardPage(b.Name, b.URL))
		}
	}
	return source.NewMulti(log, srcs...)
}

// buildMailer wires SMTP when it is configured and its credential is in
// the keyring. Without it the email strategy and follow-ups are off.
func buildMailer(cfg config.Config, profile domain.CandidateProfile, log *zap.Logger) dispatch.Mailer {
	if cfg.Dispatch.SMTPHost == "" || cfg.Dispatch.SMTPUsername == "" {
		return nil
	}
	pw, err := secrets.Get(secrets.SMTPAccount(cfg))
	if err != nil {
		log.Warn("smtp configured but credential missing, mail disabled", zap.Error(err))
		return nil
	}
	from := profile.Email
	if from == "" {
		from = cfg.Dispatch.SMTPUsername
	}
	return &dispatch.SMTPMailer{
		Host:     cfg.Dispatch.SMTPHost,
		Port:     cfg.Dispatch.SMTPPort,
		Username: cfg.Dispatch.SMTPUsername,
		Password: pw,
		From:     from,
	}
}

func buildLetters(cfg config.Config, log *zap.Logger) letter.Generator {
	if cfg.Letter.Provider != "gemini" {
		return letter.Template{}
	}
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" && cfg.Letter.APIKeyFile != "" {
		if b, err := os.ReadFile(cfg.Letter.APIKeyFile); err == nil {
			key = string(b)
		}
	}
	gen, err := letter.NewGemini(context.Background(), key, cfg.Letter.Model)
	if err != nil {
		log.Warn("gemini letters unavailable, using template", zap.Error(err))
		return letter.Template{}
	}
	return letter.WithFallback{Primary: gen}
}

func pollInbox(ctx context.Context, db *store.DB, cfg config.Config, log *zap.Logger) error {
	pw, err := secrets.Get(secrets.IMAPAccount(cfg))
	if err != nil {
		return fmt.Errorf("imap credential: %w", err)
	}
	w := &track.InboxWatcher{
		Addr:     fmt.Sprintf("%s:%d", cfg.Tracker.IMAPHost, cfg.Tracker.IMAPPort),
		Username: cfg.Tracker.Username,
		Password: pw,
		Mailbox:  cfg.Tracker.Mailbox,
		DB:       db.Pool,
		Log:      log,
	}
	updated, err := w.PollOnce(ctx)
	if updated > 0 {
		log.Info("inbox replies processed", zap.Int("updated", updated))
	}
	return err
}

// watchConfigUpdates keeps the daily quota limit in sync with config
// edits made through the API.
func watchConfigUpdates(ctx context.Context, hub *events.Hub, quota *dispatch.Quota, getCfg func() config.Config) {
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			var e events.Event
			if json.Unmarshal([]byte(msg), &e) == nil && e.Type == events.TypeConfigUpdated {
				quota.SetLimit(getCfg().Workflow.MaxApplicationsPerDay)
			}
		}
	}
}
