package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/lockdash/internal/config"
	"github.com/five82/lockdash/internal/lockapi"
	"github.com/five82/lockdash/internal/logging"
	"github.com/five82/lockdash/internal/prefs"
	"github.com/five82/lockdash/internal/realtime"
	"github.com/five82/lockdash/internal/scan"
	"github.com/five82/lockdash/internal/state"
	"github.com/five82/lockdash/internal/ui"
)

// Options configure lockdash.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/lockdash/prefs.toml
	APIBaseURL string // overrides prefs and config when set
	PollEvery  int    // seconds; zero uses config
	LogLevel   string // overrides config when set
	Quiet      bool   // log to the file only
}

// Services is the wired object graph shared by the TUI and CLI commands.
type Services struct {
	Config       config.Config
	Prefs        prefs.Prefs
	PrefsPath    string
	PollInterval time.Duration
	Logger       zerolog.Logger

	API       *lockapi.Client
	Store     *state.Store
	Transport *realtime.Client
	Tracker   *scan.Tracker

	prefsMu   sync.Mutex
	bridge    *Bridge
	logCloser io.Closer
	closeOnce sync.Once
}

// Build loads configuration and constructs every component. Nothing is
// started; call Start to connect and begin polling.
func Build(opts Options) (*Services, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load lockdash config: %w", err)
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return nil, fmt.Errorf("load prefs: %w", err)
	}

	level := cfg.LogLevel
	if strings.TrimSpace(opts.LogLevel) != "" {
		level = opts.LogLevel
	}
	logger, closer, err := logging.New(logging.Options{
		Level:  level,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Quiet:  opts.Quiet,
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	baseURL := userPrefs.BaseURL(cfg.APIBaseURL)
	if strings.TrimSpace(opts.APIBaseURL) != "" {
		baseURL = opts.APIBaseURL
	}

	api, err := lockapi.NewClient(baseURL)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("init lock api client: %w", err)
	}

	transport, err := realtime.NewClient(api.BaseURL(),
		realtime.WithRetryDelay(cfg.ReconnectDelay),
		realtime.WithLogger(logger),
	)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("init realtime client: %w", err)
	}

	interval := cfg.PollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	svc := &Services{
		Config:       cfg,
		Prefs:        userPrefs,
		PrefsPath:    opts.PrefsPath,
		PollInterval: interval,
		Logger:       logger,
		API:          api,
		Store:        state.New(api, state.WithLogger(logger)),
		Transport:    transport,
		Tracker:      scan.NewTracker(transport, scan.WithLogger(logger)),
		logCloser:    closer,
	}
	logger.Debug().
		Str("api", api.BaseURL()).
		Str("socket", transport.URL()).
		Dur("poll", interval).
		Msg("services built")
	return svc, nil
}

// Start connects the transport, performs the initial refresh and launches
// the poller and push-event bridge. It returns once the initial refresh is
// done; background work stops when ctx is cancelled.
func (s *Services) Start(ctx context.Context) {
	s.bridge = StartBridge(ctx, s.Transport, s.Store, s.Config.StatsDays, s.Logger)
	s.Transport.Connect()
	Refresh(ctx, s.Store, s.Config.StatsDays)
	StartPoller(ctx, s.Store, s.PollInterval, s.Config.StatsDays)
}

// Close tears down the transport and releases the log file.
func (s *Services) Close() {
	s.closeOnce.Do(func() {
		if s.bridge != nil {
			s.bridge.Close()
		}
		s.Tracker.Close()
		if err := s.Transport.Close(); err != nil {
			s.Logger.Warn().Err(err).Msg("close transport")
		}
		s.Logger.Debug().Msg("services closed")
		_ = s.logCloser.Close()
	})
}

// Run boots the lockdash TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	opts.Quiet = true
	svc, err := Build(opts)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	svc.Start(ctx)

	uiOpts := ui.Options{
		Context:    ctx,
		Store:      svc.Store,
		Tracker:    svc.Tracker,
		Transport:  svc.Transport,
		Controller: svc,
		PollTick:   time.Second,
		StatsDays:  svc.Config.StatsDays,
		ThemeName:  svc.Prefs.Theme,
		LogPath:    svc.Config.LogFile,
	}
	return ui.Run(uiOpts)
}
