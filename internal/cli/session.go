package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/attribution"
	"github.com/dmitrymomot/attribution/pkg/config"
	"github.com/dmitrymomot/attribution/pkg/deeplink"
	"github.com/dmitrymomot/attribution/pkg/logger"
	"github.com/dmitrymomot/attribution/pkg/metrics"
	"github.com/dmitrymomot/attribution/pkg/requestid"
)

// EnvPrefix is the environment prefix for client settings.
const EnvPrefix = "ATTRIBUTION_"

// session is one client instance bound to a command run.
type session struct {
	client  *attribution.Client
	metrics *metrics.Recorder
	opts    *RootOptions
	token   string
	stderr  io.Writer

	mu     sync.Mutex
	failed []error
}

// loadConfig merges the environment with the global flags.
func loadConfig(opts *RootOptions) (attribution.Config, error) {
	var cfg attribution.Config
	if err := config.Load(&cfg, config.WithPrefix(EnvPrefix), config.WithOptionalEnvFiles(opts.EnvFile)); err != nil {
		return cfg, err
	}
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.Token != "" {
		cfg.Token = opts.Token
	}
	if opts.Store != "" {
		cfg.Store = opts.Store
	}
	if opts.StoreDriver != "" {
		cfg.StoreDriver = opts.StoreDriver
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	s := &session{
		metrics: metrics.New(),
		opts:    opts,
		token:   cfg.Token,
		stderr:  cmd.ErrOrStderr(),
	}

	level := cfg.LogLevel
	if !opts.Verbose {
		level = "warn"
	}
	log := logger.New(
		logger.WithLevelName(level),
		logger.WithFormat(logger.FormatText),
		logger.WithOutput(s.stderr),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)

	out := cmd.OutOrStdout()
	clientOpts := []attribution.Option{
		attribution.WithLogger(log),
		attribution.WithMetrics(s.metrics),
		attribution.WithErrorHandler(s.record),
		attribution.WithNavigator(deeplink.NavigatorFunc(func(_ context.Context, url string) error {
			_, err := fmt.Fprintf(out, "opening %s\n", url)
			return err
		})),
	}
	if opts.Profile != "" {
		p, err := LoadProfile(opts.Profile)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load profile", err)
		}
		clientOpts = append(clientOpts, p.Options()...)
	}

	client, err := attribution.NewFromConfig(cmd.Context(), cfg, clientOpts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create client", err)
	}
	s.client = client
	return s, nil
}

// record collects failures the client reports instead of returning.
func (s *session) record(ctx context.Context, op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, fmt.Errorf("%s: %w", op, err))
}

// err returns every recorded failure as an ExitError, or nil.
func (s *session) err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.failed) == 0 {
		return nil
	}
	return WrapExitError(ExitFailure, "backend call failed", errors.Join(s.failed...))
}

// start initializes the client with the configured token.
func (s *session) start(ctx context.Context, opts ...attribution.InitOption) (attribution.InitData, error) {
	data, err := s.client.Init(ctx, s.token, opts...)
	if err != nil {
		return data, WrapExitError(ExitCommandError, "init", err)
	}
	if err := s.err(); err != nil {
		return data, err
	}
	if !s.client.Initialized() {
		return data, NewExitError(ExitFailure, "init did not complete")
	}
	return data, nil
}

// close releases the client and optionally dumps metrics.
func (s *session) close() {
	if s.opts.Metrics {
		if err := s.metrics.WriteText(s.stderr); err != nil {
			fmt.Fprintf(s.stderr, "metrics: %v\n", err)
		}
	}
	if err := s.client.Close(); err != nil {
		fmt.Fprintf(s.stderr, "close: %v\n", err)
	}
}

// runGated opens a session, initializes it and runs fn, printing its result.
func runGated(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, c *attribution.Client) (any, error)) error {
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()
	if _, err := s.start(ctx); err != nil {
		return err
	}

	result, err := fn(ctx, s.client)
	if err != nil {
		return WrapExitError(ExitCommandError, cmd.Name(), err)
	}
	if err := s.err(); err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), opts.Format, result)
}
