package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/attribution/internal/fakebackend"
	"github.com/dmitrymomot/attribution/pkg/logger"
)

// FakeBackendOptions holds flags for the fake-backend command.
type FakeBackendOptions struct {
	*RootOptions
	Addr     string
	Deeplink string
	Trigger  bool
	Require  string
}

// NewFakeBackendCommand creates the fake-backend command.
func NewFakeBackendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FakeBackendOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fake-backend",
		Short: "Serve an in-process attribution backend",
		Long: `Serve a local backend that answers every client endpoint and logs
each call. Useful to try the other commands without a real backend.

Examples:
  attributionctl fake-backend --addr :4000
  attributionctl fake-backend --deeplink app://promo/42 --trigger
  attributionctl fake-backend --require-token tok_live`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFakeBackend(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "127.0.0.1:4000", "listen address")
	cmd.Flags().StringVar(&opts.Deeplink, "deeplink", "", "deep link returned by init, signup and trigger")
	cmd.Flags().BoolVar(&opts.Trigger, "trigger", false, "ask clients to open the deep link on signup and trigger")
	cmd.Flags().StringVar(&opts.Require, "require-token", "", "reject calls with a different token")

	return cmd
}

func runFakeBackend(opts *FakeBackendOptions, cmd *cobra.Command) error {
	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	log := logger.New(
		logger.WithLevelName(level),
		logger.WithFormat(logger.FormatText),
		logger.WithOutput(cmd.ErrOrStderr()),
	)

	var backendOpts []fakebackend.Option
	backendOpts = append(backendOpts, fakebackend.WithLogger(log))
	if opts.Require != "" {
		backendOpts = append(backendOpts, fakebackend.WithToken(opts.Require))
	}
	backend := fakebackend.New(backendOpts...)
	if opts.Deeplink != "" {
		backend.WithDeeplink(opts.Deeplink, opts.Trigger)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	err := fakebackend.Serve(ctx, opts.Addr, backend.Handler(), log, func(addr string) {
		fmt.Fprintf(out, "listening on http://%s\n", addr)
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "fake backend", err)
	}
	return nil
}
