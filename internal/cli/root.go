package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands. Empty connection flags
// fall back to the ATTRIBUTION_* environment.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	BaseURL     string
	Token       string
	Store       string
	StoreDriver string
	Profile     string
	EnvFile     string
	Metrics     bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for attributionctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "attributionctl",
		Short: "Drive the attribution client from the command line",
		Long: `attributionctl runs the attribution client against a backend as a
simulated device. Device traits come from a YAML profile; install identity
and the deferred deep link persist in the configured store between runs.

Settings not given as flags are read from ATTRIBUTION_* variables and an
optional .env file.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.BaseURL, "base-url", "", "backend base URL")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", "", "project token")
	cmd.PersistentFlags().StringVar(&opts.Store, "store", "", "store location (file path or redis URL)")
	cmd.PersistentFlags().StringVar(&opts.StoreDriver, "store-driver", "", "store driver (memory|file|sqlite|redis)")
	cmd.PersistentFlags().StringVar(&opts.Profile, "profile", "", "YAML device profile")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "optional .env file")
	cmd.PersistentFlags().BoolVar(&opts.Metrics, "metrics", false, "print request metrics to stderr on exit")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewUserCommand(opts, userSignup))
	cmd.AddCommand(NewUserCommand(opts, userTrigger))
	cmd.AddCommand(NewSetUserDataCommand(opts))
	cmd.AddCommand(NewTrackCommand(opts))
	cmd.AddCommand(NewCapturePaymentCommand(opts))
	cmd.AddCommand(NewRemovePaymentCommand(opts))
	cmd.AddCommand(NewDeeplinkCommand(opts))
	cmd.AddCommand(NewAttributionCommand(opts))
	cmd.AddCommand(NewAdditionalDataCommand(opts))
	cmd.AddCommand(NewPushTokenCommand(opts))
	cmd.AddCommand(NewIDCommand(opts))
	cmd.AddCommand(NewFakeBackendCommand(opts))

	return cmd
}
