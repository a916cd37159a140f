package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/attribution"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Link   string
	Source string
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the client and print the attribution result",
		Long: `Collect the device fingerprint, install identity and click id, then
call the backend init endpoint. A deep link returned by the backend is
stored for a later "deeplink" run.

Examples:
  attributionctl init --token tok_live --profile device.yaml
  attributionctl init --link app://launch --format json
  attributionctl init --source ADS --store-driver sqlite`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Link, "link", "", "link the app was opened with")
	cmd.Flags().StringVar(&opts.Source, "source", "", "override the detected source (GENERAL|ADS)")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	var initOpts []attribution.InitOption
	if opts.Link != "" {
		initOpts = append(initOpts, attribution.WithLink(opts.Link))
	}
	if opts.Source != "" {
		src := attribution.Source(strings.ToUpper(opts.Source))
		if src != attribution.SourceGeneral && src != attribution.SourceAds {
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid source %q: must be GENERAL or ADS", opts.Source))
		}
		initOpts = append(initOpts, attribution.WithSource(src))
	}

	s, err := openSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.close()

	data, err := s.start(cmd.Context(), initOpts...)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), opts.Format, data)
}
