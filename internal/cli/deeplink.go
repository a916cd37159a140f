package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/attribution"
)

// NewDeeplinkCommand creates the deeplink command.
func NewDeeplinkCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "deeplink",
		Short: "Open the stored deferred deep link",
		Long: `Open the deferred deep link saved by a previous init, signup or trigger
and confirm it to the backend. The link is printed instead of opened.

Examples:
  attributionctl deeplink --store-driver sqlite
  attributionctl deeplink --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGated(cmd, rootOpts, func(ctx context.Context, c *attribution.Client) (any, error) {
				return struct{}{}, c.TriggerDeeplink(ctx)
			})
		},
	}
}

// NewAttributionCommand creates the attribution command.
func NewAttributionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "attribution",
		Short: "Print the campaign this install is attributed to",
		Long: `Fetch attribution data for this install from the backend.

Examples:
  attributionctl attribution --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGated(cmd, rootOpts, func(ctx context.Context, c *attribution.Client) (any, error) {
				return c.GetAttributionData(ctx)
			})
		},
	}
}

// AdditionalDataOptions holds flags for the additional-data command.
type AdditionalDataOptions struct {
	*RootOptions
	ClevertapID string
}

// NewAdditionalDataCommand creates the additional-data command.
func NewAdditionalDataCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AdditionalDataOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "additional-data",
		Short: "Link third-party integration ids to this install",
		Long: `Send integration ids for this install.

Examples:
  attributionctl additional-data --clevertap-id ct_123`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := attribution.IntegrationData{ClevertapID: opts.ClevertapID}
			return runGated(cmd, opts.RootOptions, func(ctx context.Context, c *attribution.Client) (any, error) {
				return struct{}{}, c.SetAdditionalData(ctx, data)
			})
		},
	}

	cmd.Flags().StringVar(&opts.ClevertapID, "clevertap-id", "", "CleverTap id (required)")
	_ = cmd.MarkFlagRequired("clevertap-id")

	return cmd
}

// NewPushTokenCommand creates the push-token command.
func NewPushTokenCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "push-token TOKEN",
		Short: "Register the device push token",
		Long: `Register a push notification token for this install.

Examples:
  attributionctl push-token fcm:abc123`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGated(cmd, rootOpts, func(ctx context.Context, c *attribution.Client) (any, error) {
				return struct{}{}, c.SetPushToken(ctx, args[0])
			})
		},
	}
}

// NewIDCommand creates the id command.
func NewIDCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "id",
		Short: "Print the install instance id",
		Long: `Print the install instance id from the store, creating it on first use.
No backend call is made.

Examples:
  attributionctl id --store ~/.local/share/attribution/kv.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.close()
			return printResult(cmd.OutOrStdout(), rootOpts.Format, map[string]string{
				"install_instance_id": s.client.InstallInstanceID(cmd.Context()),
			})
		},
	}
}
