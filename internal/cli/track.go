package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/attribution"
)

// TrackOptions holds flags for the track command.
type TrackOptions struct {
	*RootOptions
	Data    map[string]string
	EventID string
}

// NewTrackCommand creates the track command.
func NewTrackCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TrackOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "track EVENT",
		Short: "Capture a custom event",
		Long: `Capture a named event with optional data and event id. Numeric event
ids are sent as numbers would be by an app.

Examples:
  attributionctl track purchase_started --data sku=pro_monthly
  attributionctl track level_up --event-id 42`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrack(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringToStringVar(&opts.Data, "data", nil, "event key=value data")
	cmd.Flags().StringVar(&opts.EventID, "event-id", "", "event id")

	return cmd
}

func runTrack(opts *TrackOptions, name string, cmd *cobra.Command) error {
	var eventOpts []attribution.EventOption
	if opts.EventID != "" {
		eventOpts = append(eventOpts, attribution.WithEventID(parseEventID(opts.EventID)))
	}
	data := stringMap(opts.Data)

	return runGated(cmd, opts.RootOptions, func(ctx context.Context, c *attribution.Client) (any, error) {
		return struct{}{}, c.TrackEvent(ctx, name, data, eventOpts...)
	})
}

func parseEventID(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
