package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/attribution"
)

// userKind selects between the signup and trigger endpoints.
type userKind string

const (
	userSignup  userKind = "signup"
	userTrigger userKind = "trigger"
)

// UserFlags are the user identity flags shared by user commands.
type UserFlags struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	CreatedAt   string
	FirstTime   bool
	MixpanelID  string
	AmplitudeID string
	PosthogID   string
}

func (f *UserFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.ID, "user-id", "", "app user id (required)")
	_ = cmd.MarkFlagRequired("user-id")
	cmd.Flags().StringVar(&f.Name, "name", "", "user name")
	cmd.Flags().StringVar(&f.Email, "email", "", "user email")
	cmd.Flags().StringVar(&f.Phone, "phone", "", "user phone")
	cmd.Flags().StringVar(&f.CreatedAt, "created-at", "", "user creation time (RFC 3339)")
	cmd.Flags().BoolVar(&f.FirstTime, "first-time", false, "mark the user as first-time")
	cmd.Flags().StringVar(&f.MixpanelID, "mixpanel-id", "", "Mixpanel distinct id")
	cmd.Flags().StringVar(&f.AmplitudeID, "amplitude-id", "", "Amplitude device id")
	cmd.Flags().StringVar(&f.PosthogID, "posthog-id", "", "PostHog distinct id")
}

// userData builds the payload; the first-time flag is only sent when given.
func (f *UserFlags) userData(cmd *cobra.Command) attribution.UserData {
	u := attribution.UserData{
		ID:                 f.ID,
		Name:               f.Name,
		Phone:              f.Phone,
		Email:              f.Email,
		UserCreatedAt:      f.CreatedAt,
		MixpanelDistinctID: f.MixpanelID,
		AmplitudeDeviceID:  f.AmplitudeID,
		PosthogDistinctID:  f.PosthogID,
	}
	if cmd.Flags().Changed("first-time") {
		first := f.FirstTime
		u.IsFirstTimeUser = &first
	}
	return u
}

// UserOptions holds flags for the signup and trigger commands.
type UserOptions struct {
	*RootOptions
	User    UserFlags
	Data    map[string]string
	HashPII bool
}

// NewUserCommand creates the signup or trigger command.
func NewUserCommand(rootOpts *RootOptions, kind userKind) *cobra.Command {
	opts := &UserOptions{RootOptions: rootOpts}

	short := "Report a signup"
	if kind == userTrigger {
		short = "Report a session trigger for a known user"
	}

	cmd := &cobra.Command{
		Use:   string(kind),
		Short: short,
		Long: fmt.Sprintf(`%s. When the backend answers with a deep link and asks
for it to be opened, the link is opened right away unless auto deep links are
disabled (ATTRIBUTION_DISABLE_AUTO_DEEPLINK).

Examples:
  attributionctl %[2]s --user-id u_1 --email jane@example.com
  attributionctl %[2]s --user-id u_1 --data plan=pro --hash-pii`, short, kind),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUser(opts, kind, cmd)
		},
	}

	opts.User.bind(cmd)
	cmd.Flags().StringToStringVar(&opts.Data, "data", nil, "extra key=value data")
	cmd.Flags().BoolVar(&opts.HashPII, "hash-pii", false, "hash name, email and phone before sending")

	return cmd
}

func runUser(opts *UserOptions, kind userKind, cmd *cobra.Command) error {
	user := opts.User.userData(cmd)
	extra := stringMap(opts.Data)

	return runGated(cmd, opts.RootOptions, func(ctx context.Context, c *attribution.Client) (any, error) {
		if opts.HashPII {
			c.EnablePIIHashing(true)
		}
		if kind == userTrigger {
			return c.Trigger(ctx, user, extra)
		}
		return c.Signup(ctx, user, extra)
	})
}

// SetUserDataOptions holds flags for the set-user-data command.
type SetUserDataOptions struct {
	*RootOptions
	User    UserFlags
	HashPII bool
}

// NewSetUserDataCommand creates the set-user-data command.
func NewSetUserDataCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SetUserDataOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set-user-data",
		Short: "Update the user linked to this install",
		Long: `Send user details for this install without reporting a signup.

Examples:
  attributionctl set-user-data --user-id u_1 --name "Jane Doe"
  attributionctl set-user-data --user-id u_1 --phone +15550100 --hash-pii`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetUserData(opts, cmd)
		},
	}

	opts.User.bind(cmd)
	cmd.Flags().BoolVar(&opts.HashPII, "hash-pii", false, "hash name, email and phone before sending")

	return cmd
}

func runSetUserData(opts *SetUserDataOptions, cmd *cobra.Command) error {
	user := opts.User.userData(cmd)
	return runGated(cmd, opts.RootOptions, func(ctx context.Context, c *attribution.Client) (any, error) {
		if opts.HashPII {
			c.EnablePIIHashing(true)
		}
		return struct{}{}, c.SetUserData(ctx, user)
	})
}

func stringMap(in map[string]string) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
