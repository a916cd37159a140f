package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/attribution"
)

// CapturePaymentOptions holds flags for the capture-payment command.
type CapturePaymentOptions struct {
	*RootOptions
	UserID    string
	Amount    float64
	PaymentID string
	Type      string
	Status    string
}

// NewCapturePaymentCommand creates the capture-payment command.
func NewCapturePaymentCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CapturePaymentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "capture-payment",
		Short: "Capture a payment",
		Long: `Capture a payment for a user. Type defaults to DEFAULT and status to
PAYMENT_COMPLETED.

Examples:
  attributionctl capture-payment --user-id u_1 --amount 9.99
  attributionctl capture-payment --user-id u_1 --amount 49 --payment-id pay_1 --type SUBSCRIPTION_CREATED`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapturePayment(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.UserID, "user-id", "", "paying user id (required)")
	_ = cmd.MarkFlagRequired("user-id")
	cmd.Flags().Float64Var(&opts.Amount, "amount", 0, "payment amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&opts.PaymentID, "payment-id", "", "payment id")
	cmd.Flags().StringVar(&opts.Type, "type", "", "payment type")
	cmd.Flags().StringVar(&opts.Status, "status", "", "payment status")

	return cmd
}

func runCapturePayment(opts *CapturePaymentOptions, cmd *cobra.Command) error {
	p := attribution.Payment{
		UserID:    opts.UserID,
		Amount:    opts.Amount,
		PaymentID: opts.PaymentID,
		Type:      attribution.PaymentType(strings.ToUpper(opts.Type)),
		Status:    attribution.PaymentStatus(strings.ToUpper(opts.Status)),
	}
	return runGated(cmd, opts.RootOptions, func(ctx context.Context, c *attribution.Client) (any, error) {
		return struct{}{}, c.CapturePayment(ctx, p)
	})
}

// RemovePaymentOptions holds flags for the remove-payment command.
type RemovePaymentOptions struct {
	*RootOptions
	UserID    string
	PaymentID string
}

// NewRemovePaymentCommand creates the remove-payment command.
func NewRemovePaymentCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RemovePaymentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "remove-payment",
		Short: "Remove captured payments",
		Long: `Remove a captured payment by id, or every payment of a user.

Examples:
  attributionctl remove-payment --payment-id pay_1
  attributionctl remove-payment --user-id u_1`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemovePayment(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.PaymentID, "payment-id", "", "payment id")
	cmd.Flags().StringVar(&opts.UserID, "user-id", "", "user id")
	cmd.MarkFlagsOneRequired("payment-id", "user-id")

	return cmd
}

func runRemovePayment(opts *RemovePaymentOptions, cmd *cobra.Command) error {
	ref := attribution.PaymentRef{PaymentID: opts.PaymentID, UserID: opts.UserID}
	return runGated(cmd, opts.RootOptions, func(ctx context.Context, c *attribution.Client) (any, error) {
		return struct{}{}, c.RemovePayment(ctx, ref)
	})
}
