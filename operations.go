package attribution

import (
	"context"
	"log/slog"
	"maps"
	"reflect"
	"strconv"
	"strings"

	"github.com/dmitrymomot/attribution/pkg/deeplink"
	"github.com/dmitrymomot/attribution/pkg/logger"
)

// Trigger reports a user session. A returned deep link is stored and, when
// the backend flags it, opened right away.
func (c *Client) Trigger(ctx context.Context, user UserData, extra map[string]any) (TriggerData, error) {
	return c.userEvent(ctx, "trigger", pathTrigger, user, extra, Bridge.Trigger)
}

// Signup reports a new user. It behaves like Trigger.
func (c *Client) Signup(ctx context.Context, user UserData, extra map[string]any) (TriggerData, error) {
	return c.userEvent(ctx, "signup", pathSignup, user, extra, Bridge.Signup)
}

func (c *Client) userEvent(
	ctx context.Context,
	op, path string,
	user UserData,
	extra map[string]any,
	call func(Bridge, context.Context, UserRequest) (TriggerData, error),
) (TriggerData, error) {
	token, err := c.gate(ctx, op)
	if err != nil {
		return TriggerData{}, err
	}

	req := c.userRequest(ctx, token, user, extra)
	data, ok, err := send(ctx, c, op, path, req, func(b Bridge) (TriggerData, error) {
		return call(b, ctx, req)
	})
	if err != nil || !ok {
		return TriggerData{}, err
	}

	if data.Deeplink != "" {
		_ = c.deeplinks.Save(ctx, data.Deeplink)
	}
	if deeplink.ShouldAutoTrigger(data.Deeplink, data.Trigger, c.noAutoLink) {
		c.log.InfoContext(ctx, "opening deep link flagged by backend", logger.Operation(op))
		if err := c.activate(ctx); err != nil {
			return data, err
		}
	}
	return data, nil
}

// SetUserData updates the user profile attached to this install.
func (c *Client) SetUserData(ctx context.Context, user UserData) error {
	const op = "set_user_data"
	token, err := c.gate(ctx, op)
	if err != nil {
		return err
	}

	req := c.userRequest(ctx, token, user, nil)
	_, _, err = send(ctx, c, op, pathSetUserData, req, func(b Bridge) (noData, error) {
		return ignoreResult(func() error { return b.SetUserData(ctx, req) })
	})
	return err
}

func (c *Client) userRequest(ctx context.Context, token string, user UserData, extra map[string]any) UserRequest {
	data := make(map[string]any, len(extra)+1)
	maps.Copy(data, extra)
	data["device_data"] = c.collector.Collect(ctx)

	return UserRequest{
		Token:             token,
		UserData:          c.userData(user),
		Platform:          c.platform,
		InstallInstanceID: c.identity.GetOrCreate(ctx),
		Data:              data,
	}
}

// TrackEvent reports a custom event. name is required.
func (c *Client) TrackEvent(ctx context.Context, name string, data map[string]any, opts ...EventOption) error {
	const op = "track_event"
	token, err := c.gate(ctx, op)
	if err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return c.reject(ctx, op, ErrEventNameRequired)
	}

	eo := eventOptions{}
	for _, opt := range opts {
		opt(&eo)
	}
	eventID, ok := coerceEventID(eo.id)
	if !ok {
		c.log.WarnContext(ctx, "event id dropped: unsupported type",
			logger.Operation(op),
			slog.String("type", reflect.TypeOf(eo.id).String()),
		)
	}

	req := EventRequest{
		Token:             token,
		EventName:         name,
		EventData:         data,
		EventID:           eventID,
		DeviceData:        c.collector.Collect(ctx),
		Platform:          c.platform,
		InstallInstanceID: c.identity.GetOrCreate(ctx),
	}
	_, _, err = send(ctx, c, op, pathCaptureEvent, req, func(b Bridge) (noData, error) {
		return ignoreResult(func() error { return b.TrackEvent(ctx, req) })
	})
	return err
}

// coerceEventID turns string, integer and float ids into strings. A nil id
// is absent; any other kind is unsupported.
func coerceEventID(id any) (string, bool) {
	if id == nil {
		return "", true
	}
	v := reflect.ValueOf(id)
	switch v.Kind() {
	case reflect.String:
		return v.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), true
	default:
		return "", false
	}
}

// CapturePayment reports a payment. UserID is required; Type and Status
// default to PaymentTypeDefault and PaymentStatusCompleted.
func (c *Client) CapturePayment(ctx context.Context, p Payment) error {
	const op = "capture_payment"
	token, err := c.gate(ctx, op)
	if err != nil {
		return err
	}
	if p.UserID == "" {
		return c.reject(ctx, op, ErrUserIDRequired)
	}
	if p.Type == "" {
		p.Type = PaymentTypeDefault
	}
	if p.Status == "" {
		p.Status = PaymentStatusCompleted
	}
	if !p.Type.Valid() || !p.Status.Valid() {
		return c.reject(ctx, op, ErrInvalidPayment)
	}

	req := PaymentRequest{
		Token:             token,
		UserID:            p.UserID,
		Amount:            p.Amount,
		PaymentID:         p.PaymentID,
		Type:              p.Type,
		Status:            p.Status,
		DeviceData:        c.collector.Collect(ctx),
		Platform:          c.platform,
		InstallInstanceID: c.identity.GetOrCreate(ctx),
	}
	_, _, err = send(ctx, c, op, pathCapturePayment, req, func(b Bridge) (noData, error) {
		return ignoreResult(func() error { return b.CapturePayment(ctx, req) })
	})
	return err
}

// RemovePayment removes a captured payment by payment id, user id or both.
func (c *Client) RemovePayment(ctx context.Context, ref PaymentRef) error {
	const op = "remove_payment"
	token, err := c.gate(ctx, op)
	if err != nil {
		return err
	}
	if ref.PaymentID == "" && ref.UserID == "" {
		return c.reject(ctx, op, ErrPaymentIdentifierRequired)
	}

	req := RemovePaymentRequest{
		Token:             token,
		PaymentID:         ref.PaymentID,
		UserID:            ref.UserID,
		DeviceData:        c.collector.Collect(ctx),
		Platform:          c.platform,
		InstallInstanceID: c.identity.GetOrCreate(ctx),
	}
	_, _, err = send(ctx, c, op, pathRemovePayment, req, func(b Bridge) (noData, error) {
		return ignoreResult(func() error { return b.RemovePayment(ctx, req) })
	})
	return err
}

// TriggerDeeplink opens the stored deferred deep link and confirms it to
// the backend. A missing link, a navigation failure or a failed confirmation
// is logged and passed to the ErrorHandler; the link stays stored.
func (c *Client) TriggerDeeplink(ctx context.Context) error {
	if _, err := c.gate(ctx, "trigger_deeplink"); err != nil {
		return err
	}
	return c.activate(ctx)
}

// SetAdditionalData links the install to third-party integrations.
func (c *Client) SetAdditionalData(ctx context.Context, data IntegrationData) error {
	const op = "set_additional_data"
	token, err := c.gate(ctx, op)
	if err != nil {
		return err
	}

	req := AdditionalDataRequest{
		Token:             token,
		IntegrationInfo:   data,
		Platform:          c.platform,
		InstallInstanceID: c.identity.GetOrCreate(ctx),
	}
	_, _, err = send(ctx, c, op, pathSetAdditionalData, req, func(b Bridge) (noData, error) {
		return ignoreResult(func() error { return b.SetAdditionalData(ctx, req) })
	})
	return err
}

// GetAttributionData fetches what the backend knows about this install.
// When the request fails the data cached at Init is returned.
func (c *Client) GetAttributionData(ctx context.Context) (AttributionData, error) {
	const op = "get_attribution_data"
	token, err := c.gate(ctx, op)
	if err != nil {
		return AttributionData{}, err
	}

	req := TokenRequest{Token: token, InstallInstanceID: c.identity.GetOrCreate(ctx)}
	data, ok, err := send(ctx, c, op, pathAttributionData, req, func(b Bridge) (AttributionData, error) {
		return b.GetAttributionData(ctx)
	})
	if err != nil {
		return AttributionData{}, err
	}
	if !ok {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.attribution, nil
	}

	c.mu.Lock()
	c.attribution = data
	c.mu.Unlock()
	return data, nil
}

// SetPushToken registers the device push notification token.
func (c *Client) SetPushToken(ctx context.Context, pushToken string) error {
	const op = "set_push_token"
	token, err := c.gate(ctx, op)
	if err != nil {
		return err
	}
	if pushToken == "" {
		return c.reject(ctx, op, ErrPushTokenRequired)
	}

	req := PushTokenRequest{
		Token:             token,
		PushToken:         pushToken,
		Platform:          c.platform,
		InstallInstanceID: c.identity.GetOrCreate(ctx),
	}
	_, _, err = send(ctx, c, op, pathSetPushToken, req, func(b Bridge) (noData, error) {
		return ignoreResult(func() error { return b.SetPushToken(ctx, req) })
	})
	return err
}
