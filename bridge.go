package attribution

import "context"

// Bridge is a native platform module that performs the operations itself.
// When set, requests are still built and validated locally, then handed to
// the bridge instead of the HTTP backend. Bridge errors are returned to the
// caller wrapped in ErrBridge.
type Bridge interface {
	Init(ctx context.Context, req InitRequest) (InitData, error)
	Trigger(ctx context.Context, req UserRequest) (TriggerData, error)
	Signup(ctx context.Context, req UserRequest) (TriggerData, error)
	SetUserData(ctx context.Context, req UserRequest) error
	TrackEvent(ctx context.Context, req EventRequest) error
	CapturePayment(ctx context.Context, req PaymentRequest) error
	RemovePayment(ctx context.Context, req RemovePaymentRequest) error
	TriggerDeeplink(ctx context.Context) error
	SetAdditionalData(ctx context.Context, req AdditionalDataRequest) error
	GetAttributionData(ctx context.Context) (AttributionData, error)
	SetPushToken(ctx context.Context, req PushTokenRequest) error
}
