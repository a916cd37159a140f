package attribution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/attribution/pkg/clickid"
	"github.com/dmitrymomot/attribution/pkg/deeplink"
	"github.com/dmitrymomot/attribution/pkg/fingerprint"
	"github.com/dmitrymomot/attribution/pkg/identity"
	"github.com/dmitrymomot/attribution/pkg/kvstore"
	"github.com/dmitrymomot/attribution/pkg/logger"
	"github.com/dmitrymomot/attribution/pkg/metrics"
	"github.com/dmitrymomot/attribution/pkg/referrer"
	"github.com/dmitrymomot/attribution/pkg/transport"
)

const (
	// PackageVersion is reported to the backend on init.
	PackageVersion = "0.2.0"

	// DefaultPlatform identifies this SDK to the backend.
	DefaultPlatform = "GO"
)

// Backend endpoints.
const (
	pathInit              = "/api/client/init"
	pathTrigger           = "/api/client/trigger"
	pathSignup            = "/api/client/signup"
	pathSetUserData       = "/api/client/set-user-data"
	pathCapturePayment    = "/api/client/capture-payment"
	pathRemovePayment     = "/api/client/remove-captured-payment"
	pathCaptureEvent      = "/api/client/capture-event"
	pathDeeplinkTriggered = "/api/client/deeplink-triggered"
	pathAttributionData   = "/api/client/attribution-data"
	pathSetAdditionalData = "/api/client/set-additional-data"
	pathSetPushToken      = "/api/client/set-push-token"
)

// Operation results recorded in metrics.
const (
	resultOK             = "ok"
	resultFailed         = "failed"
	resultRejected       = "rejected"
	resultNotInitialized = "not_initialized"
)

// Client is the attribution client. It starts uninitialized; a successful
// Init moves it to initialized for the rest of its life. Methods are safe for
// concurrent use and are not serialized against each other.
type Client struct {
	api       *transport.Client
	store     kvstore.Store
	identity  *identity.Manager
	collector *fingerprint.Collector
	clickIDs  *clickid.Extractor
	deeplinks *deeplink.Store
	activator *deeplink.Activator
	bridge    Bridge
	onError   ErrorHandler
	metrics   *metrics.Recorder
	log       *slog.Logger

	appVersion string
	platform   string
	noAutoLink bool

	hashPII atomic.Bool
	noAds   atomic.Bool

	mu          sync.RWMutex
	token       string
	initData    InitData
	attribution AttributionData
}

// New creates an uninitialized client talking to the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	o := &options{
		store:    kvstore.NewMemory(),
		os:       fingerprint.OSOther,
		platform: DefaultPlatform,
	}
	for _, opt := range opts {
		opt(o)
	}

	log := logger.OrDiscard(o.log).With(logger.Component("attribution"))

	topts := []transport.Option{
		transport.WithLogger(o.log),
		transport.WithUserAgent(fmt.Sprintf("attribution-go/%s", PackageVersion)),
		transport.WithNoRetry(),
	}
	if o.httpClient != nil {
		topts = append(topts, transport.WithHTTPClient(o.httpClient))
	}
	if o.metrics != nil {
		topts = append(topts, transport.WithOnResult(o.metrics.ObserveAttempt))
	}
	if o.withBreaker {
		bs := transport.DefaultBreakerSettings()
		if o.metrics != nil {
			bs.OnStateChange = o.metrics.ObserveBreaker
		}
		topts = append(topts, transport.WithCircuitBreaker(bs))
	}
	api, err := transport.New(baseURL, append(topts, o.transport...)...)
	if err != nil {
		return nil, err
	}

	c := &Client{
		api:        api,
		store:      o.store,
		bridge:     o.bridge,
		onError:    o.onError,
		metrics:    o.metrics,
		log:        log,
		appVersion: o.appVersion,
		platform:   o.platform,
		noAutoLink: o.noAutoLink,
	}
	c.hashPII.Store(o.hashPII)
	c.noAds.Store(o.noAds)

	// Platforms without an install referrer resolve to an empty payload.
	var channel referrer.Channel
	if o.os.SupportsInstallReferrer() {
		channel = o.channel
	}
	reader := referrer.NewReader(channel, referrer.WithLogger(o.log))
	c.identity = identity.NewManager(o.store, identity.WithLogger(o.log))
	c.collector = fingerprint.NewCollector(
		fingerprint.WithOS(o.os),
		fingerprint.WithFields(o.fields...),
		fingerprint.WithReferrer(reader),
		fingerprint.WithAdvertisingID(o.ads),
		fingerprint.WithAdvertisingIDDisabled(c.noAds.Load),
		fingerprint.WithLogger(o.log),
	)
	c.clickIDs = clickid.NewExtractor(reader, clickid.WithKey(o.clickIDKey), clickid.WithLogger(o.log))
	c.deeplinks = deeplink.NewStore(o.store, deeplink.WithStoreLogger(o.log))
	c.activator = deeplink.NewActivator(c.deeplinks, o.navigator,
		deeplink.WithConfirm(c.confirmDeeplink),
		deeplink.WithErrorHook(func(ctx context.Context, err error) {
			c.report(ctx, "trigger_deeplink", err)
		}),
		deeplink.WithActivatorLogger(o.log),
	)

	return c, nil
}

// Close releases the key-value store when it holds resources.
func (c *Client) Close() error {
	return kvstore.Close(c.store)
}

// Initialized reports whether Init has succeeded.
func (c *Client) Initialized() bool {
	return c.currentToken() != ""
}

// EnablePIIHashing toggles SHA-256 hashing of user name, email and phone.
func (c *Client) EnablePIIHashing(enabled bool) {
	c.hashPII.Store(enabled)
	c.log.Debug("PII hashing toggled", slog.Bool("enabled", enabled))
}

// SetDisableAdvertisingIDCollection stops or resumes sending the platform
// advertising id. It applies to the next fingerprint collected.
func (c *Client) SetDisableAdvertisingIDCollection(disabled bool) {
	c.noAds.Store(disabled)
	c.log.Debug("advertising id collection toggled", slog.Bool("disabled", disabled))
}

// InstallInstanceID returns the stable id of this install.
func (c *Client) InstallInstanceID(ctx context.Context) string {
	return c.identity.GetOrCreate(ctx)
}

// Init registers the install with the backend using the project token.
//
// An empty token is rejected with ErrTokenRequired. Backend and transport
// failures are logged and reported to the ErrorHandler; Init then returns
// the zero InitData, a nil error and the client stays uninitialized.
// Once initialized, the token is fixed: later calls make no request and
// return the data of the first successful Init with ErrAlreadyInitialized.
func (c *Client) Init(ctx context.Context, token string, opts ...InitOption) (InitData, error) {
	const op = "init"
	if token == "" {
		c.log.ErrorContext(ctx, "project token is required to initialize", logger.Operation(op))
		c.observe(op, resultRejected)
		return InitData{}, ErrTokenRequired
	}
	if data, ok := c.initialized(); ok {
		return data, c.alreadyInitialized(ctx)
	}

	iopts := initOptions{}
	for _, opt := range opts {
		opt(&iopts)
	}

	var (
		fp      fingerprint.Fingerprint
		iid     string
		gclid   string
		hasClid bool
	)
	var g errgroup.Group
	g.Go(func() error {
		fp = c.collector.Collect(ctx)
		return nil
	})
	g.Go(func() error {
		iid = c.identity.GetOrCreate(ctx)
		return nil
	})
	g.Go(func() error {
		gclid, hasClid = c.clickIDs.Extract(ctx)
		return nil
	})
	_ = g.Wait()

	source := iopts.source
	if source == "" {
		source = SourceGeneral
		if hasClid {
			source = SourceAds
		}
	}

	req := InitRequest{
		Token:             token,
		PackageVersion:    PackageVersion,
		AppVersion:        c.appVersion,
		DeviceData:        fp,
		Platform:          c.platform,
		Source:            source,
		Link:              iopts.link,
		InstallInstanceID: iid,
		GCLID:             gclid,
	}

	var (
		data InitData
		err  error
	)
	if c.bridge != nil {
		data, err = c.bridge.Init(ctx, req)
		if err != nil {
			return InitData{}, c.bridgeFailed(ctx, op, err)
		}
	} else {
		var resp *InitData
		resp, err = transport.Post[InitData](ctx, c.api, pathInit, req, transport.WithRetryPolicy(retryPolicy(pathInit)))
		if err != nil {
			c.fail(ctx, op, err)
			return InitData{}, nil
		}
		if resp != nil {
			data = *resp
		}
	}

	c.mu.Lock()
	if c.token != "" {
		// A concurrent Init finished first.
		data = c.initData
		c.mu.Unlock()
		return data, c.alreadyInitialized(ctx)
	}
	c.token = token
	c.initData = data
	c.attribution = AttributionData{Deeplink: data.Deeplink, CampaignData: data.CampaignData}
	c.mu.Unlock()

	if data.Deeplink != "" {
		_ = c.deeplinks.Save(ctx, data.Deeplink)
	}

	c.log.InfoContext(ctx, "attribution client initialized",
		logger.InstallInstanceID(iid),
		slog.String("source", string(source)),
	)
	c.observe(op, resultOK)
	return data, nil
}

func (c *Client) initialized() (InitData, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initData, c.token != ""
}

func (c *Client) alreadyInitialized(ctx context.Context) error {
	c.log.WarnContext(ctx, "client is already initialized; ignoring Init", logger.Operation("init"))
	c.observe("init", resultRejected)
	return ErrAlreadyInitialized
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// gate returns the token or ErrNotInitialized.
func (c *Client) gate(ctx context.Context, op string) (string, error) {
	token := c.currentToken()
	if token == "" {
		c.log.ErrorContext(ctx, "client is not initialized; call Init first", logger.Operation(op))
		c.observe(op, resultNotInitialized)
		return "", ErrNotInitialized
	}
	return token, nil
}

// reject logs and returns a local validation error.
func (c *Client) reject(ctx context.Context, op string, err error) error {
	c.log.ErrorContext(ctx, "invalid arguments", logger.Operation(op), logger.Error(err))
	c.observe(op, resultRejected)
	return err
}

// fail records a swallowed transport or backend failure.
func (c *Client) fail(ctx context.Context, op string, err error) {
	attrs := []any{logger.Operation(op), logger.Error(err)}
	if be, ok := transport.AsBackendError(err); ok {
		attrs = append(attrs, logger.Status(be.Status))
	}
	c.log.ErrorContext(ctx, "backend request failed", attrs...)
	c.observe(op, resultFailed)
	c.report(ctx, op, err)
}

// bridgeFailed wraps a native bridge error for the caller.
func (c *Client) bridgeFailed(ctx context.Context, op string, err error) error {
	err = fmt.Errorf("%w: %s: %w", ErrBridge, op, err)
	c.log.ErrorContext(ctx, "native bridge call failed", logger.Operation(op), logger.Error(err))
	c.observe(op, resultFailed)
	return err
}

func (c *Client) report(ctx context.Context, op string, err error) {
	if c.onError != nil && err != nil {
		c.onError(ctx, op, err)
	}
}

func (c *Client) observe(op, result string) {
	if c.metrics != nil {
		c.metrics.ObserveOperation(op, result)
	}
}

// send posts req to path, or hands it to call when a bridge is set.
// Transport and backend failures are swallowed; bridge errors are returned.
func send[T any](ctx context.Context, c *Client, op, path string, req any, call func(Bridge) (T, error)) (T, bool, error) {
	var zero T
	if c.bridge != nil {
		res, err := call(c.bridge)
		if err != nil {
			return zero, false, c.bridgeFailed(ctx, op, err)
		}
		c.observe(op, resultOK)
		return res, true, nil
	}

	res, err := transport.Post[T](ctx, c.api, path, req, transport.WithRetryPolicy(retryPolicy(path)))
	if err != nil {
		c.fail(ctx, op, err)
		return zero, false, nil
	}
	c.observe(op, resultOK)
	if res == nil {
		return zero, true, nil
	}
	return *res, true, nil
}

// noData is the decode target for endpoints whose data is ignored.
type noData struct{}

func ignoreResult(fn func() error) (noData, error) {
	return noData{}, fn()
}

func (c *Client) userData(u UserData) UserData {
	if c.hashPII.Load() {
		return hashPII(u)
	}
	return u
}

// activate opens the stored deep link through the bridge or the activator.
// Failures reach the ErrorHandler only.
func (c *Client) activate(ctx context.Context) error {
	if c.bridge != nil {
		if err := c.bridge.TriggerDeeplink(ctx); err != nil {
			return c.bridgeFailed(ctx, "trigger_deeplink", err)
		}
		return nil
	}
	if err := c.activator.Activate(ctx); err != nil && !errors.Is(err, deeplink.ErrNoDeeplink) {
		c.observe("trigger_deeplink", resultFailed)
	}
	return nil
}

// confirmDeeplink tells the backend a deferred deep link was opened.
func (c *Client) confirmDeeplink(ctx context.Context) error {
	token := c.currentToken()
	if token == "" {
		return ErrNotInitialized
	}
	_, err := transport.Post[noData](ctx, c.api, pathDeeplinkTriggered, TokenRequest{
		Token:             token,
		InstallInstanceID: c.identity.GetOrCreate(ctx),
	}, transport.WithRetryPolicy(retryPolicy(pathDeeplinkTriggered)))
	return err
}

// retryPolicy decides how a failed call to path is repeated when retries
// are enabled with transport.WithMaxRetries. Calls that create records are
// repeated only when they never reached the backend; the deep link
// confirmation is sent once.
func retryPolicy(path string) transport.RetryPolicy {
	switch path {
	case pathAttributionData, pathSetUserData, pathSetAdditionalData, pathSetPushToken, pathRemovePayment:
		return transport.RetryAll
	case pathDeeplinkTriggered:
		return transport.RetryNever
	default:
		return transport.RetryUnsent
	}
}
