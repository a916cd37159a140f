package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/attribution"
	"github.com/dmitrymomot/attribution/internal/fakebackend"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// newBackend starts a fake backend and returns it with the base flags a
// command needs to reach it on a throwaway store.
func newBackend(t *testing.T) (*fakebackend.Backend, []string) {
	t.Helper()
	backend := fakebackend.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return backend, []string{
		"--base-url", srv.URL,
		"--token", "tok_test",
		"--store-driver", "memory",
		"--env-file", filepath.Join(t.TempDir(), "missing.env"),
	}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
}

func decode(t *testing.T, out string) map[string]any {
	t.Helper()
	var resp struct {
		Status string         `json:"status"`
		Data   map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestRootCommand(t *testing.T) {
	t.Parallel()

	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "attributionctl", cmd.Use)
	assert.Contains(t, cmd.Long, "ATTRIBUTION_")
}

func TestCommandPresence(t *testing.T) {
	t.Parallel()

	cmd := NewRootCommand()
	commands := []string{
		"init", "signup", "trigger", "set-user-data", "track", "capture-payment",
		"remove-payment", "deeplink", "attribution", "additional-data", "push-token",
		"id", "fake-backend",
	}

	for _, name := range commands {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "command %s should exist", name)
			require.NotNil(t, sub)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	t.Parallel()

	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	for _, name := range []string{"base-url", "token", "store", "store-driver", "profile", "env-file", "metrics"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestInvalidFormat(t *testing.T) {
	t.Parallel()

	_, args := newBackend(t)
	_, _, err := execute(t, append(args, "--format", "xml", "id")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestInitCommand(t *testing.T) {
	t.Parallel()

	backend, args := newBackend(t)
	backend.WithDeeplink("app://promo/42", false)

	out, _, err := execute(t, append(args, "--format", "json", "init", "--link", "app://launch")...)
	require.NoError(t, err)

	data := decode(t, out)
	assert.Equal(t, "app://promo/42", data["deeplink"])

	calls := backend.CallsTo(fakebackend.PathInit)
	require.Len(t, calls, 1)
	assert.Equal(t, "tok_test", calls[0].Body["token"])
	assert.Equal(t, "app://launch", calls[0].Body["link"])
	assert.Equal(t, "GENERAL", calls[0].Body["source"])
}

func TestInitCommandWithProfile(t *testing.T) {
	t.Parallel()

	backend, args := newBackend(t)
	profile := filepath.Join(t.TempDir(), "device.yaml")
	require.NoError(t, os.WriteFile(profile, []byte(`os: android
locale: en_US
fields:
  brand: google
  api_level: 34
referrer:
  install_referrer: utm_source=google&gclid=ABC123
advertising_id:
  id: 38400000-8cf0-11bd-b23e-10b96e40000d
  tracking_allowed: true
`), 0o600))

	_, _, err := execute(t, append(args, "--profile", profile, "init")...)
	require.NoError(t, err)

	calls := backend.CallsTo(fakebackend.PathInit)
	require.Len(t, calls, 1)
	body := calls[0].Body
	assert.Equal(t, "ADS", body["source"])
	assert.Equal(t, "ABC123", body["gclid"])

	device, ok := body["device_data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "google", device["brand"])
	assert.Equal(t, float64(34), device["api_level"])
	assert.Equal(t, "en-US", device["locale"])
	assert.Equal(t, "38400000-8cf0-11bd-b23e-10b96e40000d", device["gaid"])
	assert.Equal(t, "utm_source=google&gclid=ABC123", device["installReferrer"])
}

func TestInitCommandBackendRejects(t *testing.T) {
	t.Parallel()

	backend, args := newBackend(t)
	backend.Fail(fakebackend.PathInit, 400, "unknown project")

	_, _, err := execute(t, append(args, "init")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "unknown project")
}

func TestInitCommandRequiresToken(t *testing.T) {
	t.Setenv("ATTRIBUTION_TOKEN", "")

	backend, args := newBackend(t)
	// Drop --token.
	args = append(args[:2:2], args[4:]...)

	_, _, err := execute(t, append(args, "init")...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, attribution.ErrTokenRequired)
	assert.Empty(t, backend.Calls())
}

func TestSignupCommandAutoTrigger(t *testing.T) {
	t.Parallel()

	backend, args := newBackend(t)
	backend.WithDeeplink("app://promo/42", true)

	out, _, err := execute(t, append(args, "signup", "--user-id", "u_1", "--email", "Jane@Example.com", "--data", "plan=pro")...)
	require.NoError(t, err)
	assert.Contains(t, out, "opening app://promo/42")
	assert.Contains(t, out, "trigger: true")

	signups := backend.CallsTo(fakebackend.PathSignup)
	require.Len(t, signups, 1)
	user, ok := signups[0].Body["user_data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "u_1", user["id"])
	assert.Equal(t, "Jane@Example.com", user["email"])
	data, ok := signups[0].Body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "pro", data["plan"])

	assert.Len(t, backend.CallsTo(fakebackend.PathDeeplinkTriggered), 1)
}

func TestSetUserDataHashesPII(t *testing.T) {
	t.Parallel()

	backend, args := newBackend(t)

	_, _, err := execute(t, append(args, "set-user-data", "--user-id", "u_1", "--name", "Jane", "--hash-pii")...)
	require.NoError(t, err)

	calls := backend.CallsTo(fakebackend.PathSetUserData)
	require.Len(t, calls, 1)
	user := calls[0].Body["user_data"].(map[string]any)
	assert.Equal(t, "u_1", user["id"])
	assert.Len(t, user["name"], 64)
	assert.NotEqual(t, "Jane", user["name"])
}

func TestTrackCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		eventID any
	}{
		{"numeric id", []string{"track", "level_up", "--event-id", "42"}, "42"},
		{"string id", []string{"track", "level_up", "--event-id", "evt_9"}, "evt_9"},
		{"no id", []string{"track", "level_up", "--data", "level=3"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend, args := newBackend(t)
			_, _, err := execute(t, append(args, tt.args...)...)
			require.NoError(t, err)

			calls := backend.CallsTo(fakebackend.PathCaptureEvent)
			require.Len(t, calls, 1)
			assert.Equal(t, "level_up", calls[0].Body["event_name"])
			assert.Equal(t, tt.eventID, calls[0].Body["event_id"])
		})
	}
}

func TestTrackCommandRequiresName(t *testing.T) {
	t.Parallel()

	_, args := newBackend(t)
	_, _, err := execute(t, append(args, "track")...)
	require.Error(t, err)
}

func TestCapturePaymentCommand(t *testing.T) {
	t.Parallel()

	backend, args := newBackend(t)
	_, _, err := execute(t, append(args, "capture-payment", "--user-id", "u_1", "--amount", "9.99", "--type", "one_time")...)
	require.NoError(t, err)

	calls := backend.CallsTo(fakebackend.PathCapturePayment)
	require.Len(t, calls, 1)
	assert.Equal(t, "u_1", calls[0].Body["user_id"])
	assert.Equal(t, 9.99, calls[0].Body["amount"])
	assert.Equal(t, "ONE_TIME", calls[0].Body["type"])
	assert.Equal(t, "PAYMENT_COMPLETED", calls[0].Body["status"])
}

func TestCapturePaymentCommandValidation(t *testing.T) {
	t.Parallel()

	t.Run("missing amount", func(t *testing.T) {
		t.Parallel()
		_, args := newBackend(t)
		_, _, err := execute(t, append(args, "capture-payment", "--user-id", "u_1")...)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "required flag")
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()
		backend, args := newBackend(t)
		_, _, err := execute(t, append(args, "capture-payment", "--user-id", "u_1", "--amount", "1", "--type", "gift")...)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.ErrorIs(t, err, attribution.ErrInvalidPayment)
		assert.Empty(t, backend.CallsTo(fakebackend.PathCapturePayment))
	})
}

func TestRemovePaymentCommand(t *testing.T) {
	t.Parallel()

	t.Run("needs an identifier", func(t *testing.T) {
		t.Parallel()
		_, args := newBackend(t)
		_, _, err := execute(t, append(args, "remove-payment")...)
		require.Error(t, err)
	})

	t.Run("by payment id", func(t *testing.T) {
		t.Parallel()
		backend, args := newBackend(t)
		_, _, err := execute(t, append(args, "remove-payment", "--payment-id", "pay_1")...)
		require.NoError(t, err)
		calls := backend.CallsTo(fakebackend.PathRemovePayment)
		require.Len(t, calls, 1)
		assert.Equal(t, "pay_1", calls[0].Body["payment_id"])
	})
}

func TestDeeplinkCommandAcrossRuns(t *testing.T) {
	t.Parallel()

	backend, args := newBackend(t)
	backend.WithDeeplink("app://promo/42", false)
	args = append(args, "--store-driver", "file", "--store", filepath.Join(t.TempDir(), "kv.json"))

	_, _, err := execute(t, append(args, "init")...)
	require.NoError(t, err)
	assert.Empty(t, backend.CallsTo(fakebackend.PathDeeplinkTriggered))

	// The second run only has the link the first run stored.
	backend.Respond(fakebackend.PathInit, fakebackend.Response{Status: 200})
	out, _, err := execute(t, append(args, "deeplink")...)
	require.NoError(t, err)
	assert.Contains(t, out, "opening app://promo/42")
	assert.Len(t, backend.CallsTo(fakebackend.PathDeeplinkTriggered), 1)
}

func TestDeeplinkCommandWithoutLink(t *testing.T) {
	t.Parallel()

	backend, args := newBackend(t)
	_, _, err := execute(t, append(args, "deeplink")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Empty(t, backend.CallsTo(fakebackend.PathDeeplinkTriggered))
}

func TestAttributionCommand(t *testing.T) {
	t.Parallel()

	backend, args := newBackend(t)
	backend.Respond(fakebackend.PathAttributionData, fakebackend.Response{
		Status: 200,
		Data: map[string]any{
			"deeplink": "app://promo/42",
			"campaign_data": map[string]any{
				"id":           "cmp_1",
				"name":         "Spring",
				"type":         "INORGANIC",
				"installed_at": "2026-03-01T10:00:00Z",
			},
		},
	})

	out, _, err := execute(t, append(args, "--format", "json", "attribution")...)
	require.NoError(t, err)
	g := newGoldie(t)
	g.Assert(t, "attribution_json", []byte(out))
}

func TestAdditionalDataAndPushToken(t *testing.T) {
	t.Parallel()

	backend, args := newBackend(t)

	_, _, err := execute(t, append(args, "additional-data", "--clevertap-id", "ct_1")...)
	require.NoError(t, err)
	_, _, err = execute(t, append(args, "push-token", "fcm:abc")...)
	require.NoError(t, err)

	extra := backend.CallsTo(fakebackend.PathSetAdditionalData)
	require.Len(t, extra, 1)
	info := extra[0].Body["integration_info"].(map[string]any)
	assert.Equal(t, "ct_1", info["clevertap_id"])

	push := backend.CallsTo(fakebackend.PathSetPushToken)
	require.Len(t, push, 1)
	assert.Equal(t, "fcm:abc", push[0].Body["push_token"])
}

func TestIDCommandIsStable(t *testing.T) {
	t.Parallel()

	backend, args := newBackend(t)
	args = append(args, "--store-driver", "sqlite", "--store", filepath.Join(t.TempDir(), "kv.db"))

	first, _, err := execute(t, append(args, "--format", "json", "id")...)
	require.NoError(t, err)
	second, _, err := execute(t, append(args, "--format", "json", "id")...)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	id, _ := decode(t, first)["install_instance_id"].(string)
	assert.Len(t, id, 20)
	assert.Empty(t, backend.Calls())
}

func TestMetricsFlag(t *testing.T) {
	t.Parallel()

	_, args := newBackend(t)
	_, errOut, err := execute(t, append(args, "--metrics", "track", "opened")...)
	require.NoError(t, err)
	assert.Contains(t, errOut, "attribution_backend_requests_total")
	assert.Contains(t, errOut, `endpoint="/api/client/capture-event"`)
}
