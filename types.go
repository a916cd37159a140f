package attribution

import (
	"github.com/dmitrymomot/attribution/pkg/fingerprint"
)

// Source classifies how the install or session was acquired.
type Source string

const (
	SourceGeneral Source = "GENERAL"
	SourceAds     Source = "ADS"
)

// PaymentType classifies a captured payment.
type PaymentType string

const (
	PaymentTypeFirstPayment        PaymentType = "FIRST_PAYMENT"
	PaymentTypeWalletTopup         PaymentType = "WALLET_TOPUP"
	PaymentTypeFundsWithdrawal     PaymentType = "FUNDS_WITHDRAWAL"
	PaymentTypeSubscriptionCreated PaymentType = "SUBSCRIPTION_CREATED"
	PaymentTypeSubscriptionRenewed PaymentType = "SUBSCRIPTION_RENEWED"
	PaymentTypeOneTime             PaymentType = "ONE_TIME"
	PaymentTypeRecurring           PaymentType = "RECURRING"
	PaymentTypeDefault             PaymentType = "DEFAULT"
)

// Valid reports whether t is a known payment type.
func (t PaymentType) Valid() bool {
	switch t {
	case PaymentTypeFirstPayment, PaymentTypeWalletTopup, PaymentTypeFundsWithdrawal,
		PaymentTypeSubscriptionCreated, PaymentTypeSubscriptionRenewed,
		PaymentTypeOneTime, PaymentTypeRecurring, PaymentTypeDefault:
		return true
	}
	return false
}

// PaymentStatus is the lifecycle state of a captured payment.
type PaymentStatus string

const (
	PaymentStatusInitiated PaymentStatus = "PAYMENT_INITIATED"
	PaymentStatusCompleted PaymentStatus = "PAYMENT_COMPLETED"
	PaymentStatusFailed    PaymentStatus = "PAYMENT_FAILED"
	PaymentStatusCancelled PaymentStatus = "PAYMENT_CANCELLED"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusInitiated, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// UserData identifies the app user. Name, Phone and Email are hashed before
// sending when PII hashing is enabled.
type UserData struct {
	ID                 string `json:"id"`
	Name               string `json:"name,omitempty"`
	Phone              string `json:"phone,omitempty"`
	Email              string `json:"email,omitempty"`
	IsFirstTimeUser    *bool  `json:"is_first_time_user,omitempty"`
	UserCreatedAt      string `json:"user_created_at,omitempty"`
	MixpanelDistinctID string `json:"mixpanel_distinct_id,omitempty"`
	AmplitudeDeviceID  string `json:"amplitude_device_id,omitempty"`
	PosthogDistinctID  string `json:"posthog_distinct_id,omitempty"`
}

// Payment describes a payment to capture. Type and Status default to
// PaymentTypeDefault and PaymentStatusCompleted.
type Payment struct {
	UserID    string
	Amount    float64
	PaymentID string
	Type      PaymentType
	Status    PaymentStatus
}

// PaymentRef identifies a captured payment to remove. At least one field is required.
type PaymentRef struct {
	PaymentID string
	UserID    string
}

// IntegrationData links the install to third-party tools.
type IntegrationData struct {
	ClevertapID string `json:"clevertap_id,omitempty"`
}

// IPLocationData is the backend's geolocation of the device IP.
type IPLocationData struct {
	IP           string  `json:"ip"`
	City         string  `json:"city"`
	CountryLong  string  `json:"countryLong"`
	CountryShort string  `json:"countryShort"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Region       string  `json:"region"`
	TimeZone     string  `json:"timeZone"`
	ZipCode      string  `json:"zipCode"`
}

// CampaignData describes the campaign an install is attributed to.
type CampaignData struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	AdNetwork      *string `json:"ad_network,omitempty"`
	InstalledAt    string  `json:"installed_at"`
	StoreClickAt   *string `json:"store_click_at,omitempty"`
	GroupName      string  `json:"group_name,omitempty"`
	AssetName      string  `json:"asset_name,omitempty"`
	AssetGroupName string  `json:"asset_group_name,omitempty"`
}

// InitData is returned by a successful Init.
type InitData struct {
	Deeplink       string          `json:"deeplink,omitempty"`
	RootDomain     bool            `json:"root_domain,omitempty"`
	CampaignData   *CampaignData   `json:"campaign_data,omitempty"`
	IPLocationData *IPLocationData `json:"ip_location_data,omitempty"`
}

// TriggerData is returned by Signup and Trigger. Trigger asks the client to
// open Deeplink right away.
type TriggerData struct {
	Deeplink       string          `json:"deeplink,omitempty"`
	Trigger        bool            `json:"trigger,omitempty"`
	RootDomain     bool            `json:"root_domain,omitempty"`
	IPLocationData *IPLocationData `json:"ip_location_data,omitempty"`
}

// AttributionData is what the backend knows about this install.
type AttributionData struct {
	Deeplink     string        `json:"deeplink,omitempty"`
	CampaignData *CampaignData `json:"campaign_data,omitempty"`
}

// InitRequest is the body of the init call.
type InitRequest struct {
	Token             string                  `json:"token"`
	PackageVersion    string                  `json:"package_version"`
	AppVersion        string                  `json:"app_version"`
	DeviceData        fingerprint.Fingerprint `json:"device_data"`
	Platform          string                  `json:"platform"`
	Source            Source                  `json:"source"`
	Link              string                  `json:"link,omitempty"`
	InstallInstanceID string                  `json:"install_instance_id"`
	GCLID             string                  `json:"gclid,omitempty"`
}

// UserRequest is the body of trigger, signup and set-user-data. Data carries
// device_data plus caller extras.
type UserRequest struct {
	Token             string         `json:"token"`
	UserData          UserData       `json:"user_data"`
	Platform          string         `json:"platform"`
	InstallInstanceID string         `json:"install_instance_id"`
	Data              map[string]any `json:"data"`
}

// EventRequest is the body of capture-event.
type EventRequest struct {
	Token             string                  `json:"token"`
	EventName         string                  `json:"event_name"`
	EventData         map[string]any          `json:"event_data,omitempty"`
	EventID           string                  `json:"event_id,omitempty"`
	DeviceData        fingerprint.Fingerprint `json:"device_data"`
	Platform          string                  `json:"platform"`
	InstallInstanceID string                  `json:"install_instance_id"`
}

// PaymentRequest is the body of capture-payment.
type PaymentRequest struct {
	Token             string                  `json:"token"`
	UserID            string                  `json:"user_id"`
	Amount            float64                 `json:"amount"`
	PaymentID         string                  `json:"payment_id,omitempty"`
	Type              PaymentType             `json:"type"`
	Status            PaymentStatus           `json:"status"`
	DeviceData        fingerprint.Fingerprint `json:"device_data"`
	Platform          string                  `json:"platform"`
	InstallInstanceID string                  `json:"install_instance_id"`
}

// RemovePaymentRequest is the body of remove-captured-payment.
type RemovePaymentRequest struct {
	Token             string                  `json:"token"`
	PaymentID         string                  `json:"payment_id,omitempty"`
	UserID            string                  `json:"user_id,omitempty"`
	DeviceData        fingerprint.Fingerprint `json:"device_data"`
	Platform          string                  `json:"platform"`
	InstallInstanceID string                  `json:"install_instance_id"`
}

// TokenRequest is the body of calls that need nothing but the token.
type TokenRequest struct {
	Token             string `json:"token"`
	InstallInstanceID string `json:"install_instance_id,omitempty"`
}

// AdditionalDataRequest is the body of set-additional-data.
type AdditionalDataRequest struct {
	Token             string          `json:"token"`
	IntegrationInfo   IntegrationData `json:"integration_info"`
	Platform          string          `json:"platform"`
	InstallInstanceID string          `json:"install_instance_id"`
}

// PushTokenRequest is the body of set-push-token.
type PushTokenRequest struct {
	Token             string `json:"token"`
	PushToken         string `json:"push_token"`
	Platform          string `json:"platform"`
	InstallInstanceID string `json:"install_instance_id"`
}
