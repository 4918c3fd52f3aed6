// Package permission models the runtime capabilities the app depends on
// and the asynchronous grant flow.
package permission

import (
	"slices"

	"vapajomi/internal/i18n"
)

// Capability is an OS-level capability the app asks for.
type Capability string

const (
	RecordAudio    Capability = "record_audio"
	Camera         Capability = "camera"
	ReadContacts   Capability = "read_contacts"
	CallPhone      Capability = "call_phone"
	SendSMS        Capability = "send_sms"
	FineLocation   Capability = "fine_location"
	CoarseLocation Capability = "coarse_location"
)

var required = []Capability{
	RecordAudio,
	Camera,
	ReadContacts,
	CallPhone,
	SendSMS,
	FineLocation,
	CoarseLocation,
}

// Required returns the capabilities Home checks on every entry.
func Required() []Capability {
	return slices.Clone(required)
}

// Label is the localized description shown in prompts.
func (c Capability) Label() string {
	return i18n.T("perm_" + string(c))
}

// ResultFunc receives the outcome of a Request. results is parallel to caps.
type ResultFunc func(code int, caps []Capability, results []bool)

// Checker queries and requests grants. Request returns immediately and
// delivers the outcome later on the UI loop.
type Checker interface {
	Granted(c Capability) bool
	Request(code int, caps []Capability, done ResultFunc)
}

// Missing returns the capabilities from caps that are not granted, in order.
func Missing(checker Checker, caps []Capability) []Capability {
	var missing []Capability
	for _, c := range caps {
		if !checker.Granted(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// AllGranted is false for an empty result set, which is what a dismissed
// prompt produces.
func AllGranted(results []bool) bool {
	if len(results) == 0 {
		return false
	}
	for _, ok := range results {
		if !ok {
			return false
		}
	}
	return true
}
