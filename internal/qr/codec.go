// Package qr encodes and decodes the text carried inside a user's QR code.
// The payload is plain JSON: the identity token plus a small profile snapshot
// so a scanner can show who it is looking at without a directory round-trip.
package qr

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/greenloop/recycle-be/internal/models"
)

// DecodeReason classifies why a scanned payload was rejected.
type DecodeReason string

const (
	// Malformed means the payload is not valid JSON at all.
	Malformed DecodeReason = "malformed"
	// MissingIdentity means the payload parsed but carries no identity token.
	MissingIdentity DecodeReason = "missing_identity"
)

// DecodeError is returned for any unusable scan input. Scans are
// user-correctable, so callers treat every DecodeError as retryable.
type DecodeError struct {
	Reason DecodeReason
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("qr: undecodable payload (%s)", e.Reason)
}

// Payload is the data carried by a QR symbol. Only IdentityToken is required;
// the rest is a denormalized display snapshot taken at encode time.
type Payload struct {
	IdentityToken string `json:"identityToken"`
	DisplayName   string `json:"displayName,omitempty"`
	Mobile        string `json:"mobile,omitempty"`
	Address       string `json:"address,omitempty"`
}

// Encode serializes a user's identifying payload. It has no side effects and
// is deterministic for a given user.
func Encode(u models.User) (string, error) {
	p := Payload{
		IdentityToken: u.IdentityToken,
		DisplayName:   u.DisplayName,
		Mobile:        u.Mobile,
		Address:       u.Address,
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("qr: encode payload: %w", err)
	}
	return string(data), nil
}

// Decode parses raw scanned text back into a Payload. Input is
// attacker-controlled; any failure comes back as a typed *DecodeError,
// never a panic.
func Decode(raw string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Payload{}, &DecodeError{Reason: Malformed}
	}
	if strings.TrimSpace(p.IdentityToken) == "" {
		return Payload{}, &DecodeError{Reason: MissingIdentity}
	}
	return p, nil
}
