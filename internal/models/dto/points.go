package dto

import "github.com/greenloop/recycle-be/internal/models"

// AwardRequest credits points to a user. The target may be named directly by
// identity token or by the raw text scanned off their QR code; exactly one of
// the two is expected.
type AwardRequest struct {
	IdentityToken string `json:"identityToken,omitempty"`
	QRPayload     string `json:"qrPayload,omitempty"`
	Points        int64  `json:"points"`
}

type AwardResponse struct {
	IdentityToken string `json:"identityToken"`
	NewTotal      int64  `json:"newTotal"`
}

// ProfileResponse is the /me payload: the caller's directory record plus the
// QR text their profile screen should render.
type ProfileResponse struct {
	User      models.User `json:"user"`
	QRPayload string      `json:"qrPayload"`
}
