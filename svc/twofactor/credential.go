package twofactor

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Credential is the per-account TOTP record. The account store owns it; this
// package only produces new values of it.
type Credential struct {
	AccountID      uuid.UUID
	Secret         string // Base32, or AES-GCM ciphertext while at rest
	Enabled        bool
	CreatedAt      time.Time
	LastVerifiedAt time.Time
}

// Configured reports whether a secret is present.
func (c Credential) Configured() bool {
	return strings.TrimSpace(c.Secret) != ""
}

// State derives the enrollment state from the record.
func (c Credential) State() State {
	switch {
	case c.Enabled && c.Configured():
		return StateEnabled
	case c.Configured():
		return StatePendingVerification
	default:
		return StateNotConfigured
	}
}

// LogValue omits the secret.
func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("account_id", c.AccountID.String()),
		slog.String("state", c.State().String()),
		slog.Bool("enabled", c.Enabled),
	)
}

// SetupMaterial is what an authenticator app needs to enroll. It is handed to
// the user once and not stored by this package.
type SetupMaterial struct {
	Secret          string // Base32
	ProvisioningURI string
	Enabled         bool // credential state when the material was produced
}

// LogValue omits the secret and the URI, which embeds it.
func (m SetupMaterial) LogValue() slog.Value {
	return slog.GroupValue(slog.Bool("enabled", m.Enabled))
}

// Status summarizes a credential for account settings screens.
type Status struct {
	State            State
	Enabled          bool
	Configured       bool
	PolicyRequired   bool
	SecondsRemaining uint32 // until the current code rotates
}
