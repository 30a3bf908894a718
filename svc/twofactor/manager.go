package twofactor

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mfakit/pkg/logger"
	"github.com/dmitrymomot/mfakit/pkg/statemachine"
	"github.com/dmitrymomot/mfakit/pkg/totp"
)

// MinEnabledSecretBits is the minimum strength of a secret that may be enabled.
const MinEnabledSecretBits = 128

// Manager drives the enrollment lifecycle of a TOTP credential. It performs no
// persistence: every method takes the current credential by value and returns
// the new one, leaving storage to the caller.
type Manager struct {
	cfg       totp.Config
	clock     *totp.Clock
	validator *totp.Validator
	policy    PolicyChecker
	logger    *slog.Logger
	table     []statemachine.TransitionDef
}

// attemptFunc is called once a transition is allowed and before the code is
// checked. The Service uses it to charge the attempt limiter.
type attemptFunc func(ctx context.Context) error

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithPolicy sets the hook that marks accounts which must keep TOTP enabled.
func WithPolicy(policy PolicyChecker) ManagerOption {
	return func(m *Manager) {
		m.policy = policy
	}
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(clock *totp.Clock) ManagerOption {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewManager creates a manager for cfg. Zero fields of cfg get defaults.
func NewManager(cfg totp.Config, opts ...ManagerOption) (*Manager, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.clock == nil {
		m.clock = totp.NewClock(totp.WithStep(cfg.Period))
	}
	m.validator = totp.NewValidator(cfg, totp.WithClock(m.clock))
	m.table = lifecycle(m.policyGuard)
	m.logger = m.logger.With(logger.Component("twofactor"))

	return m, nil
}

// Config returns the effective TOTP configuration.
func (m *Manager) Config() totp.Config {
	return m.cfg
}

// BeginSetup returns provisioning material for label. An enabled credential
// gets its current secret back; otherwise a fresh secret is generated.
func (m *Manager) BeginSetup(ctx context.Context, cred Credential, label string) (SetupMaterial, error) {
	if strings.TrimSpace(label) == "" {
		return SetupMaterial{}, totp.ErrEmptyLabel
	}

	from, to, err := m.transition(ctx, cred, EventSetup)
	if err != nil {
		return SetupMaterial{}, err
	}

	enabled := from == StateEnabled
	var secret totp.Secret
	if enabled {
		secret, err = totp.ParseSecret(cred.Secret)
	} else {
		secret, err = totp.GenerateSecretSize(m.cfg.SecretSize)
	}
	if err != nil {
		return SetupMaterial{}, err
	}

	material, err := m.material(secret, label, enabled)
	if err != nil {
		return SetupMaterial{}, err
	}

	m.logger.InfoContext(ctx, "totp setup started",
		logger.AccountID(cred.AccountID),
		logger.Transition(from.String(), to.String()),
	)
	return material, nil
}

// Enable activates candidateSecret once code proves the authenticator holds it.
// Validation errors are returned unchanged.
func (m *Manager) Enable(ctx context.Context, accountID uuid.UUID, candidateSecret, code string) (Credential, error) {
	cred, _, err := m.enable(ctx, accountID, candidateSecret, code)
	return cred, err
}

func (m *Manager) enable(ctx context.Context, accountID uuid.UUID, candidateSecret, code string) (Credential, uint64, error) {
	now := m.clock.Now()
	counter, err := m.validator.Verify(candidateSecret, code, now)
	if err != nil {
		m.logger.WarnContext(ctx, "totp enable failed", logger.AccountID(accountID), logger.Error(err))
		return Credential{}, 0, err
	}

	secret, err := totp.ParseSecret(candidateSecret)
	if err != nil {
		return Credential{}, 0, err
	}
	if secret.Bits() < MinEnabledSecretBits {
		m.logger.WarnContext(ctx, "totp enable failed", logger.AccountID(accountID), logger.Error(totp.ErrInvalidSecretFormat))
		return Credential{}, 0, totp.ErrInvalidSecretFormat
	}

	now = now.UTC()
	cred := Credential{
		AccountID:      accountID,
		Secret:         secret.Base32(),
		Enabled:        true,
		CreatedAt:      now,
		LastVerifiedAt: now,
	}

	m.logger.InfoContext(ctx, "totp enabled", logger.AccountID(accountID), logger.Counter(counter))
	return cred, counter, nil
}

// Disable clears cred after checking the privileged-account policy and code.
// The returned credential carries only the account ID.
func (m *Manager) Disable(ctx context.Context, cred Credential, code string) (Credential, error) {
	cleared, _, err := m.disable(ctx, cred, code, nil)
	return cleared, err
}

func (m *Manager) disable(ctx context.Context, cred Credential, code string, attempt attemptFunc) (Credential, uint64, error) {
	from, to, err := m.transition(ctx, cred, EventDisable)
	if err != nil {
		if errors.Is(err, ErrPolicyViolation) {
			m.logger.WarnContext(ctx, "totp disable blocked by policy",
				logger.AccountID(cred.AccountID),
				logger.State(from.String()),
			)
		}
		return cred, 0, err
	}
	if attempt != nil {
		if err := attempt(ctx); err != nil {
			return cred, 0, err
		}
	}

	counter, err := m.validator.Verify(cred.Secret, code, m.clock.Now())
	if err != nil {
		m.logger.WarnContext(ctx, "totp disable failed",
			logger.AccountID(cred.AccountID),
			logger.State(from.String()),
			logger.Error(err),
		)
		return cred, 0, err
	}

	m.logger.InfoContext(ctx, "totp disabled",
		logger.AccountID(cred.AccountID),
		logger.Transition(from.String(), to.String()),
	)
	return Credential{AccountID: cred.AccountID}, counter, nil
}

// Reset replaces the secret with a new one. An enabled credential requires a
// valid current code first. The new material is never enabled.
func (m *Manager) Reset(ctx context.Context, cred Credential, code, label string) (SetupMaterial, error) {
	material, _, err := m.reset(ctx, cred, code, label, nil)
	return material, err
}

// reset returns the counter of the accepted code, or false when the
// credential was not enabled and no code was checked.
func (m *Manager) reset(ctx context.Context, cred Credential, code, label string, attempt attemptFunc) (SetupMaterial, verifiedCounter, error) {
	if strings.TrimSpace(label) == "" {
		return SetupMaterial{}, verifiedCounter{}, totp.ErrEmptyLabel
	}

	from, to, err := m.transition(ctx, cred, EventReset)
	if err != nil {
		return SetupMaterial{}, verifiedCounter{}, err
	}

	var checked verifiedCounter
	if from == StateEnabled {
		if attempt != nil {
			if err := attempt(ctx); err != nil {
				return SetupMaterial{}, verifiedCounter{}, err
			}
		}
		counter, err := m.validator.Verify(cred.Secret, code, m.clock.Now())
		if err != nil {
			m.logger.WarnContext(ctx, "totp reset failed",
				logger.AccountID(cred.AccountID),
				logger.State(from.String()),
				logger.Error(err),
			)
			return SetupMaterial{}, verifiedCounter{}, err
		}
		checked = verifiedCounter{value: counter, ok: true}
	}

	secret, err := m.freshSecret(cred.Secret)
	if err != nil {
		return SetupMaterial{}, verifiedCounter{}, err
	}

	material, err := m.material(secret, label, false)
	if err != nil {
		return SetupMaterial{}, verifiedCounter{}, err
	}

	m.logger.InfoContext(ctx, "totp reset",
		logger.AccountID(cred.AccountID),
		logger.Transition(from.String(), to.String()),
	)
	return material, checked, nil
}

// Status reports the state of cred and whether policy pins it on.
func (m *Manager) Status(ctx context.Context, cred Credential) Status {
	state := cred.State()
	return Status{
		State:            state,
		Enabled:          state == StateEnabled,
		Configured:       state != StateNotConfigured,
		PolicyRequired:   m.isPrivileged(ctx, cred.AccountID),
		SecondsRemaining: m.clock.RemainingSeconds(),
	}
}

// Verify is the login-time check for an enabled credential. On success the
// returned copy has LastVerifiedAt set to now.
func (m *Manager) Verify(ctx context.Context, cred Credential, code string) (Credential, error) {
	cred, _, err := m.verify(ctx, cred, code)
	return cred, err
}

func (m *Manager) verify(ctx context.Context, cred Credential, code string) (Credential, uint64, error) {
	switch cred.State() {
	case StateNotConfigured:
		return cred, 0, ErrNotConfigured
	case StatePendingVerification:
		return cred, 0, ErrNotEnabled
	}

	now := m.clock.Now()
	counter, err := m.validator.Verify(cred.Secret, code, now)
	if err != nil {
		m.logger.WarnContext(ctx, "totp verification failed", logger.AccountID(cred.AccountID), logger.Error(err))
		return cred, 0, err
	}

	cred.LastVerifiedAt = now.UTC()
	m.logger.DebugContext(ctx, "totp verified", logger.AccountID(cred.AccountID), logger.Counter(counter))
	return cred, counter, nil
}

// QRCode renders the provisioning URI of material as a PNG. Zero dimensions
// fall back to the configured QR size.
func (m *Manager) QRCode(material SetupMaterial, width, height int) ([]byte, error) {
	if width == 0 && height == 0 {
		width, height = m.cfg.QRSize, m.cfg.QRSize
	}
	return totp.RenderQR(material.ProvisioningURI, width, height)
}

func (m *Manager) material(secret totp.Secret, label string, enabled bool) (SetupMaterial, error) {
	encoded := secret.Base32()
	uri, err := totp.BuildURI(totp.ParamsFromConfig(m.cfg, label, encoded))
	if err != nil {
		return SetupMaterial{}, err
	}
	return SetupMaterial{
		Secret:          encoded,
		ProvisioningURI: uri,
		Enabled:         enabled,
	}, nil
}

// freshSecret generates a secret that differs from previous.
func (m *Manager) freshSecret(previous string) (totp.Secret, error) {
	old, _ := totp.ParseSecret(previous)
	for {
		secret, err := totp.GenerateSecretSize(m.cfg.SecretSize)
		if err != nil {
			return nil, err
		}
		if old == nil || !secret.Equal(old) {
			return secret, nil
		}
	}
}

// transition applies event to the state of cred.
func (m *Manager) transition(ctx context.Context, cred Credential, event Event) (State, State, error) {
	from := cred.State()
	to, err := fire(ctx, m.table, from, event, cred.AccountID)
	return from, to, err
}

func (m *Manager) policyGuard(ctx context.Context, _ statemachine.State, _ statemachine.Event, data any) error {
	accountID, _ := data.(uuid.UUID)
	if m.isPrivileged(ctx, accountID) {
		return ErrPolicyViolation
	}
	return nil
}

func (m *Manager) isPrivileged(ctx context.Context, accountID uuid.UUID) bool {
	if m.policy == nil {
		return false
	}
	return m.policy.IsPrivilegedAccount(ctx, accountID)
}

// verifiedCounter is the counter of an accepted code, if one was checked.
type verifiedCounter struct {
	value uint64
	ok    bool
}
