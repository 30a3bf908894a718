package twofactor

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mfakit/pkg/logger"
	"github.com/dmitrymomot/mfakit/pkg/replay"
	"github.com/dmitrymomot/mfakit/pkg/throttle"
	"github.com/dmitrymomot/mfakit/pkg/totp"
)

// Service is the account-settings and login workflow on top of Manager.
type Service interface {
	// Enrollment
	Setup(ctx context.Context, accountID uuid.UUID, label string) (SetupMaterial, error)
	Confirm(ctx context.Context, accountID uuid.UUID, code string) (Credential, error)
	Reset(ctx context.Context, accountID uuid.UUID, code, label string) (SetupMaterial, error)
	Disable(ctx context.Context, accountID uuid.UUID, code string) error

	// Reporting and login
	Status(ctx context.Context, accountID uuid.UUID) (Status, error)
	Verify(ctx context.Context, accountID uuid.UUID, code string) error
}

// Storage persists credentials. GetCredential returns ErrCredentialNotFound
// when the account has none.
type Storage interface {
	GetCredential(ctx context.Context, accountID uuid.UUID) (Credential, error)
	SaveCredential(ctx context.Context, cred Credential) error
	DeleteCredential(ctx context.Context, accountID uuid.UUID) error
}

// ServiceOption configures a Service instance.
type ServiceOption func(*service)

// WithReplayGuard rejects a code that was already accepted within its window.
func WithReplayGuard(guard *replay.Guard) ServiceOption {
	return func(s *service) {
		s.guard = guard
	}
}

// WithAttemptLimiter caps code submissions per account. A successful check
// restores the full budget.
func WithAttemptLimiter(limiter *throttle.Limiter) ServiceOption {
	return func(s *service) {
		s.limiter = limiter
	}
}

// WithEncryptionKey stores secrets sealed with AES-256-GCM under key.
// Panics on a key that is not 32 bytes long.
func WithEncryptionKey(key []byte) ServiceOption {
	return func(s *service) {
		if len(key) == 0 {
			return
		}
		if len(key) != totp.AESKeySize {
			panic("twofactor: encryption key must be 32 bytes")
		}
		s.key = key
	}
}

// number of per-account lock stripes
const lockStripes = 64

type service struct {
	manager *Manager
	store   Storage
	guard   *replay.Guard
	limiter *throttle.Limiter
	key     []byte
	logger  *slog.Logger

	locks [lockStripes]sync.Mutex
}

// NewService creates a Service. Panics if manager or store is nil.
func NewService(manager *Manager, store Storage, opts ...ServiceOption) Service {
	if manager == nil {
		panic("twofactor: Manager is required")
	}
	if store == nil {
		panic("twofactor: Storage is required")
	}

	s := &service{
		manager: manager,
		store:   store,
		logger:  manager.logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Setup returns enrollment material. Unless TOTP is already enabled, the new
// secret is stored as pending so Confirm can activate it.
func (s *service) Setup(ctx context.Context, accountID uuid.UUID, label string) (SetupMaterial, error) {
	unlock, err := s.lock(accountID)
	if err != nil {
		return SetupMaterial{}, err
	}
	defer unlock()

	cred, err := s.load(ctx, accountID)
	if err != nil {
		return SetupMaterial{}, err
	}

	material, err := s.manager.BeginSetup(ctx, cred, label)
	if err != nil {
		return SetupMaterial{}, err
	}

	if cred.State() != StateEnabled {
		pending := Credential{
			AccountID: accountID,
			Secret:    material.Secret,
			CreatedAt: s.manager.clock.Now().UTC(),
		}
		if err := s.save(ctx, pending); err != nil {
			return SetupMaterial{}, err
		}
	}
	return material, nil
}

// Confirm enables the stored secret once code matches it.
func (s *service) Confirm(ctx context.Context, accountID uuid.UUID, code string) (Credential, error) {
	unlock, err := s.lock(accountID)
	if err != nil {
		return Credential{}, err
	}
	defer unlock()

	cred, err := s.load(ctx, accountID)
	if err != nil {
		return Credential{}, err
	}
	if !cred.Configured() {
		return Credential{}, ErrNotConfigured
	}
	if err := s.spendAttempt(ctx, accountID); err != nil {
		return Credential{}, err
	}

	enabled, counter, err := s.manager.enable(ctx, accountID, cred.Secret, code)
	if err != nil {
		return Credential{}, err
	}
	if err := s.markUsed(ctx, accountID, counter); err != nil {
		return Credential{}, err
	}
	s.clearAttempts(ctx, accountID)
	if err := s.save(ctx, enabled); err != nil {
		return Credential{}, err
	}
	return enabled, nil
}

// Reset stores a new pending secret and returns its material. The code that
// authorized the reset is spent like a login code.
func (s *service) Reset(ctx context.Context, accountID uuid.UUID, code, label string) (SetupMaterial, error) {
	unlock, err := s.lock(accountID)
	if err != nil {
		return SetupMaterial{}, err
	}
	defer unlock()

	cred, err := s.load(ctx, accountID)
	if err != nil {
		return SetupMaterial{}, err
	}

	material, checked, err := s.manager.reset(ctx, cred, code, label, s.attempt(accountID))
	if err != nil {
		return SetupMaterial{}, err
	}
	if checked.ok {
		if err := s.markUsed(ctx, accountID, checked.value); err != nil {
			return SetupMaterial{}, err
		}
		s.clearAttempts(ctx, accountID)
	}

	pending := Credential{
		AccountID: accountID,
		Secret:    material.Secret,
		CreatedAt: s.manager.clock.Now().UTC(),
	}
	if err := s.save(ctx, pending); err != nil {
		return SetupMaterial{}, err
	}
	return material, nil
}

// Disable removes the credential. Policy is checked before an attempt is
// charged, so a privileged account never drains its login budget here.
func (s *service) Disable(ctx context.Context, accountID uuid.UUID, code string) error {
	unlock, err := s.lock(accountID)
	if err != nil {
		return err
	}
	defer unlock()

	cred, err := s.load(ctx, accountID)
	if err != nil {
		return err
	}

	_, counter, err := s.manager.disable(ctx, cred, code, s.attempt(accountID))
	if err != nil {
		return err
	}
	if err := s.markUsed(ctx, accountID, counter); err != nil {
		return err
	}
	s.clearAttempts(ctx, accountID)
	if err := s.store.DeleteCredential(ctx, accountID); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *service) Status(ctx context.Context, accountID uuid.UUID) (Status, error) {
	if accountID == uuid.Nil {
		return Status{}, ErrEmptyAccountID
	}
	cred, err := s.load(ctx, accountID)
	if err != nil {
		return Status{}, err
	}
	return s.manager.Status(ctx, cred), nil
}

// Verify checks a login code. A code accepted once is rejected afterwards
// when a replay guard is configured.
func (s *service) Verify(ctx context.Context, accountID uuid.UUID, code string) error {
	unlock, err := s.lock(accountID)
	if err != nil {
		return err
	}
	defer unlock()

	cred, err := s.load(ctx, accountID)
	if err != nil {
		return err
	}

	if cred.State() == StateEnabled {
		if err := s.spendAttempt(ctx, accountID); err != nil {
			return err
		}
	}

	verified, counter, err := s.manager.verify(ctx, cred, code)
	if err != nil {
		return err
	}
	if err := s.markUsed(ctx, accountID, counter); err != nil {
		return err
	}
	s.clearAttempts(ctx, accountID)
	return s.save(ctx, verified)
}

func (s *service) spendAttempt(ctx context.Context, accountID uuid.UUID) error {
	if s.limiter == nil {
		return nil
	}
	res, err := s.limiter.Allow(ctx, accountID.String())
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	if !res.Allowed() {
		s.logger.WarnContext(ctx, "totp attempts exhausted",
			logger.AccountID(accountID),
			slog.Duration("retry_after", res.RetryAfter(s.manager.clock.Now())),
		)
		return ErrTooManyAttempts
	}
	return nil
}

// attempt adapts spendAttempt to the hook the Manager calls once a transition
// is allowed.
func (s *service) attempt(accountID uuid.UUID) attemptFunc {
	return func(ctx context.Context) error {
		return s.spendAttempt(ctx, accountID)
	}
}

func (s *service) clearAttempts(ctx context.Context, accountID uuid.UUID) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Reset(ctx, accountID.String()); err != nil {
		s.logger.WarnContext(ctx, "failed to reset attempt budget", logger.AccountID(accountID), logger.Error(err))
	}
}

func (s *service) markUsed(ctx context.Context, accountID uuid.UUID, counter uint64) error {
	if s.guard == nil {
		return nil
	}
	err := s.guard.Check(ctx, accountID.String(), counter)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, replay.ErrReplayed):
		s.logger.WarnContext(ctx, "totp code replayed", logger.AccountID(accountID), logger.Counter(counter))
		return errors.Join(ErrCodeReused, err)
	default:
		return errors.Join(ErrStorage, err)
	}
}

// load returns the stored credential with a plaintext secret. A missing record
// yields an empty, not configured credential.
func (s *service) load(ctx context.Context, accountID uuid.UUID) (Credential, error) {
	cred, err := s.store.GetCredential(ctx, accountID)
	if errors.Is(err, ErrCredentialNotFound) {
		return Credential{AccountID: accountID}, nil
	}
	if err != nil {
		return Credential{}, errors.Join(ErrStorage, err)
	}
	cred.AccountID = accountID

	if s.key != nil && cred.Configured() {
		secret, err := totp.DecryptSecret(cred.Secret, s.key)
		if err != nil {
			return Credential{}, err
		}
		cred.Secret = secret.Base32()
	}
	return cred, nil
}

func (s *service) save(ctx context.Context, cred Credential) error {
	if s.key != nil && cred.Configured() {
		secret, err := totp.ParseSecret(cred.Secret)
		if err != nil {
			return err
		}
		sealed, err := totp.EncryptSecret(secret, s.key)
		if err != nil {
			return err
		}
		cred.Secret = sealed
	}
	if err := s.store.SaveCredential(ctx, cred); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *service) lock(accountID uuid.UUID) (func(), error) {
	if accountID == uuid.Nil {
		return nil, ErrEmptyAccountID
	}
	mu := &s.locks[accountID[len(accountID)-1]%lockStripes]
	mu.Lock()
	return mu.Unlock, nil
}
