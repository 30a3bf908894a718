package twofactor

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryStorage struct {
	mu          sync.RWMutex
	credentials map[uuid.UUID]Credential
}

// NewMemoryStorage returns an in-process Storage. Records are copied on the
// way in and out, so callers cannot modify stored state.
func NewMemoryStorage() Storage {
	return &memoryStorage{
		credentials: make(map[uuid.UUID]Credential),
	}
}

func (s *memoryStorage) GetCredential(ctx context.Context, accountID uuid.UUID) (Credential, error) {
	if err := ctx.Err(); err != nil {
		return Credential{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.credentials[accountID]
	if !ok {
		return Credential{}, ErrCredentialNotFound
	}
	return cred, nil
}

func (s *memoryStorage) SaveCredential(ctx context.Context, cred Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.credentials[cred.AccountID] = cred
	return nil
}

func (s *memoryStorage) DeleteCredential(ctx context.Context, accountID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.credentials, accountID)
	return nil
}
