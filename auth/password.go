package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordInvalidAlgorithm = errors.New("auth: unsupported password algorithm")
	ErrPasswordInvalidHash      = errors.New("auth: invalid password hash")
)

const (
	AlgorithmBcrypt   = "bcrypt"
	DefaultBcryptCost = 12
	MaxPasswordLength = 72 // bcrypt rejects longer input
)

// BcryptHasher implements PhraseHasher using bcrypt.
type BcryptHasher struct {
	cost   int
	pepper []byte
	now    func() time.Time
}

// BcryptHasherOption configures BcryptHasher.
type BcryptHasherOption func(*BcryptHasher)

// WithBcryptCost sets the bcrypt cost factor.
func WithBcryptCost(cost int) BcryptHasherOption {
	return func(h *BcryptHasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// WithBcryptPepper sets a server-side secret that is combined with passwords.
func WithBcryptPepper(pepper []byte) BcryptHasherOption {
	return func(h *BcryptHasher) {
		h.pepper = append([]byte(nil), pepper...)
	}
}

// WithBcryptNow sets a custom time function for testing.
func WithBcryptNow(fn func() time.Time) BcryptHasherOption {
	return func(h *BcryptHasher) {
		if fn != nil {
			h.now = fn
		}
	}
}

func NewBcryptHasher(opts ...BcryptHasherOption) *BcryptHasher {
	h := &BcryptHasher{
		cost: DefaultBcryptCost,
		now:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

func (h *BcryptHasher) Hash(ctx context.Context, plain []byte) (PhraseHash, error) {
	if err := contextError(ctx); err != nil {
		return PhraseHash{}, err
	}

	combined := h.combineWithPepper(plain)
	defer clearBytes(combined)
	if len(combined) > MaxPasswordLength {
		return PhraseHash{}, fmt.Errorf("auth: password longer than %d bytes", MaxPasswordLength)
	}

	hashed, err := bcrypt.GenerateFromPassword(combined, h.cost)
	if err != nil {
		return PhraseHash{}, fmt.Errorf("auth: bcrypt hash failed: %w", err)
	}
	return PhraseHash{
		Algorithm: AlgorithmBcrypt,
		Cost:      h.cost,
		Value:     hashed,
		CreatedAt: h.now(),
	}, nil
}

func (h *BcryptHasher) Compare(ctx context.Context, plain []byte, hash PhraseHash) error {
	if err := contextError(ctx); err != nil {
		return err
	}
	if hash.Algorithm != AlgorithmBcrypt {
		return ErrPasswordInvalidAlgorithm
	}
	if len(hash.Value) == 0 {
		return ErrPasswordInvalidHash
	}

	combined := h.combineWithPepper(plain)
	defer clearBytes(combined)

	if err := bcrypt.CompareHashAndPassword(hash.Value, combined); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrCredentialMismatch
		}
		return fmt.Errorf("auth: bcrypt compare failed: %w", err)
	}
	return nil
}

func (h *BcryptHasher) combineWithPepper(plain []byte) []byte {
	if len(h.pepper) == 0 {
		return append([]byte(nil), plain...)
	}
	combined := make([]byte, len(plain)+len(h.pepper))
	copy(combined, plain)
	copy(combined[len(plain):], h.pepper)
	return combined
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// MemoryStore is a CredentialStore kept in a map.
type MemoryStore struct {
	mu     sync.RWMutex
	hasher PhraseHasher
	hashes map[string]PhraseHash
}

func NewMemoryStore(hasher PhraseHasher) *MemoryStore {
	if hasher == nil {
		hasher = NewBcryptHasher()
	}
	return &MemoryStore{hasher: hasher, hashes: make(map[string]PhraseHash)}
}

// Add hashes password and stores it under username, replacing any previous
// entry.
func (s *MemoryStore) Add(ctx context.Context, username, password string) error {
	hash, err := s.hasher.Hash(ctx, []byte(password))
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.hashes[username] = hash
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Lookup(ctx context.Context, username string) (PhraseHash, error) {
	if err := contextError(ctx); err != nil {
		return PhraseHash{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	hash, ok := s.hashes[username]
	if !ok {
		return PhraseHash{}, ErrUnknownUser
	}
	return hash, nil
}

// Hasher returns the hasher used to store entries.
func (s *MemoryStore) Hasher() PhraseHasher { return s.hasher }
