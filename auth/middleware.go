package auth

import (
	"context"
	"net/http"
)

// Guard rejects requests whose credential phrase does not match a stored
// hash.
type Guard struct {
	store        CredentialStore
	hasher       PhraseHasher
	extractor    PhraseExtractor
	skipper      GuardSkipper
	errorHandler GuardErrorHandler
}

func NewGuard(store CredentialStore, hasher PhraseHasher, opts ...GuardOption) (*Guard, error) {
	cfg, err := newGuardConfig(store, hasher, opts...)
	if err != nil {
		return nil, err
	}
	return &Guard{
		store:        cfg.store,
		hasher:       cfg.hasher,
		extractor:    cfg.extractor,
		skipper:      cfg.skipper,
		errorHandler: cfg.errorHandler,
	}, nil
}

// Verify checks creds against the store.
func (g *Guard) Verify(ctx context.Context, creds Credentials) error {
	hash, err := g.store.Lookup(ctx, creds.Username)
	if err != nil {
		return err
	}
	return g.hasher.Compare(ctx, []byte(creds.Password), hash)
}

func (g *Guard) Handler(next http.Handler) http.Handler {
	if g == nil {
		panic("auth: guard is nil")
	}
	if next == nil {
		next = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.skipper(r) {
			next.ServeHTTP(w, r)
			return
		}

		creds, err := g.extractor(r)
		if err != nil {
			g.errorHandler(w, r, err)
			return
		}
		if err := g.Verify(r.Context(), creds); err != nil {
			g.errorHandler(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), usernameKey{}, creds.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
