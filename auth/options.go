package auth

import (
	"context"
	"errors"
	"net/http"
)

type PhraseExtractor func(*http.Request) (Credentials, error)

type GuardSkipper func(*http.Request) bool

type GuardErrorHandler func(http.ResponseWriter, *http.Request, error)

type GuardOption func(*guardConfig)

type guardConfig struct {
	store        CredentialStore
	hasher       PhraseHasher
	extractor    PhraseExtractor
	skipper      GuardSkipper
	errorHandler GuardErrorHandler
}

func newGuardConfig(store CredentialStore, hasher PhraseHasher, opts ...GuardOption) (guardConfig, error) {
	if store == nil {
		return guardConfig{}, errors.New("auth: guard requires a credential store")
	}
	if hasher == nil {
		return guardConfig{}, errors.New("auth: guard requires a phrase hasher")
	}
	cfg := guardConfig{
		store:        store,
		hasher:       hasher,
		extractor:    FromRequest,
		skipper:      defaultSkipper,
		errorHandler: defaultErrorHandler,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg, nil
}

func WithPhraseExtractor(extractor PhraseExtractor) GuardOption {
	return func(cfg *guardConfig) {
		if extractor != nil {
			cfg.extractor = extractor
		}
	}
}

func WithSkipper(skipper GuardSkipper) GuardOption {
	return func(cfg *guardConfig) {
		if skipper != nil {
			cfg.skipper = skipper
		}
	}
}

func WithErrorHandler(handler GuardErrorHandler) GuardOption {
	return func(cfg *guardConfig) {
		if handler != nil {
			cfg.errorHandler = handler
		}
	}
}

// HeaderExtractor reads the phrase from a header other than HeaderName.
func HeaderExtractor(name string) PhraseExtractor {
	return func(r *http.Request) (Credentials, error) {
		raw := r.Header.Get(name)
		if raw == "" {
			return Credentials{}, ErrPhraseNotFound
		}
		return ParsePhrase(raw)
	}
}

func defaultSkipper(*http.Request) bool { return false }

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	status := http.StatusUnauthorized
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	http.Error(w, err.Error(), status)
}
