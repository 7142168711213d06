package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/aschepis/backscratcher/chessinsight/llm"
	"github.com/aschepis/backscratcher/chessinsight/settings"
	"github.com/rs/zerolog"
)

// ProviderFactory builds a provider adapter for a provider id and model.
type ProviderFactory func(providerID, model string) (llm.Provider, error)

// Selection is the provider choice edited on the settings page.
type Selection struct {
	Provider string
	Model    string
	APIKey   string
}

// SettingsService reads and saves the provider selection.
type SettingsService interface {
	// Current returns the stored selection.
	Current(ctx context.Context) (Selection, error)

	// Save validates and stores sel and returns the provider to use from now
	// on together with its credential.
	Save(ctx context.Context, sel Selection) (llm.Provider, string, error)
}

// settingsService implements SettingsService over a settings.Store
type settingsService struct {
	store    *settings.Store
	factory  ProviderFactory
	fallback string
	logger   zerolog.Logger
}

// NewSettingsService creates a SettingsService. fallback is the provider used
// when none has been stored yet.
func NewSettingsService(logger zerolog.Logger, store *settings.Store, factory ProviderFactory, fallback string) SettingsService {
	return &settingsService{
		store:    store,
		factory:  factory,
		fallback: fallback,
		logger:   logger.With().Str("component", "settingsService").Logger(),
	}
}

// Current returns the stored selection.
func (s *settingsService) Current(ctx context.Context) (Selection, error) {
	provider, err := s.store.Provider(ctx, s.fallback)
	if err != nil {
		return Selection{}, err
	}
	model, err := s.store.Model(ctx, provider)
	if err != nil {
		return Selection{}, err
	}
	key, err := s.store.APIKey(ctx, provider)
	if err != nil {
		return Selection{}, err
	}
	return Selection{Provider: provider, Model: model, APIKey: key}, nil
}

// Save stores the selection. Switching provider resets the model to the new
// provider's default unless a catalog model is given. The key is validated
// against the backend before it is stored.
func (s *settingsService) Save(ctx context.Context, sel Selection) (llm.Provider, string, error) {
	if !llm.IsKnownProvider(sel.Provider) {
		return nil, "", fmt.Errorf("unknown provider: %s", sel.Provider)
	}

	stored, _, err := s.store.Get(ctx, settings.KeyProvider)
	if err != nil {
		return nil, "", err
	}
	if stored != sel.Provider {
		if err := s.store.SetProvider(ctx, sel.Provider); err != nil {
			return nil, "", err
		}
	}

	model := llm.ResolveModel(sel.Provider, strings.TrimSpace(sel.Model))
	if err := s.store.SetModel(ctx, model); err != nil {
		return nil, "", err
	}

	provider, err := s.factory(sel.Provider, model)
	if err != nil {
		return nil, "", err
	}

	key := strings.TrimSpace(sel.APIKey)
	if provider.Config().RequiresKey {
		if err := s.store.SaveValidatedKey(ctx, provider, key); err != nil {
			return nil, "", err
		}
	}

	s.logger.Info().Str("provider", sel.Provider).Str("model", model).Msg("Settings saved")
	return provider, key, nil
}
