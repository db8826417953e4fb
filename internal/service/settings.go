package service

import (
	"context"
	"errors"

	"github.com/segyhp/pawn-engine/internal/repository"
	"github.com/segyhp/pawn-engine/pkg/engine"
)

// Settings resolves the calculation settings in effect. Stored settings win;
// with no stored penalty row the configured penalty applies, and an empty
// bracket table leaves the engine on its built-in schedule.
type Settings struct {
	repo    repository.SettingsRepository
	penalty engine.PenaltyConfig
}

func NewSettings(repo repository.SettingsRepository, fallback engine.PenaltyConfig) *Settings {
	return &Settings{repo: repo, penalty: fallback}
}

func (s *Settings) PenaltyConfig(ctx context.Context) (engine.PenaltyConfig, error) {
	cfg, err := s.repo.GetPenaltyConfig(ctx)
	switch {
	case err == nil:
		return cfg, nil
	case errors.Is(err, repository.ErrNotFound):
		return s.penalty, nil
	default:
		return engine.PenaltyConfig{}, settingsError(err)
	}
}

func (s *Settings) ServiceChargeBrackets(ctx context.Context) ([]engine.ServiceChargeBracket, error) {
	brackets, err := s.repo.GetServiceChargeBrackets(ctx)
	if err != nil {
		return nil, settingsError(err)
	}
	return brackets, nil
}
