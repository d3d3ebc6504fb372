package storage

import (
	"context"
	"errors"

	"frameshot/internal/domain"
)

// ErrPresetNotFound is returned when a preset name has no stored entry.
var ErrPresetNotFound = errors.New("preset not found")

// PresetRepository defines the storage operations for viewport presets.
// Screenshots themselves are never stored.
type PresetRepository interface {
	// SavePreset stores a new preset or replaces the one with the same name.
	SavePreset(ctx context.Context, preset domain.Preset) error

	// GetPreset looks a preset up by name (case-insensitive).
	GetPreset(ctx context.Context, name string) (domain.Preset, error)

	// ListPresets returns all presets ordered by category, then name.
	ListPresets(ctx context.Context) ([]domain.Preset, error)

	// DeletePreset removes a preset. Deleting a missing preset is not an error.
	DeletePreset(ctx context.Context, name string) error

	// Close gracefully shuts down the repository connection.
	Close() error
}
