package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"frameshot/internal/domain"
)

const (
	presetPrefix = "preset:"
	// seededKey marks a database that already received the defaults, so a
	// default the user deleted stays deleted across restarts.
	seededKey = "meta:presets-seeded"
)

// BadgerRepository implements PresetRepository using BadgerDB.
type BadgerRepository struct {
	db  *badger.DB
	log logrus.FieldLogger
}

// NewBadgerRepository opens the database at dbPath. An empty dbPath opens an in-memory store.
func NewBadgerRepository(dbPath string, logger logrus.FieldLogger) (*BadgerRepository, error) {
	opts := badger.DefaultOptions(dbPath)
	if dbPath == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger.WithField("component", "badgerdb")}

	db, err := badger.Open(opts)
	if err != nil {
		logger.WithError(err).Error("Failed to open BadgerDB")
		return nil, fmt.Errorf("failed to open badger db at %s: %w", dbPath, err)
	}
	logger.WithField("path", dbPath).Info("BadgerDB opened successfully")

	return &BadgerRepository{
		db:  db,
		log: logger.WithField("component", "repository"),
	}, nil
}

// Close closes the BadgerDB database connection.
func (r *BadgerRepository) Close() error {
	r.log.Info("Closing BadgerDB...")
	if err := r.db.Close(); err != nil {
		r.log.WithError(err).Error("Error closing BadgerDB")
		return err
	}
	r.log.Info("BadgerDB closed.")
	return nil
}

// presetKey lowercases the name so lookups ignore case.
// Format: preset:{name}
func presetKey(name string) []byte {
	return []byte(presetPrefix + strings.ToLower(strings.TrimSpace(name)))
}

// SeedPresets stores presets that are not present yet, once per database.
// Existing entries, including user edits, are left alone, and later calls are
// no-ops.
func (r *BadgerRepository) SeedPresets(ctx context.Context, presets []domain.Preset) error {
	seeded := 0
	done := false
	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(seededKey)); err == nil {
			done = true
			return nil
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		for _, p := range presets {
			key := presetKey(p.Name)
			if _, err := txn.Get(key); err == nil {
				continue
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			val, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("failed to marshal preset %q: %w", p.Name, err)
			}
			if err := txn.SetEntry(badger.NewEntry(key, val)); err != nil {
				return err
			}
			seeded++
		}
		return txn.Set([]byte(seededKey), []byte{1})
	})
	if err != nil {
		r.log.WithError(err).Error("Failed to seed presets")
		return fmt.Errorf("failed to seed presets: %w", err)
	}
	if done {
		r.log.Debug("Presets already seeded")
		return nil
	}
	r.log.WithField("seeded", seeded).Info("Presets seeded")
	return nil
}

// SavePreset stores or updates a preset in BadgerDB.
func (r *BadgerRepository) SavePreset(ctx context.Context, preset domain.Preset) error {
	log := r.log.WithField("preset", preset.Name)

	if strings.TrimSpace(preset.Name) == "" {
		return errors.New("preset name is empty")
	}

	val, err := json.Marshal(preset)
	if err != nil {
		log.WithError(err).Error("Failed to marshal preset to JSON")
		return fmt.Errorf("failed to marshal preset: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(presetKey(preset.Name), val))
	})
	if err != nil {
		log.WithError(err).Error("Failed to save preset to BadgerDB")
		return fmt.Errorf("failed to save preset: %w", err)
	}

	log.Info("Preset saved successfully")
	return nil
}

// GetPreset retrieves a single preset by name.
func (r *BadgerRepository) GetPreset(ctx context.Context, name string) (domain.Preset, error) {
	var preset domain.Preset
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(presetKey(name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &preset)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Preset{}, ErrPresetNotFound
	}
	if err != nil {
		r.log.WithError(err).WithField("preset", name).Error("Failed to read preset from BadgerDB")
		return domain.Preset{}, fmt.Errorf("failed to get preset %q: %w", name, err)
	}
	return preset, nil
}

// ListPresets retrieves all presets, sorted by category then name.
func (r *BadgerRepository) ListPresets(ctx context.Context) ([]domain.Preset, error) {
	var presets []domain.Preset

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(presetPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var p domain.Preset
				// json.Unmarshal copies what it keeps, so val need not outlive the callback.
				if err := json.Unmarshal(val, &p); err != nil {
					return fmt.Errorf("failed to unmarshal preset data for key %s: %w", string(item.Key()), err)
				}
				presets = append(presets, p)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.log.WithError(err).Error("Failed to retrieve presets from BadgerDB")
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}

	sort.SliceStable(presets, func(i, j int) bool {
		ri, rj := domain.CategoryRank(presets[i].Category), domain.CategoryRank(presets[j].Category)
		if ri != rj {
			return ri < rj
		}
		return presets[i].Name < presets[j].Name
	})

	r.log.WithField("preset_count", len(presets)).Debug("Presets retrieved successfully")
	return presets, nil
}

// DeletePreset removes a preset by name.
func (r *BadgerRepository) DeletePreset(ctx context.Context, name string) error {
	log := r.log.WithField("preset", name)

	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(presetKey(name))
	})
	if err != nil {
		log.WithError(err).Error("Failed to delete preset from BadgerDB")
		return fmt.Errorf("failed to delete preset %q: %w", name, err)
	}

	log.Info("Preset deleted successfully")
	return nil
}

// --- BadgerDB Internal Logger ---

// badgerLogger adapts logrus.FieldLogger to Badger's logger interface.
type badgerLogger struct {
	logger logrus.FieldLogger
}

func (l *badgerLogger) Errorf(f string, v ...interface{}) {
	l.logger.Errorf(f, v...)
}
func (l *badgerLogger) Warningf(f string, v ...interface{}) {
	l.logger.Warningf(f, v...)
}
func (l *badgerLogger) Infof(f string, v ...interface{}) {
	l.logger.Infof(f, v...)
}
func (l *badgerLogger) Debugf(f string, v ...interface{}) {
	l.logger.Debugf(f, v...)
}
