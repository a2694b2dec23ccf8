package store

import (
	"context"
	"fmt"

	"github.com/jmylchreest/clipbox/internal/model"
)

// LoadSettings reads the settings, merging stored values over the defaults.
// A missing key yields the defaults.
func LoadSettings(ctx context.Context, kv KV) (model.Settings, error) {
	settings := model.DefaultSettings()
	if _, err := kv.Get(ctx, SettingsKey, &settings); err != nil {
		return model.DefaultSettings(), fmt.Errorf("load settings: %w", err)
	}
	return settings.Normalize(), nil
}

// SaveSettings normalizes and overwrites the stored settings.
func SaveSettings(ctx context.Context, kv KV, settings model.Settings) (model.Settings, error) {
	settings = settings.Normalize()
	if err := kv.Set(ctx, SettingsKey, settings); err != nil {
		return settings, fmt.Errorf("save settings: %w", err)
	}
	return settings, nil
}

// LoadTypeIcons reads the category icon map merged over the built-in defaults.
func LoadTypeIcons(ctx context.Context, kv KV) (model.TypeIcons, error) {
	var stored model.TypeIcons
	if _, err := kv.Get(ctx, TypeIconsKey, &stored); err != nil {
		return model.DefaultTypeIcons(), fmt.Errorf("load type icons: %w", err)
	}
	return model.MergeTypeIcons(stored), nil
}

// SaveTypeIcons overwrites the stored category icon map.
func SaveTypeIcons(ctx context.Context, kv KV, icons model.TypeIcons) error {
	if err := kv.Set(ctx, TypeIconsKey, icons); err != nil {
		return fmt.Errorf("save type icons: %w", err)
	}
	return nil
}
