package cmd

import (
	"context"
	"errors"

	"github.com/conneroisu/livedocs/internal/config"
	"github.com/conneroisu/livedocs/internal/logging"
	"github.com/conneroisu/livedocs/internal/registry"
)

// scanComponents builds the registry for the configured components
// directory. A missing directory leaves the registry empty: pages still
// build, their live blocks just stay untransformed.
func scanComponents(ctx context.Context, cfg *config.Config, logger logging.Logger) (*registry.ComponentRegistry, error) {
	reg, err := registry.NewComponentRegistry(registry.Config{
		Extensions:      cfg.Components.Extensions,
		ExcludePatterns: cfg.Components.ExcludePatterns,
	}, nil, logger)
	if err != nil {
		return nil, err
	}

	if _, err := reg.Scan(ctx, cfg.Components.Dir); err != nil {
		if !errors.Is(err, registry.ErrDirectoryNotFound) {
			return nil, err
		}
		logger.Warn(ctx, err, "No components directory; live blocks will not be rendered", "dir", cfg.Components.Dir)
	}

	return reg, nil
}
