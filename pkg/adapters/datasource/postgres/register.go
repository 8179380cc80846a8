package postgres

import (
	"context"

	"github.com/querygate/engine/pkg/adapters/datasource"
	"github.com/querygate/engine/pkg/config"
)

// Register installs the postgres opener in the datasource registry.
func Register() {
	datasource.Register("postgres", func(ctx context.Context, cfg config.DatastoreConfig) (*datasource.Connection, error) {
		adapter, err := NewAdapter(ctx, &Config{
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			Database: cfg.Database,
			SSLMode:  cfg.SSLMode,
		})
		if err != nil {
			return nil, err
		}
		return &datasource.Connection{Executor: adapter, Extractor: adapter}, nil
	})
}
