package duckdb

import (
	"context"

	"github.com/querygate/engine/pkg/adapters/datasource"
	"github.com/querygate/engine/pkg/config"
)

// Register installs the duckdb opener in the datasource registry.
func Register() {
	datasource.Register("duckdb", func(_ context.Context, cfg config.DatastoreConfig) (*datasource.Connection, error) {
		adapter, err := NewAdapter(cfg.Path)
		if err != nil {
			return nil, err
		}
		return &datasource.Connection{Executor: adapter, Extractor: adapter}, nil
	})
}
