package datasource

import (
	"context"
	"fmt"

	"github.com/querygate/engine/pkg/config"
)

// Connection bundles the executor and extractor a datasource provides.
// Both interfaces are usually the same adapter value.
type Connection struct {
	Executor  QueryExecutor
	Extractor SchemaExtractor
}

// connectors maps a datastore type to its opener. Adapter packages
// register themselves here via Register from an init function wired in
// main, which keeps this package free of driver imports.
var connectors = map[string]func(ctx context.Context, cfg config.DatastoreConfig) (*Connection, error){}

// Register installs an opener for a datastore type.
func Register(datastoreType string, open func(ctx context.Context, cfg config.DatastoreConfig) (*Connection, error)) {
	connectors[datastoreType] = open
}

// Open connects to the configured datastore.
func Open(ctx context.Context, cfg config.DatastoreConfig) (*Connection, error) {
	open, ok := connectors[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown datastore type %q", cfg.Type)
	}
	conn, err := open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s datastore: %w", cfg.Type, err)
	}
	return conn, nil
}
