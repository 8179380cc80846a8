// Package services implements the conversation orchestration behind the
// HTTP handlers: catalog management, SQL generation, decision gating,
// session state, and execution analysis.
package services

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/querygate/engine/pkg/adapters/datasource"
	"github.com/querygate/engine/pkg/models"
)

// CatalogService owns the schema snapshot all validators read. The
// snapshot is immutable per turn; Refresh swaps it atomically between
// turns.
type CatalogService interface {
	// Snapshot returns the current schema descriptor.
	Snapshot() *models.SchemaDescriptor

	// Refresh re-reads the live catalog from the datasource.
	Refresh(ctx context.Context) error
}

type catalogService struct {
	extractor datasource.SchemaExtractor
	logger    *zap.Logger

	mu       sync.RWMutex
	snapshot *models.SchemaDescriptor
}

// NewCatalogService creates a catalog backed by the datasource extractor.
func NewCatalogService(extractor datasource.SchemaExtractor, logger *zap.Logger) CatalogService {
	return &catalogService{
		extractor: extractor,
		logger:    logger.Named("catalog"),
		snapshot:  models.NewSchemaDescriptor(nil),
	}
}

// NewCatalogFromSnapshot loads a catalog from a YAML snapshot file and
// optionally keeps an extractor for later refreshes.
func NewCatalogFromSnapshot(path string, extractor datasource.SchemaExtractor, logger *zap.Logger) (CatalogService, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema snapshot: %w", err)
	}

	var snapshot struct {
		Tables []models.TableDescriptor `yaml:"tables"`
	}
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parse schema snapshot: %w", err)
	}

	return &catalogService{
		extractor: extractor,
		logger:    logger.Named("catalog"),
		snapshot:  models.NewSchemaDescriptor(snapshot.Tables),
	}, nil
}

func (s *catalogService) Snapshot() *models.SchemaDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *catalogService) Refresh(ctx context.Context) error {
	if s.extractor == nil {
		return fmt.Errorf("no schema extractor configured")
	}

	extracted, err := s.extractor.ExtractTables(ctx)
	if err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}

	tables := make([]models.TableDescriptor, 0, len(extracted))
	for _, t := range extracted {
		columns := make([]models.ColumnDescriptor, 0, len(t.Columns))
		for _, c := range t.Columns {
			columns = append(columns, models.ColumnDescriptor{Name: c.Name, Type: c.Type})
		}
		tables = append(tables, models.TableDescriptor{Name: t.Name, Columns: columns})
	}

	descriptor := models.NewSchemaDescriptor(tables)

	s.mu.Lock()
	s.snapshot = descriptor
	s.mu.Unlock()

	s.logger.Info("catalog refreshed", zap.Int("tables", len(tables)))
	return nil
}
