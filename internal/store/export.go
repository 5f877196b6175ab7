package store

import (
	"fmt"
	"time"

	"github.com/pavelanni/kokushi/internal/model"
)

// ExportRecords builds the export document of every stored record, optionally
// limited to one company.
func (s *Store) ExportRecords(company string) (model.ScoreExport, error) {
	results, err := s.ListRecords(company)
	if err != nil {
		return model.ScoreExport{}, fmt.Errorf("list records: %w", err)
	}
	if results == nil {
		results = []model.StoredResult{}
	}
	return model.ScoreExport{
		ExportedAt: time.Now().UTC(),
		Results:    results,
	}, nil
}
