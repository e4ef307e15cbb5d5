package services

import (
	"sync"

	"agri-demand-api/pkg/models"
)

// DatasetStore holds the most recently uploaded dataset. Writes replace the
// previous value; no scoring operation reads it.
type DatasetStore struct {
	mu     sync.RWMutex
	latest *models.Dataset
}

func NewDatasetStore() *DatasetStore {
	return &DatasetStore{}
}

// Set replaces the stored dataset.
func (s *DatasetStore) Set(ds *models.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = ds
}

// Latest returns the stored dataset, if any.
func (s *DatasetStore) Latest() (*models.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latest != nil
}

// Available reports whether a dataset has been uploaded.
func (s *DatasetStore) Available() bool {
	_, ok := s.Latest()
	return ok
}
