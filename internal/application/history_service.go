package application

import (
	"fmt"

	"github.com/forcekit/forcekit/internal/domain"
)

// HistoryService reads recorded validation outcomes for display.
type HistoryService struct {
	store domain.ValidationHistory
}

// NewHistoryService creates a HistoryService over a history store.
func NewHistoryService(store domain.ValidationHistory) *HistoryService {
	return &HistoryService{store: store}
}

// Entries returns the project's validation history in recorded order,
// capped to the last n entries when n is positive.
func (s *HistoryService) Entries(projectPath string, last int) ([]domain.HistoryEntry, error) {
	entries, err := s.store.Load(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	if last > 0 && len(entries) > last {
		entries = entries[len(entries)-last:]
	}
	return entries, nil
}

// ForArtifact filters the history down to one artifact path.
func (s *HistoryService) ForArtifact(projectPath, artifact string) ([]domain.HistoryEntry, error) {
	entries, err := s.Entries(projectPath, 0)
	if err != nil {
		return nil, err
	}
	var out []domain.HistoryEntry
	for _, e := range entries {
		if e.Artifact == artifact {
			out = append(out, e)
		}
	}
	return out, nil
}
