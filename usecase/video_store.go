package usecase

import (
	"slices"

	"watch-tracker/domain/model"
	"watch-tracker/infrastructure/utils"

	"github.com/google/uuid"
)

// VideoStore is the ordered log of watched videos, most recent first.
// It is not safe for concurrent use; TrackerUseCase serializes access.
type VideoStore struct {
	records []model.VideoRecord
	clock   utils.Clock
	newID   func() string
}

func NewVideoStore(clock utils.Clock) *VideoStore {
	if clock == nil {
		clock = utils.GetCurrentTime
	}
	return &VideoStore{
		records: []model.VideoRecord{},
		clock:   clock,
		newID:   func() string { return uuid.New().String() },
	}
}

// Add stamps the candidate with a fresh ID and the current time and prepends it.
func (s *VideoStore) Add(candidate model.VideoCandidate) model.VideoRecord {
	record := model.VideoRecord{
		ID:              s.newID(),
		Title:           candidate.Title,
		URL:             candidate.URL,
		ThumbnailURL:    candidate.ThumbnailURL,
		DurationSeconds: candidate.DurationSeconds,
		AddedAt:         s.clock(),
	}
	s.records = slices.Insert(s.records, 0, record)
	return record
}

// Remove deletes the record with the given ID. It reports whether a record
// was removed; an unknown ID is a no-op.
func (s *VideoStore) Remove(id string) (model.VideoRecord, bool) {
	i := slices.IndexFunc(s.records, func(r model.VideoRecord) bool { return r.ID == id })
	if i < 0 {
		return model.VideoRecord{}, false
	}
	removed := s.records[i]
	s.records = slices.Delete(s.records, i, i+1)
	return removed, true
}

func (s *VideoStore) List() []model.VideoRecord {
	return slices.Clone(s.records)
}

func (s *VideoStore) Len() int {
	return len(s.records)
}

func (s *VideoStore) TotalWatchedSeconds() int {
	total := 0
	for _, r := range s.records {
		total += r.DurationSeconds
	}
	return total
}

// Replace swaps the whole log, used when hydrating.
func (s *VideoStore) Replace(records []model.VideoRecord) {
	if records == nil {
		records = []model.VideoRecord{}
	}
	s.records = slices.Clone(records)
}
