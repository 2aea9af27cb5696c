// Package favorites is an explicit key-value store for per-subject favorite
// marks. Every mutation goes through the repository and then broadcasts a
// change ping, so interested listeners re-query instead of sharing state.
package favorites

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/datalens/catalogd/internal/domain"
	"github.com/datalens/catalogd/internal/notify"
	"github.com/datalens/catalogd/internal/repository"
)

// Service stores favorite marks keyed by (subject, asset) and notifies
// subscribers on every change.
type Service struct {
	repo     repository.FavoriteRepository
	notifier *notify.Notifier
	now      func() time.Time
}

// NewService creates a favorites service over the given repository.
func NewService(repo repository.FavoriteRepository) *Service {
	return &Service{
		repo:     repo,
		notifier: notify.New(),
		now:      time.Now,
	}
}

// Put marks an asset as a favorite of the subject. Idempotent.
func (s *Service) Put(ctx context.Context, subjectKey string, assetID uuid.UUID) (domain.Favorite, error) {
	subjectKey = strings.TrimSpace(subjectKey)
	if subjectKey == "" {
		return domain.Favorite{}, fmt.Errorf("subject key is required")
	}
	if assetID == uuid.Nil {
		return domain.Favorite{}, fmt.Errorf("asset id is required")
	}

	favorite := domain.Favorite{
		SubjectKey: subjectKey,
		AssetID:    assetID,
		CreatedAt:  s.now(),
	}
	if err := s.repo.Put(ctx, favorite); err != nil {
		return domain.Favorite{}, fmt.Errorf("failed to store favorite: %w", err)
	}

	s.notifier.Broadcast()
	return favorite, nil
}

// Remove clears a favorite mark.
func (s *Service) Remove(ctx context.Context, subjectKey string, assetID uuid.UUID) error {
	subjectKey = strings.TrimSpace(subjectKey)
	if subjectKey == "" {
		return fmt.Errorf("subject key is required")
	}
	if err := s.repo.Delete(ctx, subjectKey, assetID); err != nil {
		return err
	}

	s.notifier.Broadcast()
	return nil
}

// List returns the subject's favorites, newest first.
func (s *Service) List(ctx context.Context, subjectKey string) ([]domain.Favorite, error) {
	subjectKey = strings.TrimSpace(subjectKey)
	if subjectKey == "" {
		return nil, fmt.Errorf("subject key is required")
	}
	return s.repo.List(ctx, subjectKey)
}

// IsFavorite reports whether the subject has marked the asset.
func (s *Service) IsFavorite(ctx context.Context, subjectKey string, assetID uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, strings.TrimSpace(subjectKey), assetID)
}

// Subscribe returns a channel pinged after every favorite change. Callers
// must Unsubscribe when done.
func (s *Service) Subscribe() chan struct{} {
	return s.notifier.Subscribe()
}

// Unsubscribe releases a listener channel.
func (s *Service) Unsubscribe(ch chan struct{}) {
	s.notifier.Unsubscribe(ch)
}
