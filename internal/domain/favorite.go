package domain

import (
	"time"

	"github.com/google/uuid"
)

// Favorite marks an asset as a favorite of a subject (a user or API key).
type Favorite struct {
	SubjectKey string    `json:"subject_key"`
	AssetID    uuid.UUID `json:"asset_id"`
	CreatedAt  time.Time `json:"created_at"`
}
