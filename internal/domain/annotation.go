package domain

import (
	"time"

	"github.com/google/uuid"
)

// Annotation is a free-form note attached to an asset.
type Annotation struct {
	ID        uuid.UUID `json:"id"`
	AssetID   uuid.UUID `json:"asset_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAnnotation creates an annotation for an asset.
func NewAnnotation(assetID uuid.UUID, author, body string) Annotation {
	now := time.Now()
	return Annotation{
		ID:        uuid.New(),
		AssetID:   assetID,
		Author:    author,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithBody returns a copy with a replaced body.
func (a Annotation) WithBody(body string) Annotation {
	a.Body = body
	a.UpdatedAt = time.Now()
	return a
}
