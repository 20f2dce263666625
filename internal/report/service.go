package report

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"cv-analyzer/internal/storage"
)

// ContentType of rendered reports.
const ContentType = "application/pdf"

// Artifact identifies a stored report.
type Artifact struct {
	ID   uuid.UUID
	Size int
}

// Key is the storage key of the artifact.
func (a Artifact) Key() string {
	return Key(a.ID)
}

// Key maps a report ID to its storage key.
func Key(id uuid.UUID) string {
	return id.String() + ".pdf"
}

// Service renders reports and stores each one under a fresh ID.
type Service struct {
	renderer *Renderer
	store    storage.Store
}

// NewService returns a Service writing into store.
func NewService(renderer *Renderer, store storage.Store) *Service {
	return &Service{renderer: renderer, store: store}
}

// Create renders text and stores it as a new artifact.
func (s *Service) Create(ctx context.Context, text string) (Artifact, error) {
	data, err := s.renderer.Render(text)
	if err != nil {
		return Artifact{}, err
	}
	artifact := Artifact{ID: uuid.New(), Size: len(data)}
	if err := s.store.Put(ctx, artifact.Key(), data, ContentType); err != nil {
		return Artifact{}, fmt.Errorf("store report: %w", err)
	}
	return artifact, nil
}

// Open returns the stored PDF for id.
func (s *Service) Open(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	return s.store.Get(ctx, Key(id))
}
