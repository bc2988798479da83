package application

import (
	"context"
	"fmt"

	"github.com/leadmate/leadmate/pkg/api"
	"github.com/leadmate/leadmate/pkg/domain/document"
	"github.com/leadmate/leadmate/pkg/store"
)

// DocumentService handles project documents: list, upload, delete, and
// triggering backend re-analysis.
type DocumentService struct {
	engine *Engine
	client *api.Client
}

func NewDocumentService(engine *Engine, client *api.Client) *DocumentService {
	return &DocumentService{engine: engine, client: client}
}

// Refresh reloads a project's documents from the backend.
func (s *DocumentService) Refresh(ctx context.Context, projectID string) error {
	docs, err := s.client.ListDocuments(ctx, projectID)
	if err != nil {
		return fmt.Errorf("refresh documents: %w", err)
	}
	entities := make([]store.Entity, len(docs))
	for i, d := range docs {
		entities[i] = d
	}
	s.engine.Load(store.Documents, entities)
	return nil
}

// Upload sends files to the backend and ingests the created records.
// Uploads are not optimistic: the server owns filenames, sizes, and
// extraction, so there is nothing sensible to show before it answers.
func (s *DocumentService) Upload(ctx context.Context, projectID string, files []api.Upload) ([]document.Document, error) {
	docs, err := s.client.UploadDocuments(ctx, projectID, files)
	if err != nil {
		return nil, fmt.Errorf("upload documents: %w", err)
	}
	entities := make([]store.Entity, len(docs))
	for i, d := range docs {
		entities[i] = d
	}
	s.engine.Ingest(store.Documents, entities...)
	return docs, nil
}

// Delete removes a document optimistically. Deletion is immediate and
// not undoable from this client.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	m := Mutation{
		Collection:      store.Documents,
		ID:              id,
		RequireExisting: true,
		Apply: func(st *store.Store, id string) error {
			st.Remove(store.Documents, id)
			return nil
		},
		Request: func(ctx context.Context, id string) (CommitResult, error) {
			return CommitResult{}, s.client.DeleteDocument(ctx, id)
		},
	}
	return s.engine.Do(ctx, m)
}

// Analyze triggers backend re-analysis of a project's documents and
// refreshes the collection so updated extraction results land locally.
func (s *DocumentService) Analyze(ctx context.Context, projectID string) error {
	if err := s.client.AnalyzeDocuments(ctx, projectID); err != nil {
		return fmt.Errorf("analyze documents: %w", err)
	}
	return s.Refresh(ctx, projectID)
}
