package calllog

import (
	"context"
	"errors"
)

var ErrInvalidRequest = errors.New("calllog: invalid request")

// Repository abstracts the call history store.
//
// Implementations must enforce workspace filtering; the service applies the
// query constraints on top of the workspace-scoped listing.
type Repository interface {
	ListByWorkspace(ctx context.Context, workspaceID string) ([]CallLog, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// Query returns the workspace's records matching q, newest first as stored.
func (s *Service) Query(ctx context.Context, workspaceID string, q Query) ([]CallLog, error) {
	if workspaceID == "" {
		return nil, ErrInvalidRequest
	}
	logs, err := s.repo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return Filter(logs, q), nil
}

// Export serializes the matching records to CSV bytes.
func (s *Service) Export(ctx context.Context, workspaceID string, q Query) ([]byte, error) {
	logs, err := s.Query(ctx, workspaceID, q)
	if err != nil {
		return nil, err
	}
	return ExportCSV(logs), nil
}
