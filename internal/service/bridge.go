package service

import (
	"context"

	"github.com/deppfellow/bridge-api/internal/model"
	"github.com/deppfellow/bridge-api/internal/repository"
	"github.com/rs/zerolog"
)

// BridgeReader is the record access the service needs. It is satisfied by
// *repository.BridgeRepository.
type BridgeReader interface {
	FetchAll(ctx context.Context) ([]model.BridgeRecord, error)
	FetchByProjectCode(ctx context.Context, code string) ([]model.BridgeRecord, error)
	FetchCustom(ctx context.Context, name string, args ...string) (*repository.QueryResult, error)
	VerifySchema(ctx context.Context) error
}

var _ BridgeReader = (*repository.BridgeRepository)(nil)

// BridgeService exposes read-only access to bridge survey records.
type BridgeService struct {
	repo   BridgeReader
	logger zerolog.Logger
}

func NewBridgeService(repo BridgeReader, logger *zerolog.Logger) *BridgeService {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("service", "bridge").Logger()
	}
	return &BridgeService{repo: repo, logger: l}
}

// FetchAll returns every record.
func (s *BridgeService) FetchAll(ctx context.Context) ([]model.BridgeRecord, error) {
	return s.repo.FetchAll(ctx)
}

// FetchByProjectCode returns every record carrying the code. The code is
// matched exactly and may legitimately match several records or none.
func (s *BridgeService) FetchByProjectCode(ctx context.Context, code string) ([]model.BridgeRecord, error) {
	records, err := s.repo.FetchByProjectCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if len(records) > 1 {
		s.logger.Debug().
			Str("project_code", code).
			Int("matches", len(records)).
			Msg("project code matches several records")
	}
	return records, nil
}

// RunQuery runs one of the allow-listed named queries.
func (s *BridgeService) RunQuery(ctx context.Context, name string, args ...string) (*repository.QueryResult, error) {
	return s.repo.FetchCustom(ctx, name, args...)
}

// VerifySchema checks the backing table against the column registry.
func (s *BridgeService) VerifySchema(ctx context.Context) error {
	return s.repo.VerifySchema(ctx)
}
