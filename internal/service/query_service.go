package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"query-desk/internal/domain"
	"query-desk/internal/repository"
	"query-desk/internal/storage"
	"query-desk/internal/validate"
)

// QueryService coordinates contact query operations backed by the query repository.
//
// Update and Delete check for the row first and then mutate it in a second statement. The two
// round trips are not atomic: a concurrent delete between them surfaces as ErrQueryNotFound.
type QueryService interface {
	Submit(ctx context.Context, input domain.QueryInput) (*domain.QueryMessage, error)
	List(ctx context.Context) ([]domain.QueryMessage, error)
	Update(ctx context.Context, id int64, patch domain.QueryPatch) error
	Delete(ctx context.Context, id int64) error
}

type queryService struct {
	queries repository.QueryRepository
	archive storage.Archiver
	logger  logrus.FieldLogger
	now     func() time.Time
}

// NewQueryService builds the query service. archive may be nil, in which case deleted
// queries are not kept anywhere.
func NewQueryService(queries repository.QueryRepository, archive storage.Archiver, logger logrus.FieldLogger) QueryService {
	return &queryService{
		queries: queries,
		archive: archive,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *queryService) Submit(ctx context.Context, input domain.QueryInput) (*domain.QueryMessage, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Message = strings.TrimSpace(input.Message)
	if err := validate.QuerySubmission(input.Name, input.Email, input.Message); err != nil {
		return nil, err
	}

	msg := &domain.QueryMessage{
		Name:      input.Name,
		Email:     input.Email,
		Message:   input.Message,
		CreatedAt: s.now().UTC(),
	}
	if _, err := s.queries.Create(ctx, msg); err != nil {
		return nil, storeError("create query", err)
	}
	return msg, nil
}

func (s *queryService) List(ctx context.Context) ([]domain.QueryMessage, error) {
	msgs, err := s.queries.List(ctx)
	if err != nil {
		return nil, storeError("list queries", err)
	}
	return msgs, nil
}

// Update applies a partial update. A missing row and an update that touched no row both
// report ErrQueryNotFound.
func (s *queryService) Update(ctx context.Context, id int64, patch domain.QueryPatch) error {
	if err := validate.PositiveID(id); err != nil {
		return err
	}
	if err := validate.QueryUpdate(patch.Name, patch.Email, patch.Message); err != nil {
		return err
	}

	if _, err := s.queries.Get(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQueryNotFound
		}
		return storeError("lookup query", err)
	}

	affected, err := s.queries.Update(ctx, id, trimPatch(patch))
	if err != nil {
		return storeError("update query", err)
	}
	if affected == 0 {
		return ErrQueryNotFound
	}
	return nil
}

func (s *queryService) Delete(ctx context.Context, id int64) error {
	if err := validate.PositiveID(id); err != nil {
		return err
	}

	msg, err := s.queries.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQueryNotFound
		}
		return storeError("lookup query", err)
	}

	affected, err := s.queries.Delete(ctx, id)
	if err != nil {
		return storeError("delete query", err)
	}
	if affected == 0 {
		return ErrQueryNotFound
	}

	if s.archive != nil {
		location, err := s.archive.Archive(ctx, *msg)
		if err != nil {
			s.logger.WithError(err).WithField("query_id", id).Warn("archive deleted query")
		} else {
			s.logger.WithFields(logrus.Fields{"query_id": id, "location": location}).Debug("archived deleted query")
		}
	}
	return nil
}

func trimPatch(patch domain.QueryPatch) domain.QueryPatch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	return domain.QueryPatch{
		Name:    trim(patch.Name),
		Email:   trim(patch.Email),
		Message: trim(patch.Message),
	}
}
