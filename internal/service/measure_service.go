package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"biotrack/internal/domain"
)

type MeasureService struct {
	users    domain.UserRepository
	measures domain.MeasureRepository
	cache    LatestCache
	log      *zap.Logger
}

func NewMeasureService(users domain.UserRepository, measures domain.MeasureRepository, c LatestCache, l *zap.Logger) *MeasureService {
	if c == nil {
		c = noCache{}
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &MeasureService{users: users, measures: measures, cache: c, log: l}
}

// Create records a measure for userID. The owner is resolved before the body is
// validated, so a request for an unknown user never reaches storage.
func (s *MeasureService) Create(ctx context.Context, userID uint, req domain.MeasureRequest) (MeasureView, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return MeasureView{}, err
	}
	if err := req.Validate(); err != nil {
		return MeasureView{}, err
	}
	m := domain.Measure{UserID: userID}
	req.ApplyTo(&m)
	if err := s.measures.Save(ctx, &m); err != nil {
		return MeasureView{}, fmt.Errorf("save measure for user %d: %w", userID, err)
	}
	s.cache.Forget(ctx, userID)
	s.log.Info("measure created", zap.Uint("user_id", userID), zap.Uint("measure_id", m.ID))
	return toMeasureView(m), nil
}

// ListForUser returns the user's measures in storage order; empty is fine.
func (s *MeasureService) ListForUser(ctx context.Context, userID uint) ([]MeasureView, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	ms, err := s.measures.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list measures of user %d: %w", userID, err)
	}
	return toMeasureViews(ms), nil
}

// GetForUser only finds measures owned by userID; another user's id is reported
// as not found.
func (s *MeasureService) GetForUser(ctx context.Context, userID, measureID uint) (MeasureView, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return MeasureView{}, err
	}
	ms, err := s.measures.ListByUser(ctx, userID)
	if err != nil {
		return MeasureView{}, fmt.Errorf("list measures of user %d: %w", userID, err)
	}
	m, ok := domain.FindOwned(ms, measureID)
	if !ok {
		return MeasureView{}, domain.NotFound("measurement not found for this user")
	}
	return toMeasureView(*m), nil
}

// Latest returns the most recent measure of userID, or nil when there is none.
func (s *MeasureService) Latest(ctx context.Context, userID uint) (*MeasureView, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	m, err := latestMeasure(ctx, s.cache, s.measures, userID)
	if err != nil || m == nil {
		return nil, err
	}
	v := toMeasureView(*m)
	return &v, nil
}

// Update fully replaces a measure; optional fields left out of req are cleared.
func (s *MeasureService) Update(ctx context.Context, measureID uint, req domain.MeasureRequest) (MeasureView, error) {
	m, err := s.measures.FindByID(ctx, measureID)
	if err != nil {
		return MeasureView{}, fmt.Errorf("find measure %d: %w", measureID, err)
	}
	if m == nil {
		return MeasureView{}, domain.NotFound("measurement not found with id: %d", measureID)
	}
	if err := req.Validate(); err != nil {
		return MeasureView{}, err
	}
	req.ApplyTo(m)
	if err := s.measures.Save(ctx, m); err != nil {
		return MeasureView{}, fmt.Errorf("update measure %d: %w", measureID, err)
	}
	s.cache.Forget(ctx, m.UserID)
	s.log.Info("measure updated", zap.Uint("user_id", m.UserID), zap.Uint("measure_id", m.ID))
	return toMeasureView(*m), nil
}

// Delete removes a measure by id.
//
// An unknown id comes back as a plain error, which the transport reports as 500.
// Existing clients depend on that status.
// TODO: report a missing measure as not found once clients accept 404 here.
func (s *MeasureService) Delete(ctx context.Context, measureID uint) error {
	m, err := s.measures.FindByID(ctx, measureID)
	if err != nil {
		return fmt.Errorf("find measure %d: %w", measureID, err)
	}
	if m == nil {
		return fmt.Errorf("measurement not found with id: %d", measureID)
	}
	if err := s.measures.DeleteByID(ctx, measureID); err != nil {
		return fmt.Errorf("delete measure %d: %w", measureID, err)
	}
	s.cache.Forget(ctx, m.UserID)
	s.log.Info("measure removed", zap.Uint("user_id", m.UserID), zap.Uint("measure_id", measureID))
	return nil
}

// PurgeForUser drops every measure of userID and reports how many were removed.
func (s *MeasureService) PurgeForUser(ctx context.Context, userID uint) (int64, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return 0, err
	}
	n, err := s.measures.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("purge measures of user %d: %w", userID, err)
	}
	s.cache.Forget(ctx, userID)
	s.log.Warn("measures purged", zap.Uint("user_id", userID), zap.Int64("count", n))
	return n, nil
}

func (s *MeasureService) requireUser(ctx context.Context, userID uint) error {
	if userID == 0 {
		return domain.Validation("user id must be a positive number")
	}
	ok, err := s.users.ExistsByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user %d: %w", userID, err)
	}
	if !ok {
		return domain.NotFound("user not found")
	}
	return nil
}
