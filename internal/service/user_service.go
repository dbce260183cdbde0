package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"biotrack/internal/domain"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
}

// DeletePolicy decides what happens to a user's measures when the user is removed.
type DeletePolicy string

const (
	DeleteCascade  DeletePolicy = "cascade"
	DeleteRestrict DeletePolicy = "restrict"
)

func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch p := DeletePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DeleteCascade, nil
	case DeleteCascade, DeleteRestrict:
		return p, nil
	default:
		return "", fmt.Errorf("unknown user delete policy %q", s)
	}
}

type UserConfig struct {
	DeletePolicy DeletePolicy
	Cache        LatestCache
	Logger       *zap.Logger
}

type UserService struct {
	users    domain.UserRepository
	measures domain.MeasureRepository
	hasher   PasswordHasher
	cache    LatestCache
	policy   DeletePolicy
	log      *zap.Logger
}

func NewUserService(users domain.UserRepository, measures domain.MeasureRepository, hasher PasswordHasher, cfg UserConfig) *UserService {
	s := &UserService{
		users:    users,
		measures: measures,
		hasher:   hasher,
		cache:    cfg.Cache,
		policy:   cfg.DeletePolicy,
		log:      cfg.Logger,
	}
	if s.cache == nil {
		s.cache = noCache{}
	}
	if s.policy == "" {
		s.policy = DeleteCascade
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

func (s *UserService) Create(ctx context.Context, req domain.UserRequest) (UserView, error) {
	if err := req.Validate(); err != nil {
		return UserView{}, err
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return UserView{}, domain.Processing("failed to process user creation", err)
	}
	u := domain.User{
		Name:         req.Name,
		BirthDate:    *req.BirthDate,
		ZipCode:      req.ZipCode,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.users.Save(ctx, &u); err != nil {
		s.log.Error("user creation failed", zap.String("email", req.Email), zap.Error(err))
		return UserView{}, domain.Processing("failed to process user creation", err)
	}
	s.log.Info("user created", zap.Uint("user_id", u.ID))
	return toUserView(u), nil
}

func (s *UserService) List(ctx context.Context) ([]UserView, error) {
	us, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(us) == 0 {
		return nil, domain.NotFound("no users found")
	}
	return toUserViews(us), nil
}

func (s *UserService) Get(ctx context.Context, id uint) (UserView, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return UserView{}, err
	}
	return toUserView(*u), nil
}

// ListWithoutMeasures may return an empty list; that is not an error.
func (s *UserService) ListWithoutMeasures(ctx context.Context) ([]UserView, error) {
	us, err := s.users.FindWithoutMeasures(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users without measures: %w", err)
	}
	return toUserViews(us), nil
}

// WithAllMeasures returns the user with every measure, newest first.
func (s *UserService) WithAllMeasures(ctx context.Context, id uint) (UserWithMeasures, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return UserWithMeasures{}, err
	}
	ms, err := s.measures.ListByUserOrderByDateDesc(ctx, id)
	if err != nil {
		return UserWithMeasures{}, fmt.Errorf("list measures of user %d: %w", id, err)
	}
	if len(ms) == 0 {
		return UserWithMeasures{}, domain.NotFound("no measures found for user")
	}
	return UserWithMeasures{UserView: toUserView(*u), Measures: toMeasureViews(ms)}, nil
}

// WithLatestMeasure returns the user with at most one measure, the most recent.
func (s *UserService) WithLatestMeasure(ctx context.Context, id uint) (UserWithMeasures, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return UserWithMeasures{}, err
	}
	latest, err := latestMeasure(ctx, s.cache, s.measures, id)
	if err != nil {
		return UserWithMeasures{}, err
	}
	out := UserWithMeasures{UserView: toUserView(*u), Measures: []MeasureView{}}
	if latest != nil {
		out.Measures = append(out.Measures, toMeasureView(*latest))
	}
	return out, nil
}

// Update replaces every attribute and always re-hashes the password.
func (s *UserService) Update(ctx context.Context, id uint, req domain.UserRequest) error {
	u, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return domain.Processing("failed to process user update", err)
	}
	u.Name = req.Name
	u.BirthDate = *req.BirthDate
	u.ZipCode = req.ZipCode
	u.Email = req.Email
	u.PasswordHash = hash
	if err := s.users.Save(ctx, u); err != nil {
		return fmt.Errorf("update user %d: %w", id, err)
	}
	s.log.Info("user updated", zap.Uint("user_id", id))
	return nil
}

// Patch changes only the fields present in req.
func (s *UserService) Patch(ctx context.Context, id uint, req domain.UserPatchRequest) error {
	u, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.BirthDate != nil {
		u.BirthDate = *req.BirthDate
	}
	if req.ZipCode != nil {
		u.ZipCode = *req.ZipCode
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return domain.Processing("failed to process user update", err)
		}
		u.PasswordHash = hash
	}
	if err := s.users.Save(ctx, u); err != nil {
		return fmt.Errorf("patch user %d: %w", id, err)
	}
	s.log.Info("user patched", zap.Uint("user_id", id))
	return nil
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return domain.Validation("user id must be a positive number")
	}
	ok, err := s.users.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("check user %d: %w", id, err)
	}
	if !ok {
		return domain.NotFound("user not found with id: %d", id)
	}

	switch s.policy {
	case DeleteRestrict:
		n, err := s.measures.CountByUser(ctx, id)
		if err != nil {
			return fmt.Errorf("count measures of user %d: %w", id, err)
		}
		if n > 0 {
			return domain.Conflict("user %d still has %d measures", id, n)
		}
		err = s.users.DeleteByID(ctx, id)
		if err != nil {
			return fmt.Errorf("delete user %d: %w", id, err)
		}
	default:
		if err := s.users.DeleteWithMeasures(ctx, id); err != nil {
			return fmt.Errorf("delete user %d: %w", id, err)
		}
	}
	s.cache.Forget(ctx, id)
	s.log.Info("user removed", zap.Uint("user_id", id), zap.String("policy", string(s.policy)))
	return nil
}

// FilterByBMI returns the users whose most recent measure falls in the named band.
// Users without measures never match.
func (s *UserService) FilterByBMI(ctx context.Context, label string) ([]UserBMI, error) {
	band, err := domain.ParseBMIBand(label)
	if err != nil {
		return nil, err
	}
	us, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]UserBMI, 0)
	for _, u := range us {
		latest, err := latestMeasure(ctx, s.cache, s.measures, u.ID)
		if err != nil {
			return nil, err
		}
		if latest == nil {
			continue
		}
		bmi := latest.BMI()
		if domain.ClassifyBMI(bmi) != band {
			continue
		}
		out = append(out, UserBMI{
			UserView:      toUserView(u),
			LatestMeasure: toMeasureView(*latest),
			BMI:           domain.RoundBMI(bmi),
			Band:          band,
			BandLabel:     band.Label(),
		})
	}
	return out, nil
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page lists users newest first for the admin console.
func (s *UserService) Page(ctx context.Context, offset, limit int, q string) ([]UserView, int64, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	us, total, err := s.users.Page(ctx, offset, limit, q)
	if err != nil {
		return nil, 0, fmt.Errorf("page users: %w", err)
	}
	return toUserViews(us), total, nil
}

func (s *UserService) find(ctx context.Context, id uint) (*domain.User, error) {
	if id == 0 {
		return nil, domain.Validation("user id must be a positive number")
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	if u == nil {
		return nil, domain.NotFound("user not found with id: %d", id)
	}
	return u, nil
}

func latestMeasure(ctx context.Context, c LatestCache, repo domain.MeasureRepository, userID uint) (*domain.Measure, error) {
	m, err := c.Latest(ctx, userID, func(ctx context.Context) (*domain.Measure, error) {
		return repo.FindLatestByUser(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("latest measure of user %d: %w", userID, err)
	}
	return m, nil
}
