package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/dmitrijs2005/waterkeeper/internal/avatar"
	"github.com/dmitrijs2005/waterkeeper/internal/common"
	"github.com/dmitrijs2005/waterkeeper/internal/logging"
	"github.com/dmitrijs2005/waterkeeper/internal/models"
	"github.com/dmitrijs2005/waterkeeper/internal/store/users"
)

// Built-in administrator credentials. The admin is not a stored user.
const (
	AdminID       = "admin"
	AdminPassword = "admin"
)

// IsReservedID reports whether id collides with the administrator id,
// ignoring case.
func IsReservedID(id string) bool {
	return strings.EqualFold(strings.TrimSpace(id), AdminID)
}

// RegisterRequest carries the sign-up form. Avatar is a data URL; leave it
// empty to get a generated placeholder.
type RegisterRequest struct {
	ID            string
	Pass          string
	Name          string
	Sex           string
	Loc           string
	Avatar        string
	InitialAmount float64
}

// Credentials is what RecoverCredentials reveals.
type Credentials struct {
	ID   string
	Pass string
}

// ProfileService creates, edits and deletes users and records consumption.
// Every change is a read-modify-write of the whole collection.
type ProfileService struct {
	repo            users.Repository
	clock           Clock
	logger          logging.Logger
	legacyDualWrite bool
}

type ProfileOption func(*ProfileService)

func WithClock(c Clock) ProfileOption {
	return func(s *ProfileService) { s.clock = c }
}

// WithLegacyDualWrite makes LogConsumption also add to LegacyTotal, for
// readers that still only understand the flat "water" field.
func WithLegacyDualWrite(on bool) ProfileOption {
	return func(s *ProfileService) { s.legacyDualWrite = on }
}

func NewProfileService(repo users.Repository, logger logging.Logger, opts ...ProfileOption) *ProfileService {
	s := &ProfileService{repo: repo, clock: SystemClock(), logger: logger}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *ProfileService) Today() models.Date {
	return Today(s.clock)
}

func indexOf(list []models.User, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Register validates req and appends a new user. Checks run in order: empty
// id or password, reserved id, duplicate id.
func (s *ProfileService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" || req.Pass == "" {
		return nil, fmt.Errorf("%w: user id and password are required", common.ErrValidation)
	}
	if !finite(req.InitialAmount) || req.InitialAmount < 0 {
		return nil, fmt.Errorf("%w: initial amount must be a non-negative number", common.ErrValidation)
	}
	if IsReservedID(id) {
		return nil, fmt.Errorf("%w: %q", common.ErrReservedID, id)
	}

	u := models.User{
		ID:          id,
		Pass:        req.Pass,
		Name:        strings.TrimSpace(req.Name),
		Sex:         strings.TrimSpace(req.Sex),
		Loc:         strings.TrimSpace(req.Loc),
		Avatar:      req.Avatar,
		LegacyTotal: req.InitialAmount,
		Log:         []models.Entry{},
	}
	if u.Name == "" {
		u.Name = id
	}
	if u.Avatar == "" {
		u.Avatar = avatar.Placeholder(u.Name)
	}
	if req.InitialAmount > 0 {
		if err := u.AppendEntry(s.Today(), req.InitialAmount); err != nil {
			return nil, err
		}
	}

	err := s.repo.Mutate(ctx, func(list []models.User) ([]models.User, error) {
		if indexOf(list, id) >= 0 {
			return nil, fmt.Errorf("%w: %q", common.ErrDuplicateID, id)
		}
		return append(list, u), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user", id)
	return &u, nil
}

// Update applies patch to the user with id. The password is only changed
// when allowPassword is set, which is the administrator's privilege.
func (s *ProfileService) Update(ctx context.Context, id string, patch models.Patch, allowPassword bool) (*models.User, error) {
	if patch.LegacyTotal != nil && (!finite(*patch.LegacyTotal) || *patch.LegacyTotal < 0) {
		return nil, fmt.Errorf("%w: total must be a non-negative number", common.ErrValidation)
	}

	var updated models.User
	err := s.repo.Mutate(ctx, func(list []models.User) ([]models.User, error) {
		i := indexOf(list, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: user %q", common.ErrNotFound, id)
		}
		list[i].Apply(patch, allowPassword)
		updated = list[i].Clone()
		return list, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user updated", "user", id, "password_changed", allowPassword && patch.Pass != nil && *patch.Pass != "")
	return &updated, nil
}

// Remove deletes the user with id. Removing an unknown id is a no-op.
func (s *ProfileService) Remove(ctx context.Context, id string) error {
	err := s.repo.Mutate(ctx, func(list []models.User) ([]models.User, error) {
		i := indexOf(list, id)
		if i < 0 {
			return nil, users.ErrSkipSave
		}
		return append(list[:i], list[i+1:]...), nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "user removed", "user", id)
	return nil
}

// RecoverCredentials returns the id and password of the first user, in
// collection order, whose display name equals name ignoring case. Display
// names are not unique, so a shared name always resolves to the oldest
// account.
func (s *ProfileService) RecoverCredentials(ctx context.Context, name string) (*Credentials, error) {
	name = strings.TrimSpace(name)

	list, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range list {
		if strings.EqualFold(u.Name, name) {
			return &Credentials{ID: u.ID, Pass: u.Pass}, nil
		}
	}
	return nil, fmt.Errorf("%w: no user named %q", common.ErrNotFound, name)
}

// LogConsumption records amount liters for today on the user's log.
func (s *ProfileService) LogConsumption(ctx context.Context, id string, amount float64) (*models.User, error) {
	if err := models.ValidateAmount(amount); err != nil {
		return nil, err
	}
	today := s.Today()

	var updated models.User
	err := s.repo.Mutate(ctx, func(list []models.User) ([]models.User, error) {
		i := indexOf(list, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: user %q", common.ErrNotFound, id)
		}
		if err := list[i].AppendEntry(today, amount); err != nil {
			return nil, err
		}
		if s.legacyDualWrite {
			list[i].LegacyTotal += amount
		}
		updated = list[i].Clone()
		return list, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "consumption logged", "user", id, "amount", amount, "date", today.String())
	return &updated, nil
}

// Get returns the user with id or a wrapped common.ErrNotFound.
func (s *ProfileService) Get(ctx context.Context, id string) (*models.User, error) {
	list, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(list, id); i >= 0 {
		return &list[i], nil
	}
	return nil, fmt.Errorf("%w: user %q", common.ErrNotFound, id)
}

// List returns the whole collection in stored order.
func (s *ProfileService) List(ctx context.Context) ([]models.User, error) {
	return s.repo.Load(ctx)
}

// Export returns the collection encoded in its stored JSON shape.
func (s *ProfileService) Export(ctx context.Context) ([]byte, error) {
	list, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return users.Encode(list)
}

// Import replaces the collection with data. Every record must carry a
// non-empty, non-reserved, unique id and a password, and every log entry a
// positive finite amount; otherwise nothing is written.
func (s *ProfileService) Import(ctx context.Context, data []byte) (int, error) {
	list, err := users.Decode(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := validateCollection(list); err != nil {
		return 0, err
	}

	if err := s.repo.Save(ctx, list); err != nil {
		return 0, err
	}

	s.logger.Info(ctx, "collection imported", "users", len(list))
	return len(list), nil
}

func validateCollection(list []models.User) error {
	seen := make(map[string]struct{}, len(list))
	for i, u := range list {
		switch {
		case u.ID == "" || u.Pass == "":
			return fmt.Errorf("%w: record %d has no id or password", common.ErrValidation, i)
		case IsReservedID(u.ID):
			return fmt.Errorf("%w: record %d uses %q", common.ErrReservedID, i, u.ID)
		case !finite(u.LegacyTotal) || u.LegacyTotal < 0:
			return fmt.Errorf("%w: record %q has an invalid total", common.ErrValidation, u.ID)
		}
		if _, dup := seen[u.ID]; dup {
			return fmt.Errorf("%w: %q", common.ErrDuplicateID, u.ID)
		}
		seen[u.ID] = struct{}{}

		for _, e := range u.Log {
			if err := models.ValidateAmount(e.Amount); err != nil {
				return fmt.Errorf("record %q: %w", u.ID, err)
			}
			if e.Date.IsZero() {
				return fmt.Errorf("%w: record %q has an entry without a date", common.ErrValidation, u.ID)
			}
		}
	}
	return nil
}
