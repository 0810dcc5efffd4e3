package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/waterkeeper/internal/common"
	"github.com/dmitrijs2005/waterkeeper/internal/logging"
	"github.com/dmitrijs2005/waterkeeper/internal/models"
	"github.com/dmitrijs2005/waterkeeper/internal/store/users"
)

// Principal is whoever is logged in: a UserPrincipal or an AdminPrincipal.
type Principal interface {
	principal()
}

// UserPrincipal refers to a stored user by id only; the record itself is
// re-read on every access.
type UserPrincipal struct {
	UserID string
}

// AdminPrincipal is the built-in administrator. It has no user record.
type AdminPrincipal struct{}

func (UserPrincipal) principal()  {}
func (AdminPrincipal) principal() {}

// Principal kinds as persisted by a SessionKeeper.
const (
	KindUser  = "user"
	KindAdmin = "admin"
)

// SessionKeeper persists the login between runs.
type SessionKeeper interface {
	Save(ctx context.Context, kind, subject string) error
	// Load returns an error wrapping common.ErrAuth when there is no valid
	// saved session.
	Load(ctx context.Context) (kind, subject string, err error)
	Clear(ctx context.Context) error
}

type SessionService struct {
	repo   users.Repository
	keeper SessionKeeper
	logger logging.Logger

	mu      sync.Mutex
	current Principal
}

// NewSessionService returns a logged-out session. keeper may be nil, in which
// case logins are not remembered.
func NewSessionService(repo users.Repository, logger logging.Logger, keeper SessionKeeper) *SessionService {
	return &SessionService{repo: repo, keeper: keeper, logger: logger}
}

func (s *SessionService) setCurrent(p Principal) {
	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
}

// Current returns the logged-in principal or nil.
func (s *SessionService) Current() Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *SessionService) IsAdmin() bool {
	_, ok := s.Current().(AdminPrincipal)
	return ok
}

// Authenticate logs in. admin/admin yields the AdminPrincipal; anything else
// must match a stored user's id and password exactly.
func (s *SessionService) Authenticate(ctx context.Context, id, pass string) (Principal, error) {
	id = strings.TrimSpace(id)

	if id == AdminID && pass == AdminPassword {
		p := AdminPrincipal{}
		s.setCurrent(p)
		s.remember(ctx, KindAdmin, AdminID)
		s.logger.Info(ctx, "administrator logged in")
		return p, nil
	}

	list, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range list {
		if u.ID == id && u.Pass == pass {
			p := UserPrincipal{UserID: u.ID}
			s.setCurrent(p)
			s.remember(ctx, KindUser, u.ID)
			s.logger.Info(ctx, "user logged in", "user", u.ID)
			return p, nil
		}
	}

	s.logger.Debug(ctx, "login rejected", "user", id)
	return nil, common.ErrAuth
}

func (s *SessionService) remember(ctx context.Context, kind, subject string) {
	if s.keeper == nil {
		return
	}
	if err := s.keeper.Save(ctx, kind, subject); err != nil {
		s.logger.Warn(ctx, "could not remember session", "error", err)
	}
}

// ResolveCurrent re-reads the logged-in user's record. If the record is gone
// the session is ended and common.ErrSessionInvalidated returned.
func (s *SessionService) ResolveCurrent(ctx context.Context) (*models.User, error) {
	switch p := s.Current().(type) {
	case nil:
		return nil, fmt.Errorf("%w: not logged in", common.ErrAuth)
	case AdminPrincipal:
		return nil, fmt.Errorf("%w: the administrator has no profile", common.ErrAuth)
	case UserPrincipal:
		list, err := s.repo.Load(ctx)
		if err != nil {
			return nil, err
		}
		for i := range list {
			if list[i].ID == p.UserID {
				return &list[i], nil
			}
		}

		s.logger.Warn(ctx, "logged-in user no longer exists", "user", p.UserID)
		if err := s.Logout(ctx); err != nil {
			s.logger.Warn(ctx, "could not clear saved session", "error", err)
		}
		return nil, fmt.Errorf("%w: user %q was removed", common.ErrSessionInvalidated, p.UserID)
	}
	return nil, common.ErrAuth
}

// Logout ends the session and forgets any saved login.
func (s *SessionService) Logout(ctx context.Context) error {
	s.setCurrent(nil)
	if s.keeper == nil {
		return nil
	}
	return s.keeper.Clear(ctx)
}

// Resume restores a login saved by an earlier run. A restored user session
// must still resolve to an existing record.
func (s *SessionService) Resume(ctx context.Context) (Principal, error) {
	if s.keeper == nil {
		return nil, fmt.Errorf("%w: sessions are not remembered", common.ErrAuth)
	}

	kind, subject, err := s.keeper.Load(ctx)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindAdmin:
		p := AdminPrincipal{}
		s.setCurrent(p)
		return p, nil
	case KindUser:
		p := UserPrincipal{UserID: subject}
		s.setCurrent(p)
		if _, err := s.ResolveCurrent(ctx); err != nil {
			return nil, err
		}
		s.logger.Info(ctx, "session resumed", "user", subject)
		return p, nil
	}

	_ = s.keeper.Clear(ctx)
	return nil, fmt.Errorf("%w: unknown session kind %q", common.ErrAuth, kind)
}
