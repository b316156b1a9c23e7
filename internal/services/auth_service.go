package services

import (
	"errors"
	"strings"
	"time"

	"leder/internal/domain"
	"leder/internal/repos"
	"leder/internal/validate"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	Users      *repos.UserRepo
	SessionTTL time.Duration
	Cost       int // bcrypt cost; tests use bcrypt.MinCost
}

func NewAuthService(users *repos.UserRepo, ttl time.Duration) *AuthService {
	return &AuthService{Users: users, SessionTTL: ttl, Cost: bcrypt.DefaultCost}
}

type Registration struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	MiddleName string `json:"middleName"`
	Phone      string `json:"phone"`
}

// ProfilePatch holds optional profile changes. Nil fields are left as they are.
type ProfilePatch struct {
	FirstName    *string         `json:"firstName"`
	LastName     *string         `json:"lastName"`
	MiddleName   *string         `json:"middleName"`
	Phone        *string         `json:"phone"`
	Avatar       *string         `json:"avatar"`
	SavedAddress *domain.Address `json:"savedAddress"`
	Password     *string         `json:"password"`
	Role         *string         `json:"role"` // admin edits only
}

func (s *AuthService) hash(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), s.Cost)
	return string(b), err
}

func (s *AuthService) Register(in Registration) (*domain.User, error) {
	email, ok := validate.Email(in.Email)
	if !ok {
		return nil, invalid(ErrInvalidInput, "Invalid email")
	}
	if !validate.Password(in.Password) {
		return nil, invalid(ErrInvalidInput, "Password must be 6-72 characters")
	}
	h, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Email:      email,
		Hash:       h,
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		MiddleName: strings.TrimSpace(in.MiddleName),
		Phone:      strings.TrimSpace(in.Phone),
		Role:       domain.RoleCustomer,
	}
	if err := s.Users.Create(u); err != nil {
		if errors.Is(err, repos.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return u, nil
}

// Login checks credentials and opens a server-side session.
func (s *AuthService) Login(email, password string) (*domain.User, string, error) {
	email, ok := validate.Email(email)
	if !ok {
		return nil, "", ErrBadCreds
	}
	u, err := s.Users.ByEmail(email)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, "", ErrBadCreds
	}
	if err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, "", ErrBadCreds
	}
	sid, err := s.Users.CreateSession(u.ID, s.SessionTTL)
	if err != nil {
		return nil, "", err
	}
	return u, sid, nil
}

func (s *AuthService) Logout(sid string) error {
	if sid == "" {
		return nil
	}
	return s.Users.DeleteSession(sid)
}

// CurrentUser resolves a session id. Missing, unknown and expired sessions
// all return ErrUnauthenticated.
func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	if sid == "" {
		return nil, ErrUnauthenticated
	}
	u, err := s.Users.SessionUser(sid)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	return u, err
}

func (s *AuthService) applyPatch(u *domain.User, p ProfilePatch, admin bool) error {
	if p.FirstName != nil {
		u.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		u.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.MiddleName != nil {
		u.MiddleName = strings.TrimSpace(*p.MiddleName)
	}
	if p.Phone != nil {
		u.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Avatar != nil {
		u.Avatar = strings.TrimSpace(*p.Avatar)
	}
	if p.SavedAddress != nil {
		a := *p.SavedAddress
		u.SavedAddress = &a
	}
	if p.Password != nil {
		if !validate.Password(*p.Password) {
			return invalid(ErrInvalidInput, "Password must be 6-72 characters")
		}
		h, err := s.hash(*p.Password)
		if err != nil {
			return err
		}
		u.Hash = h
	}
	if p.Role != nil {
		if !admin {
			return ErrForbidden
		}
		if *p.Role != domain.RoleCustomer && *p.Role != domain.RoleAdmin {
			return invalid(ErrInvalidInput, "Unknown role")
		}
		u.Role = *p.Role
	}
	return nil
}

// UpdateProfile applies a self-service edit. Role changes are refused.
func (s *AuthService) UpdateProfile(userID string, p ProfilePatch) (*domain.User, error) {
	return s.update(userID, p, false)
}

func (s *AuthService) update(userID string, p ProfilePatch, admin bool) (*domain.User, error) {
	u, err := s.Users.ByID(userID)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.applyPatch(u, p, admin); err != nil {
		return nil, err
	}
	if err := s.Users.Update(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) ListUsers() ([]domain.User, error) { return s.Users.List() }

func (s *AuthService) GetUser(id string) (*domain.User, error) {
	u, err := s.Users.ByID(id)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, ErrNotFound
	}
	return u, err
}

// UpdateUser is the admin edit; it may change the role.
func (s *AuthService) UpdateUser(id string, p ProfilePatch) (*domain.User, error) {
	return s.update(id, p, true)
}

// ProvisionAdmin creates the admin account if the e-mail is free. It reports
// whether a user was created.
func (s *AuthService) ProvisionAdmin(email, password string) (bool, error) {
	email, ok := validate.Email(email)
	if !ok {
		return false, invalid(ErrInvalidInput, "Invalid admin email")
	}
	if _, err := s.Users.ByEmail(email); err == nil {
		return false, nil
	} else if !errors.Is(err, repos.ErrNotFound) {
		return false, err
	}
	if !validate.Password(password) {
		return false, invalid(ErrInvalidInput, "Admin password must be 6-72 characters")
	}
	h, err := s.hash(password)
	if err != nil {
		return false, err
	}
	u := &domain.User{Email: email, Hash: h, FirstName: "Admin", Role: domain.RoleAdmin}
	if err := s.Users.Create(u); err != nil {
		if errors.Is(err, repos.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
