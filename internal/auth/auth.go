// Package auth implements user registration, password login and the
// session tokens that guard the screens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/cache"
	"fintrack/internal/log"
)

// User-visible failure messages. No other auth detail reaches the page.
const (
	LoginFailedMessage        = "Login failed. Please check your credentials."
	RegistrationFailedMessage = "Registration failed. Please try again."
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUserExists     = errors.New("user already exists")
	ErrBadCredentials = errors.New("invalid credentials")
	ErrInactiveUser   = errors.New("user is inactive")
	ErrInvalidProfile = errors.New("invalid registration profile")
)

// User is a registered account.
type User struct {
	ID             int64
	Email          string
	Username       string
	FullName       string
	HashedPassword string
	Active         bool
	CreatedAt      time.Time
}

// Profile is the registration form.
type Profile struct {
	Email    string
	Username string
	FullName string
	Password string
}

// Identity is what a live session token resolves to.
type Identity struct {
	Token    string
	UserID   int64
	Email    string
	Username string
	FullName string
	IssuedAt time.Time
}

// UserStore persists accounts. Implementations return ErrUserNotFound and
// ErrUserExists.
type UserStore interface {
	CreateUser(ctx context.Context, u User) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
}

// Session is the authentication collaborator consumed by the router.
// Failures are reported only as a false outcome.
type Session interface {
	Login(ctx context.Context, email, password string) (token string, ok bool)
	Register(ctx context.Context, p Profile) bool
	Logout(token string)
	Authenticated(token string) bool
	Identity(token string) (Identity, bool)
}

// Options tunes the Service.
type Options struct {
	SessionTTL  time.Duration
	MaxSessions int
	Timeout     time.Duration
	HashCost    int
	Clock       func() time.Time
	// OnExpire runs when a session is dropped by TTL or capacity.
	OnExpire func(token string)
}

func (o *Options) defaults() {
	if o.SessionTTL <= 0 {
		o.SessionTTL = 12 * time.Hour
	}
	if o.MaxSessions <= 0 {
		o.MaxSessions = 1000
	}
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	if o.HashCost == 0 {
		o.HashCost = bcrypt.DefaultCost
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
}

// Service is the concrete Session backed by a UserStore and a TTL cache of
// tokens.
type Service struct {
	users    UserStore
	sessions *cache.LRUCache[Identity]
	opts     Options
	logger   *log.Logger
}

var _ Session = (*Service)(nil)

// NewService creates an auth service.
func NewService(users UserStore, logger *log.Logger, opts Options) *Service {
	opts.defaults()
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	cacheOpts := []cache.Option[Identity]{cache.WithClock[Identity](opts.Clock)}
	if opts.OnExpire != nil {
		onExpire := opts.OnExpire
		cacheOpts = append(cacheOpts, cache.WithEvictHook(func(token string, _ Identity) { onExpire(token) }))
	}
	return &Service{
		users:    users,
		sessions: cache.NewLRUCache[Identity](opts.MaxSessions, opts.SessionTTL, cacheOpts...),
		opts:     opts,
		logger:   logger.WithComponent(log.ComponentAuth),
	}
}

// Sessions exposes the token cache so it can join the periodic sweep.
func (s *Service) Sessions() cache.Cleaner {
	return s.sessions
}

// ActiveSessions returns the number of live tokens.
func (s *Service) ActiveSessions() int {
	return s.sessions.Size()
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, bool) {
	id, err := s.authenticate(ctx, email, password)
	if err != nil {
		s.logger.WarnContext(ctx, "Login failed",
			log.FieldUser, normalizeEmail(email),
			log.FieldError, err.Error(),
			"error_type", errorType(err))
		return "", false
	}
	s.sessions.Set(id.Token, id)
	s.logger.InfoContext(ctx, "Login succeeded", log.FieldUser, id.Email)
	return id.Token, true
}

func (s *Service) authenticate(ctx context.Context, email, password string) (Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	u, err := s.users.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Identity{}, ErrBadCredentials
		}
		return Identity{}, err
	}
	if !u.Active {
		return Identity{}, ErrInactiveUser
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)); err != nil {
		return Identity{}, ErrBadCredentials
	}
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	return Identity{
		Token:    uuid.NewString(),
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
		FullName: u.FullName,
		IssuedAt: s.opts.Clock(),
	}, nil
}

// Register creates an account. It does not log the user in.
func (s *Service) Register(ctx context.Context, p Profile) bool {
	if err := s.register(ctx, p); err != nil {
		s.logger.WarnContext(ctx, "Registration failed",
			log.FieldUser, normalizeEmail(p.Email),
			log.FieldError, err.Error(),
			"error_type", errorType(err))
		return false
	}
	s.logger.InfoContext(ctx, "User registered", log.FieldUser, normalizeEmail(p.Email))
	return true
}

func (s *Service) register(ctx context.Context, p Profile) error {
	p.Email = normalizeEmail(p.Email)
	p.Username = strings.TrimSpace(p.Username)
	p.FullName = strings.TrimSpace(p.FullName)
	if err := p.Validate(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), s.opts.HashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	_, err = s.users.CreateUser(ctx, User{
		Email:          p.Email,
		Username:       p.Username,
		FullName:       p.FullName,
		HashedPassword: string(hash),
		Active:         true,
		CreatedAt:      s.opts.Clock().UTC(),
	})
	return err
}

// Logout drops the token. Unknown tokens are ignored.
func (s *Service) Logout(token string) {
	if token == "" {
		return
	}
	s.sessions.Delete(token)
}

// Authenticated reports whether token belongs to a live session.
func (s *Service) Authenticated(token string) bool {
	_, ok := s.Identity(token)
	return ok
}

// Identity resolves a live token and extends its expiry.
func (s *Service) Identity(token string) (Identity, bool) {
	if token == "" {
		return Identity{}, false
	}
	id, ok := s.sessions.Get(token)
	if ok {
		s.sessions.Touch(token)
	}
	return id, ok
}

// Validate checks the registration form.
func (p Profile) Validate() error {
	if _, err := mail.ParseAddress(p.Email); err != nil || !strings.Contains(p.Email, "@") {
		return fmt.Errorf("%w: email", ErrInvalidProfile)
	}
	if strings.TrimSpace(p.Username) == "" {
		return fmt.Errorf("%w: username", ErrInvalidProfile)
	}
	if len(p.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidProfile)
	}
	if len(p.Password) > 72 {
		return fmt.Errorf("%w: password must be at most 72 bytes", ErrInvalidProfile)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return log.ErrorTypeTimeout
	case errors.Is(err, ErrInvalidProfile):
		return log.ErrorTypeValidation
	case errors.Is(err, ErrBadCredentials), errors.Is(err, ErrInactiveUser), errors.Is(err, ErrUserExists):
		return log.ErrorTypeAuth
	default:
		return log.ErrorTypeInternal
	}
}
