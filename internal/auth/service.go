// Package auth implements sign-in, sign-up and session handling on top of
// the session store and the user directory of one device/tab scope.
//
// A Service is built per page load: Init restores the signed-in user (if
// any), the caller performs its operations, then Teardown drops the
// in-memory state.
package auth

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/bocattovalley/bocatto-server/internal/directory"
	"github.com/bocattovalley/bocatto-server/internal/model"
	"github.com/bocattovalley/bocatto-server/internal/session"
)

// MinPasswordLength is the shortest password accepted on registration and
// password change.
const MinPasswordLength = 6

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// PasswordHasher hashes and verifies passwords. The service never compares
// raw passwords itself.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// Options configures a Service. Directory, Sessions and Hasher are required.
type Options struct {
	Directory *directory.Directory
	Sessions  *session.Store
	Hasher    PasswordHasher
	Now       func() time.Time
	Logger    *zap.Logger
}

// Service is the auth context of one scope.
type Service struct {
	dir      *directory.Directory
	sessions *session.Store
	hasher   PasswordHasher
	now      func() time.Time
	logger   *zap.Logger

	current *model.User
}

// New returns a Service that has not been initialized yet.
func New(opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		dir:      opts.Directory,
		sessions: opts.Sessions,
		hasher:   opts.Hasher,
		now:      opts.Now,
		logger:   opts.Logger.With(zap.String("component", "auth")),
	}
}

// Init seeds the directory when needed and restores the stored session.
func (s *Service) Init(ctx context.Context) {
	s.dir.Init(ctx)
	s.LoadSession(ctx)
}

// Teardown forgets the current user. Stored state is left untouched.
func (s *Service) Teardown() {
	s.current = nil
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
	Address         string
}

func (in RegisterInput) validate() error {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" ||
		strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return ErrMissingFields
	}
	if !emailPattern.MatchString(strings.TrimSpace(in.Email)) {
		return ErrInvalidEmail
	}
	if len(in.Password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if len(in.Password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	if in.Password != in.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if phone := stripSpaces(in.Phone); phone != "" && !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}

// Register validates in, adds a new client to the directory and signs it in
// with a durable session.
func (s *Service) Register(ctx context.Context, in RegisterInput) (model.SafeUser, error) {
	log := s.logger.With(zap.String("operation", "register"))
	if err := in.validate(); err != nil {
		log.Info("registration rejected", zap.String("error_kind", ErrorKind(err)))
		return model.SafeUser{}, err
	}
	if _, taken := s.dir.FindByEmail(ctx, in.Email); taken {
		log.Info("registration rejected", zap.String("error_kind", string(CodeEmailTaken)))
		return model.SafeUser{}, ErrEmailTaken
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		log.Error("hash password failed", zap.String("error_kind", ErrorKind(err)), zap.Error(err))
		return model.SafeUser{}, err
	}

	u, err := s.dir.Add(ctx, model.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        directory.Normalize(in.Email),
		PasswordHash: hash,
		Phone:        stripSpaces(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		RegisteredAt: s.now().UTC(),
		IsActive:     true,
		Profile:      model.ClientProfile{},
	})
	if err != nil {
		// the directory re-checks the email under its own read
		log.Info("registration rejected", zap.String("error_kind", string(CodeEmailTaken)))
		return model.SafeUser{}, ErrEmailTaken
	}

	s.establish(ctx, u, true)
	log.Info("user registered", zap.Int("user_id", u.ID))
	return u.Safe(), nil
}

// LoginResult is a successful sign-in: the safe projection plus the page
// the user should land on.
type LoginResult struct {
	User       model.SafeUser `json:"user"`
	RedirectTo string         `json:"redirectTo"`
}

// Login checks the credentials and starts a session, durable when
// rememberMe is set and per-tab otherwise.
func (s *Service) Login(ctx context.Context, email, password string, rememberMe bool) (LoginResult, error) {
	log := s.logger.With(zap.String("operation", "login"))
	u, ok := s.dir.FindByEmail(ctx, email)
	if !ok || !s.hasher.Verify(u.PasswordHash, password) {
		log.Info("login rejected", zap.String("error_kind", string(CodeInvalidCredentials)))
		return LoginResult{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		log.Info("login rejected", zap.String("error_kind", string(CodeAccountDeactivated)), zap.Int("user_id", u.ID))
		return LoginResult{}, ErrAccountDeactivated
	}
	s.establish(ctx, u, rememberMe)
	log.Info("user signed in", zap.Int("user_id", u.ID), zap.Bool("remember_me", rememberMe))
	return LoginResult{User: u.Safe(), RedirectTo: model.RedirectFor(u.Role())}, nil
}

// Logout clears the session from both tiers. Calling it while signed out
// is a no-op.
func (s *Service) Logout(ctx context.Context) {
	s.current = nil
	if err := s.sessions.Clear(ctx); err != nil {
		s.logger.Error("clear session failed", zap.String("operation", "logout"), zap.Error(err))
	}
}

// LoadSession restores the current user from the stored session and
// reports whether someone is signed in. Sessions older than
// session.MaxAge are cleared.
func (s *Service) LoadSession(ctx context.Context) bool {
	log := s.logger.With(zap.String("operation", "load_session"))
	s.current = nil

	rec, ok, err := s.sessions.Load(ctx)
	if err != nil {
		log.Error("read session failed", zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if rec.Expired(s.now()) {
		log.Info("session expired", zap.Int("user_id", rec.User.ID))
		s.Logout(ctx)
		return false
	}
	u, found := s.dir.FindByID(ctx, rec.User.ID)
	if !found || !u.IsActive {
		return false
	}
	s.current = &u
	return true
}

// IsAuthenticated reports whether a user is signed in.
func (s *Service) IsAuthenticated() bool { return s.current != nil }

// IsAdmin reports whether the signed-in user is an administrator.
func (s *Service) IsAdmin() bool {
	return s.current != nil && s.current.Role() == model.RoleAdministrator
}

// IsClient reports whether the signed-in user is a client.
func (s *Service) IsClient() bool {
	return s.current != nil && s.current.Role() == model.RoleClient
}

// CurrentUser returns the safe projection of the signed-in user.
func (s *Service) CurrentUser() (model.SafeUser, bool) {
	if s.current == nil {
		return model.SafeUser{}, false
	}
	return s.current.Safe(), true
}

// SafeUserData strips the password from u.
func SafeUserData(u model.User) model.SafeUser { return u.Safe() }

// ProfilePatch holds the editable profile fields. Nil fields are left as
// they are; Preferences only applies to clients.
type ProfilePatch struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Preferences *string `json:"preferences"`
}

// UpdateProfile merges patch into the signed-in user, writes the record to
// the directory and re-saves the session durably.
func (s *Service) UpdateProfile(ctx context.Context, patch ProfilePatch) (model.SafeUser, error) {
	log := s.logger.With(zap.String("operation", "update_profile"))
	if s.current == nil {
		return model.SafeUser{}, ErrNotAuthenticated
	}
	u := *s.current
	if patch.FirstName != nil {
		u.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		u.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Phone != nil {
		u.Phone = stripSpaces(*patch.Phone)
	}
	if patch.Address != nil {
		u.Address = strings.TrimSpace(*patch.Address)
	}
	switch p := u.Profile.(type) {
	case model.ClientProfile:
		if patch.Preferences != nil {
			p.Preferences = strings.TrimSpace(*patch.Preferences)
			u.Profile = p
		}
	case nil:
		if patch.Preferences != nil {
			u.Profile = model.ClientProfile{Preferences: strings.TrimSpace(*patch.Preferences)}
		}
	case model.AdministratorProfile:
		// administrators have no preferences
	}

	if err := s.dir.Update(ctx, u); err != nil {
		log.Error("write user failed", zap.Int("user_id", u.ID), zap.Error(err))
	}
	s.current = &u
	if err := s.sessions.Save(ctx, u.Safe(), true); err != nil {
		log.Error("write session failed", zap.Error(err))
	}
	return u.Safe(), nil
}

// ChangePassword replaces the password of the signed-in user after checking
// the old one.
func (s *Service) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	log := s.logger.With(zap.String("operation", "change_password"))
	if s.current == nil {
		return ErrNotAuthenticated
	}
	stored, ok := s.dir.FindByID(ctx, s.current.ID)
	if !ok {
		stored = *s.current
	}
	if !s.hasher.Verify(stored.PasswordHash, oldPassword) {
		log.Info("password change rejected", zap.String("error_kind", string(CodeWrongPassword)))
		return ErrWrongPassword
	}
	if len(newPassword) < MinPasswordLength {
		log.Info("password change rejected", zap.String("error_kind", string(CodeWeakPassword)))
		return ErrWeakPassword
	}
	if len(newPassword) > MaxPasswordBytes {
		log.Info("password change rejected", zap.String("error_kind", string(CodePasswordTooLong)))
		return ErrPasswordTooLong
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		log.Error("hash password failed", zap.Error(err))
		return err
	}
	stored.PasswordHash = hash
	if err := s.dir.Update(ctx, stored); err != nil {
		log.Error("write user failed", zap.Int("user_id", stored.ID), zap.Error(err))
	}
	s.current = &stored
	log.Info("password changed", zap.Int("user_id", stored.ID))
	return nil
}

// Guard is the page guard. It fails with ErrNotAuthenticated when nobody is
// signed in and with ErrForbidden when role is set and does not match.
func (s *Service) Guard(role model.Role) error {
	if s.current == nil {
		return ErrNotAuthenticated
	}
	if role != "" && s.current.Role() != role {
		return ErrForbidden
	}
	return nil
}

func (s *Service) establish(ctx context.Context, u model.User, rememberMe bool) {
	s.current = &u
	if err := s.sessions.Save(ctx, u.Safe(), rememberMe); err != nil {
		s.logger.Error("write session failed", zap.Int("user_id", u.ID), zap.Error(err))
	}
}

func stripSpaces(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, v)
}
