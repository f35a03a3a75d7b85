package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"auth-api/internal/domain/models"
	"auth-api/internal/lib/jwt"
	"auth-api/internal/lib/logger/sl"
	"auth-api/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// PasswordCost is the bcrypt work factor for every stored hash.
	PasswordCost = 10

	MinPasswordLength = 8

	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

var (
	ErrMissingFields      = errors.New("username, email and password are required")
	ErrMissingCredentials = errors.New("credential and password are required")
	ErrInvalidDOB         = errors.New("invalid date of birth")
	ErrEmailTaken         = errors.New("email already in use")
	ErrUsernameTaken      = errors.New("username already in use")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrIncorrectPassword  = errors.New("incorrect password")

	ErrNothingToUpdate      = errors.New("no fields to update")
	ErrPasswordPairRequired = errors.New("both current and new passwords are required")
	ErrWrongCurrentPassword = errors.New("current password is incorrect")
	ErrPasswordTooShort     = errors.New("new password is too short")
	ErrPasswordTooLong      = errors.New("password is too long")
)

// dobLayouts are tried in order when parsing a date of birth.
var dobLayouts = []string{"2006-01-02", time.RFC3339}

type Storage interface {
	SaveUser(ctx context.Context, user models.User) error
	UserByID(ctx context.Context, id string) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByUsername(ctx context.Context, username string) (models.User, error)
	UpdateUser(ctx context.Context, user models.User) error
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Name     string
	Location string
	Picture  string
	DOB      string
}

// UpdateInput carries a profile edit. Empty strings mean "not provided".
type UpdateInput struct {
	Name            string
	Location        string
	Picture         string
	DOB             string
	CurrentPassword string
	NewPassword     string
}

func (in UpdateInput) empty() bool {
	return in.Name == "" && in.Location == "" && in.Picture == "" && in.DOB == "" &&
		in.CurrentPassword == "" && in.NewPassword == ""
}

type Service struct {
	log     *slog.Logger
	storage Storage
	secret  []byte
	now     func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now for token issuance and account timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(log *slog.Logger, storage Storage, secret []byte, opts ...Option) *Service {
	s := &Service{
		log:     log,
		storage: storage,
		secret:  secret,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// IsEmail reports whether a login credential should be matched against emails.
func IsEmail(credential string) bool {
	return strings.Contains(credential, "@")
}

// Register creates a user and returns it with a freshly issued token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, string, error) {
	const op = "service.user.Register"

	log := s.log.With(slog.String("op", op))

	if in.Username == "" || in.Email == "" || in.Password == "" {
		log.Warn("missing required fields")
		return models.User{}, "", ErrMissingFields
	}

	dob, err := parseDOB(in.DOB)
	if err != nil {
		log.Warn("invalid date of birth", slog.String("dob", in.DOB))
		return models.User{}, "", err
	}

	if err := s.ensureAvailable(ctx, in.Email, in.Username); err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrUsernameTaken) {
			log.Warn("user already exists", sl.Error(err))
			return models.User{}, "", err
		}
		log.Error("failed to check user availability", sl.Error(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	passHash, err := hashPassword(in.Password)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			log.Warn("password too long")
			return models.User{}, "", err
		}
		log.Error("failed to generate hash from password", sl.Error(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		ID:             uuid.NewString(),
		Username:       in.Username,
		Email:          in.Email,
		PassHash:       passHash,
		Name:           in.Name,
		Location:       in.Location,
		Picture:        in.Picture,
		DOB:            dob,
		AccountCreated: s.now().UTC(),
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists", sl.Error(err))
			return models.User{}, "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		log.Error("failed to save user", sl.Error(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.newToken(user.ID)
	if err != nil {
		log.Error("failed to create new token", sl.Error(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.String("username", user.Username))

	return user, token, nil
}

// Login resolves credential as an email when it contains "@", as a username otherwise.
func (s *Service) Login(ctx context.Context, credential, password string) (models.User, string, error) {
	const op = "service.user.Login"

	log := s.log.With(slog.String("op", op))

	if credential == "" || password == "" {
		log.Warn("missing credential or password")
		return models.User{}, "", ErrMissingCredentials
	}

	var (
		user models.User
		err  error
	)
	if IsEmail(credential) {
		user, err = s.storage.UserByEmail(ctx, credential)
	} else {
		user, err = s.storage.UserByUsername(ctx, credential)
	}
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", slog.String("credential", credential))
			return models.User{}, "", fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		log.Error("failed to get user", sl.Error(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Warn("incorrect password", slog.String("username", user.Username))
		return models.User{}, "", fmt.Errorf("%s: %w", op, ErrIncorrectPassword)
	}

	token, err := s.newToken(user.ID)
	if err != nil {
		log.Error("failed to create new token", sl.Error(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in", slog.String("username", user.Username))

	return user, token, nil
}

// Profile returns the current stored record for id.
func (s *Service) Profile(ctx context.Context, id string) (models.User, error) {
	const op = "service.user.Profile"

	log := s.log.With(slog.String("op", op))

	user, err := s.userByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Warn("user not found", slog.String("id", id))
		} else {
			log.Error("failed to get user", sl.Error(err))
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpdateProfile applies in to the user and persists the result once.
// Nothing is written when any check fails.
func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateInput) (models.User, error) {
	const op = "service.user.UpdateProfile"

	log := s.log.With(slog.String("op", op))

	if in.empty() {
		log.Warn("no fields provided for update")
		return models.User{}, ErrNothingToUpdate
	}

	dob, err := parseDOB(in.DOB)
	if err != nil {
		log.Warn("invalid date of birth", slog.String("dob", in.DOB))
		return models.User{}, err
	}

	user, err := s.userByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Warn("user not found", slog.String("id", id))
		} else {
			log.Error("failed to get user", sl.Error(err))
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if in.CurrentPassword != "" || in.NewPassword != "" {
		passHash, err := s.changePassword(user.PassHash, in.CurrentPassword, in.NewPassword)
		if err != nil {
			if isRejection(err) {
				log.Warn("password change rejected", sl.Error(err))
			} else {
				log.Error("failed to change password", sl.Error(err))
			}
			return models.User{}, fmt.Errorf("%s: %w", op, err)
		}
		user.PassHash = passHash
	}

	if in.Name != "" {
		user.Name = in.Name
	}
	if in.Location != "" {
		user.Location = in.Location
	}
	if in.Picture != "" {
		user.Picture = in.Picture
	}
	if dob != nil {
		user.DOB = dob
	}

	if err := s.storage.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Error("user disappeared before update", sl.Error(err))
			return models.User{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		log.Error("failed to update user", sl.Error(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("profile updated", slog.String("username", user.Username))

	return user, nil
}

func (s *Service) changePassword(passHash []byte, current, next string) ([]byte, error) {
	if current == "" || next == "" {
		return nil, ErrPasswordPairRequired
	}

	if err := bcrypt.CompareHashAndPassword(passHash, []byte(current)); err != nil {
		return nil, ErrWrongCurrentPassword
	}

	if utf8.RuneCountInString(next) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	return hashPassword(next)
}

func hashPassword(password string) ([]byte, error) {
	passHash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}

	return passHash, err
}

func isRejection(err error) bool {
	return errors.Is(err, ErrPasswordPairRequired) || errors.Is(err, ErrWrongCurrentPassword) ||
		errors.Is(err, ErrPasswordTooShort) || errors.Is(err, ErrPasswordTooLong)
}

func (s *Service) ensureAvailable(ctx context.Context, email, username string) error {
	_, err := s.storage.UserByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrEmailTaken
	case !errors.Is(err, storage.ErrUserNotFound):
		return err
	}

	_, err = s.storage.UserByUsername(ctx, username)
	switch {
	case err == nil:
		return ErrUsernameTaken
	case !errors.Is(err, storage.ErrUserNotFound):
		return err
	}

	return nil
}

func (s *Service) userByID(ctx context.Context, id string) (models.User, error) {
	user, err := s.storage.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	return user, nil
}

func (s *Service) newToken(userID string) (string, error) {
	return jwt.NewToken(userID, s.secret, s.now())
}

func parseDOB(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}

	return nil, ErrInvalidDOB
}
