package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/canvasstrack/voterroll/internal/clock"
	"github.com/canvasstrack/voterroll/internal/logging"
	"github.com/canvasstrack/voterroll/rolldb"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrMissingUsername    = errors.New("username is required")
)

const MinPasswordLength = 6

// HashPassword hashes password with bcrypt at cost, or bcrypt.DefaultCost
// when cost is zero.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

type Service struct {
	db     *rolldb.Client
	tokens *TokenIssuer
	cost   int
	clock  clock.Clock
	logger *slog.Logger

	// compared against when the username is unknown so both paths cost a
	// bcrypt comparison
	dummyHash []byte
}

func NewService(db *rolldb.Client, tokens *TokenIssuer, bcryptCost int, c clock.Clock, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dummy, err := HashPassword(uuid.NewString(), bcryptCost)
	if err != nil {
		return nil, err
	}
	return &Service{
		db:        db,
		tokens:    tokens,
		cost:      bcryptCost,
		clock:     c,
		logger:    logger.With(slog.String("component", "auth")),
		dummyHash: []byte(dummy),
	}, nil
}

func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}

type LoginResult struct {
	User      rolldb.User
	Token     string
	ExpiresAt int64 // unix millis
}

// Login checks the credentials and issues a token.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var user rolldb.User
	err := s.db.WithConn(ctx, func(q *rolldb.Queries) error {
		var err error
		user, err = q.GetUserByUsername(ctx, strings.TrimSpace(username))
		return err
	})
	if errors.Is(err, rolldb.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return LoginResult{}, err
	}

	logging.LogOperation(s.logger, "user_logged_in", slog.String("user_id", user.ID))
	return LoginResult{User: user, Token: token, ExpiresAt: expires.UnixMilli()}, nil
}

type NewUser struct {
	Username    string
	DisplayName string
	Password    string
	IsAdmin     bool
}

func (s *Service) CreateUser(ctx context.Context, in NewUser) (rolldb.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return rolldb.User{}, ErrMissingUsername
	}
	if len(in.Password) < MinPasswordLength {
		return rolldb.User{}, ErrWeakPassword
	}
	display := strings.TrimSpace(in.DisplayName)
	if display == "" {
		display = username
	}

	hash, err := HashPassword(in.Password, s.cost)
	if err != nil {
		return rolldb.User{}, err
	}

	var user rolldb.User
	err = s.db.WithConn(ctx, func(q *rolldb.Queries) error {
		var err error
		user, err = q.CreateUser(ctx, rolldb.CreateUserParams{
			ID:           uuid.NewString(),
			Username:     username,
			DisplayName:  display,
			PasswordHash: hash,
			IsAdmin:      in.IsAdmin,
			CreatedAt:    s.clock.NowUnixMilli(),
		})
		return err
	})
	if errors.Is(err, rolldb.ErrDuplicate) {
		return rolldb.User{}, ErrUsernameTaken
	}
	if err != nil {
		return rolldb.User{}, err
	}

	logging.LogOperation(s.logger, "user_created",
		slog.String("user_id", user.ID),
		slog.Bool("is_admin", user.IsAdmin))
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]rolldb.User, error) {
	var users []rolldb.User
	err := s.db.WithConn(ctx, func(q *rolldb.Queries) error {
		var err error
		users, err = q.ListUsers(ctx)
		return err
	})
	return users, err
}

func (s *Service) SetPassword(ctx context.Context, userID, password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return err
	}
	err = s.db.WithConn(ctx, func(q *rolldb.Queries) error {
		return q.UpdateUserPassword(ctx, userID, hash)
	})
	if errors.Is(err, rolldb.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	err := s.db.WithConn(ctx, func(q *rolldb.Queries) error {
		return q.DeleteUser(ctx, userID)
	})
	if errors.Is(err, rolldb.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	logging.LogOperation(s.logger, "user_deleted", slog.String("user_id", userID))
	return nil
}
