// Package auth implements passwordless sign-in: one-time magic links sent
// by email, exchanged for an HS256 session token kept in a cookie.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"pasta-logger/internal/config"
	pastamail "pasta-logger/internal/mail"
	"pasta-logger/internal/model"
	"pasta-logger/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const tokenBytes = 32

// Service defines sign-in operations.
type Service interface {
	// RequestMagicLink mails a one-time sign-in link to email.
	RequestMagicLink(ctx context.Context, email string) error

	// VerifyMagicLink consumes a link token and starts a session.
	VerifyMagicLink(ctx context.Context, token string) (*model.Session, error)

	// Authenticate resolves a session token to its user. Bad tokens and
	// users that no longer exist give ErrUnauthenticated.
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// sessionClaims are the claims of a session token.
type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type service struct {
	users   repository.UserRepository
	links   repository.MagicLinkRepository
	mailer  pastamail.Mailer
	cfg     config.AuthConfig
	baseURL string
	now     func() time.Time
	logger  zerolog.Logger
}

// NewService creates the sign-in service.
func NewService(
	users repository.UserRepository,
	links repository.MagicLinkRepository,
	mailer pastamail.Mailer,
	cfg config.AuthConfig,
	baseURL string,
	logger zerolog.Logger,
) Service {
	return &service{
		users:   users,
		links:   links,
		mailer:  mailer,
		cfg:     cfg,
		baseURL: baseURL,
		now:     time.Now,
		logger:  logger.With().Str("service", "auth").Logger(),
	}
}

// NormaliseEmail validates a bare email address and lower-cases it.
func NormaliseEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", model.ErrInvalidEmail
	}
	return strings.ToLower(email), nil
}

// HashToken returns the stored form of a magic link token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *service) RequestMagicLink(ctx context.Context, email string) error {
	email, err := NormaliseEmail(email)
	if err != nil {
		return err
	}

	token, err := newToken()
	if err != nil {
		return err
	}

	now := s.now()
	link := &model.MagicLink{
		TokenHash: HashToken(token),
		Email:     email,
		ExpiresAt: now.Add(s.cfg.MagicLinkTTL),
		CreatedAt: now,
	}
	if err := s.links.Create(ctx, link); err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("failed to store magic link")
		return fmt.Errorf("failed to store magic link: %w", err)
	}

	callback := s.baseURL + "/auth/callback?token=" + url.QueryEscape(token)
	body := fmt.Sprintf(
		"Open this link to sign in to Pasta Logger:\n\n%s\n\nThe link expires in %s and can be used once.",
		callback, s.cfg.MagicLinkTTL,
	)
	if err := s.mailer.Send(ctx, email, "Your Pasta Logger sign-in link", body); err != nil {
		return fmt.Errorf("failed to send magic link: %w", err)
	}

	s.logger.Info().Str("email", email).Msg("magic link sent")
	return nil
}

func (s *service) VerifyMagicLink(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, model.ErrInvalidMagicLink
	}

	now := s.now()
	link, err := s.links.Consume(ctx, HashToken(token), now)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to consume magic link")
		return nil, fmt.Errorf("failed to consume magic link: %w", err)
	}
	if link == nil {
		s.logger.Warn().Msg("unknown, used or expired magic link")
		return nil, model.ErrInvalidMagicLink
	}

	user, err := s.users.UpsertByEmail(ctx, link.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("email", link.Email).Msg("failed to upsert user")
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	expires := now.Add(s.cfg.SessionTTL)
	claims := sessionClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user signed in")

	return &model.Session{User: *user, Token: signed, ExpiresAt: expires}, nil
}

func (s *service) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, model.ErrUnauthenticated
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if !errors.Is(err, jwt.ErrTokenExpired) {
			s.logger.Warn().Err(err).Msg("rejected session token")
		}
		return nil, model.ErrUnauthenticated
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, model.ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to load session user")
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	if user == nil {
		s.logger.Warn().Str("user_id", id.String()).Msg("session user no longer exists")
		return nil, model.ErrUnauthenticated
	}

	return user, nil
}
