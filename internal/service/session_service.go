package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/studyboard-api/internal/dto"
	"github.com/noah-isme/studyboard-api/internal/models"
	"github.com/noah-isme/studyboard-api/internal/viewmodel"
)

// SessionService issues bearer tokens for users picked from the roster.
type SessionService interface {
	Issue(ctx context.Context, payload dto.SessionRequest) (dto.SessionResponse, error)
}

type sessionService struct {
	directory DirectoryService
	secret    []byte
	ttl       time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewSessionService constructs the session issuer.
func NewSessionService(directory DirectoryService, secret string, ttl time.Duration, validate *validator.Validate, logger zerolog.Logger) SessionService {
	return &sessionService{
		directory: directory,
		secret:    []byte(secret),
		ttl:       ttl,
		validator: validate,
		logger:    logger.With().Str("component", "session_service").Logger(),
		now:       time.Now,
	}
}

func (s *sessionService) Issue(ctx context.Context, payload dto.SessionRequest) (dto.SessionResponse, error) {
	if !models.UserType(payload.UserType).Valid() {
		return dto.SessionResponse{}, ErrInvalidUserType
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.SessionResponse{}, err
	}

	user, err := s.directory.Lookup(ctx, viewmodel.Participant{ID: payload.UserID, Type: models.UserType(payload.UserType)})
	if err != nil {
		return dto.SessionResponse{}, err
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"role": user.Type,
		"name": user.Name,
		"iat":  issuedAt.Unix(),
		"exp":  expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to sign session token")
		return dto.SessionResponse{}, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Type).Msg("session issued")

	return dto.SessionResponse{
		Token:     signed,
		ExpiresAt: expiresAt.UTC(),
		User:      user,
	}, nil
}
