package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/proctorly/exam-api/internal/dto"
	"github.com/proctorly/exam-api/internal/repository"
)

// TokenService signs students in by their external identifier and keeps the
// resulting sessions revocable. Tokens are JWTs; each carries a session id
// that must still exist in the session store, so logout takes effect
// immediately despite the token's own lifetime.
type TokenService interface {
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error
	SessionExists(ctx context.Context, sessionID string) (bool, error)
}

type tokenService struct {
	students  repository.StudentRepository
	sessions  *redis.Client
	secret    string
	ttl       time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewTokenService constructs a TokenService instance.
func NewTokenService(students repository.StudentRepository, sessions *redis.Client, secret string, ttl time.Duration, validate *validator.Validate, logger zerolog.Logger) TokenService {
	return &tokenService{
		students:  students,
		sessions:  sessions,
		secret:    secret,
		ttl:       ttl,
		validator: validate,
		logger:    logger.With().Str("component", "token_service").Logger(),
		now:       time.Now,
	}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

func (s *tokenService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	identifier := strings.ToUpper(strings.TrimSpace(payload.StudentID))

	student, err := s.students.GetByStudentID(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrStudentNotFound
		}
		return dto.LoginResponse{}, err
	}

	// Deactivated students get the same answer as unknown ones.
	if !student.Active {
		return dto.LoginResponse{}, ErrStudentNotFound
	}

	sessionID := uuid.NewString()
	now := s.now()

	claims := jwt.MapClaims{
		"sub": fmt.Sprintf("%d", student.ID),
		"sid": student.StudentID,
		"jti": sessionID,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return dto.LoginResponse{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	if err := s.sessions.Set(ctx, sessionKey(sessionID), student.ID, s.ttl).Err(); err != nil {
		return dto.LoginResponse{}, fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Info().Uint("student_id", student.ID).Msg("student logged in")

	return dto.LoginResponse{
		Token:   token,
		Student: dto.NewStudentResponse(student),
	}, nil
}

func (s *tokenService) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrSessionInvalid
	}

	deleted, err := s.sessions.Del(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrSessionInvalid
	}

	return nil
}

func (s *tokenService) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	if strings.TrimSpace(sessionID) == "" {
		return false, nil
	}

	if err := s.sessions.Get(ctx, sessionKey(sessionID)).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
