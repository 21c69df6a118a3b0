package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"huddle/internal/core/domain"
	"huddle/internal/core/ports"
	"huddle/pkg/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

type Claims struct {
	UID         domain.UserID `json:"uid"`
	DisplayName string        `json:"display_name"`
	jwt.RegisteredClaims
}

type sessionService struct {
	ids      ports.IdentityStore
	records  ports.DirectoryRecordStore
	secret   []byte
	tokenTTL time.Duration
	// defaultAvatarURL seeds new accounts before their first avatar
	// commit.
	defaultAvatarURL string
	logger           *zap.SugaredLogger
}

func NewSessionService(
	ids ports.IdentityStore,
	records ports.DirectoryRecordStore,
	secret string,
	tokenTTL time.Duration,
	defaultAvatarURL string,
	logger *zap.SugaredLogger,
) ports.SessionService {
	return &sessionService{
		ids:              ids,
		records:          records,
		secret:           []byte(secret),
		tokenTTL:         tokenTTL,
		defaultAvatarURL: defaultAvatarURL,
		logger:           logger,
	}
}

// Register creates the identity record and bootstraps the directory
// record for the new account, then issues a session token. The
// directory record write is best effort: the account exists once the
// identity write succeeds.
func (s *sessionService) Register(ctx context.Context, displayName, password string) (*domain.Identity, string, error) {
	if err := validation.ValidateDisplayName(displayName); err != nil {
		return nil, "", err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	identity := &domain.Identity{
		UID:         domain.UserID(uuid.New().String()),
		DisplayName: displayName,
		AvatarURL:   s.defaultAvatarURL,
	}
	if err := s.ids.Create(ctx, identity, string(hash)); err != nil {
		return nil, "", fmt.Errorf("create identity: %w", err)
	}

	record := &domain.DirectoryRecord{
		Name:      identity.DisplayName,
		AvatarURL: identity.AvatarURL,
	}
	if err := s.records.Update(ctx, identity.UID, record); err != nil {
		s.logger.Warnw("directory record bootstrap failed", "uid", identity.UID, "error", err)
	}

	token, err := s.generateToken(identity)
	if err != nil {
		return nil, "", err
	}
	s.logger.Infow("account registered", "uid", identity.UID, "display_name", displayName)
	return identity, token, nil
}

func (s *sessionService) Login(ctx context.Context, displayName, password string) (*domain.Identity, string, error) {
	identity, passwordHash, err := s.ids.GetByName(ctx, displayName)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil, "", domain.ErrBadCredentials
		}
		return nil, "", fmt.Errorf("look up identity: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrBadCredentials
	}

	token, err := s.generateToken(identity)
	if err != nil {
		return nil, "", err
	}
	return identity, token, nil
}

func (s *sessionService) ValidateToken(tokenString string) (domain.UserID, string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", ErrExpiredToken
		}
		return "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", "", ErrInvalidToken
	}
	return claims.UID, claims.DisplayName, nil
}

func (s *sessionService) generateToken(identity *domain.Identity) (string, error) {
	claims := &Claims{
		UID:         identity.UID,
		DisplayName: identity.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
