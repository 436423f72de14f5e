package user

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/roastline/storefront/cmd/config"
	"github.com/roastline/storefront/constant"
	"github.com/roastline/storefront/model"
	userrepo "github.com/roastline/storefront/repository/user"
	"github.com/roastline/storefront/utils/errors"
	"github.com/roastline/storefront/utils/logger"
	"go.uber.org/zap"
)

// AuthIdentity is the session identity read from the external auth provider's
// token. Authentication itself happens elsewhere; this app only verifies and
// reads the result.
type AuthIdentity struct {
	UserID string
	Email  string
	Role   string
}

type UserApp interface {
	ValidateToken(ctx context.Context, tokenString string) (*AuthIdentity, error)
	GetProfile(ctx context.Context, userID string) (*model.UserProfile, error)
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

type UserAppImpl struct {
	config   *config.Config
	userRepo userrepo.UserRepository
}

func NewUserApp(config *config.Config, userRepo userrepo.UserRepository) UserApp {
	return &UserAppImpl{
		config:   config,
		userRepo: userRepo,
	}
}

func (s *UserAppImpl) ValidateToken(ctx context.Context, tokenString string) (*AuthIdentity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Auth.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid claims")
	}

	return &AuthIdentity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

func (s *UserAppImpl) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		logger.Error("[GetProfile] err userRepo.GetProfile", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	if profile == nil {
		return nil, errors.SetCustomError(constant.ErrNotFound)
	}
	return profile, nil
}
