package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/seatsurge/ticketd/internal/domain"
	"github.com/seatsurge/ticketd/internal/dto"
	"github.com/seatsurge/ticketd/internal/repository"
	"github.com/seatsurge/ticketd/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"
)

// AuthService defines the interface for authentication
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
}

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
	BcryptCost  int
}

// authService implements AuthService
type authService struct {
	userRepo    repository.UserRepository
	jwtSecret   []byte
	tokenExpiry time.Duration
	bcryptCost  int
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, cfg *AuthServiceConfig) AuthService {
	expiry := 24 * time.Hour
	cost := bcrypt.DefaultCost
	secret := ""
	if cfg != nil {
		if cfg.TokenExpiry > 0 {
			expiry = cfg.TokenExpiry
		}
		if cfg.BcryptCost > 0 {
			cost = cfg.BcryptCost
		}
		secret = cfg.JWTSecret
	}
	return &authService{
		userRepo:    userRepo,
		jwtSecret:   []byte(secret),
		tokenExpiry: expiry,
		bcryptCost:  cost,
	}
}

// Register creates a user account and issues a token
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.register")
	defer span.End()

	span.SetAttributes(attribute.String("email", req.Email))

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if exists {
		span.SetStatus(codes.Error, "user already exists")
		return nil, domain.ErrUserAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: string(hashed),
		Name:         req.Name,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	resp, err := s.issueToken(user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// Login authenticates a user and issues a token
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	span.SetAttributes(attribute.String("email", req.Email))

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			span.SetStatus(codes.Error, "invalid credentials")
			return nil, domain.ErrInvalidCredentials
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, domain.ErrInvalidCredentials
	}

	resp, err := s.issueToken(user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// ValidateToken parses and validates an access token
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*domain.Claims, error) {
	_, span := telemetry.StartSpan(ctx, "service.auth.validate_token")
	defer span.End()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		span.SetStatus(codes.Error, "invalid token")
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		span.SetStatus(codes.Error, "invalid claims")
		return nil, domain.ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || !domain.Role(role).IsValid() {
		span.SetStatus(codes.Error, "invalid claims")
		return nil, domain.ErrInvalidToken
	}

	span.SetAttributes(attribute.String("user_id", userID))
	span.SetStatus(codes.Ok, "")
	return &domain.Claims{
		UserID: userID,
		Email:  email,
		Role:   domain.Role(role),
	}, nil
}

func (s *authService) issueToken(user *domain.User) (*dto.AuthResponse, error) {
	expiresAt := time.Now().Add(s.tokenExpiry)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     user.ID,
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     expiresAt.Unix(),
		"iat":     time.Now().Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User: dto.UserResponse{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  string(user.Role),
		},
	}, nil
}
