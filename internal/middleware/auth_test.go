package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/seatsurge/ticketd/internal/domain"
	"github.com/seatsurge/ticketd/internal/dto"
)

// stubAuthService validates a single known token
type stubAuthService struct {
	token  string
	claims *domain.Claims
}

func (s *stubAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	return nil, nil
}

func (s *stubAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	return nil, nil
}

func (s *stubAuthService) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	if token != s.token {
		return nil, domain.ErrInvalidToken
	}
	return s.claims, nil
}

func setupRouter(authService *stubAuthService, roles ...domain.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handlers := []gin.HandlerFunc{Auth(authService)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})

	router.GET("/protected", handlers...)
	return router
}

func doRequest(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestAuth(t *testing.T) {
	authService := &stubAuthService{
		token:  "valid-token",
		claims: &domain.Claims{UserID: "user-1", Email: "jane@example.com", Role: domain.RoleUser},
	}
	router := setupRouter(authService)

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
	}{
		{
			name:          "valid token",
			authorization: "Bearer valid-token",
			wantStatus:    http.StatusOK,
		},
		{
			name:          "missing header",
			authorization: "",
			wantStatus:    http.StatusUnauthorized,
		},
		{
			name:          "not a bearer token",
			authorization: "Basic dXNlcjpwYXNz",
			wantStatus:    http.StatusUnauthorized,
		},
		{
			name:          "invalid token",
			authorization: "Bearer bad-token",
			wantStatus:    http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(router, tt.authorization)
			if resp.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, resp.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		role       domain.Role
		allowed    []domain.Role
		wantStatus int
	}{
		{
			name:       "operator passes operator gate",
			role:       domain.RoleOperator,
			allowed:    []domain.Role{domain.RoleOperator},
			wantStatus: http.StatusOK,
		},
		{
			name:       "organizer passes organizer or operator gate",
			role:       domain.RoleOrganizer,
			allowed:    []domain.Role{domain.RoleOrganizer, domain.RoleOperator},
			wantStatus: http.StatusOK,
		},
		{
			name:       "plain user is rejected",
			role:       domain.RoleUser,
			allowed:    []domain.Role{domain.RoleOperator},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authService := &stubAuthService{
				token:  "valid-token",
				claims: &domain.Claims{UserID: "user-1", Role: tt.role},
			}
			router := setupRouter(authService, tt.allowed...)

			resp := doRequest(router, "Bearer valid-token")
			if resp.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, resp.Code)
			}
		})
	}
}
