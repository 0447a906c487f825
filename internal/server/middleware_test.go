package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authdomain "github.com/fieldline/fieldline/internal/auth/domain"
	"github.com/fieldline/fieldline/internal/auth/session"
	"github.com/fieldline/fieldline/internal/config"
	customerdomain "github.com/fieldline/fieldline/internal/customer/domain"
)

type fakeAuthService struct {
	authenticateCalls int
}

func (f *fakeAuthService) CreateUser(ctx context.Context, req authdomain.CreateUserRequest) (*authdomain.User, error) {
	_ = ctx
	_ = req
	return nil, ErrUnauthorized
}

func (f *fakeAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	_ = ctx
	_ = req
	return nil, ErrUnauthorized
}

func (f *fakeAuthService) Logout(ctx context.Context, rawToken string) error {
	_ = ctx
	_ = rawToken
	return nil
}

func (f *fakeAuthService) Authenticate(ctx context.Context, rawToken string) (*authdomain.Session, error) {
	f.authenticateCalls++
	_ = ctx
	_ = rawToken
	return nil, ErrUnauthorized
}

func (f *fakeAuthService) SwitchActiveOrg(ctx context.Context, sessionID snowflake.ID, orgID int64) error {
	_ = ctx
	_ = sessionID
	_ = orgID
	return nil
}

// newGuardedServer registers the full route table against a real
// database so tests can assert that rejected requests wrote nothing.
func newGuardedServer(t *testing.T) (*Server, *fakeAuthService, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:srvmem_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&customerdomain.Customer{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(ErrorHandlingMiddleware())

	authSvc := &fakeAuthService{}
	srv := &Server{
		engine:   engine,
		cfg:      config.Config{},
		db:       db,
		sessions: session.NewManager(config.Config{}),
		authSvc:  authSvc,
	}
	srv.registerAuthRoutes()
	srv.registerAPIRoutes()

	return srv, authSvc, db
}

func TestAdvisoryRoutesRejectMissingSession(t *testing.T) {
	srv, authSvc, _ := newGuardedServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/ai/quote-generator",
		bytes.NewBufferString(`{"job_type":"hvac_repair","description":"compressor replacement"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
	if authSvc.authenticateCalls != 0 {
		t.Fatalf("sessionless request must not reach the auth service, got %d calls", authSvc.authenticateCalls)
	}
}

func TestAPIRoutesRejectMissingSessionWithoutWrites(t *testing.T) {
	srv, _, db := newGuardedServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/customers",
		bytes.NewBufferString(`{"name":"Ada Lovelace","phone":"555-0100"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}

	var customers int64
	if err := db.Model(&customerdomain.Customer{}).Count(&customers).Error; err != nil {
		t.Fatalf("count customers: %v", err)
	}
	if customers != 0 {
		t.Fatalf("rejected request wrote %d customers", customers)
	}
}

func TestAPIRoutesRejectInvalidBearerToken(t *testing.T) {
	srv, authSvc, _ := newGuardedServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("Authorization", "Bearer not-a-session")
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
	if authSvc.authenticateCalls != 1 {
		t.Fatalf("expected exactly one authenticate call, got %d", authSvc.authenticateCalls)
	}
}
