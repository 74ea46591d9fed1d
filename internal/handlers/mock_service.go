package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/glockwork/ControLeo2/internal/models"
	"github.com/glockwork/ControLeo2/internal/service"
	"github.com/glockwork/ControLeo2/internal/status"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockControl struct {
	startErr    error
	abortErr    error
	nextIndex   int
	nextErr     error
	startCalled int
	abortCalled int
	nextCalled  int
}

func (m *mockControl) Run(ctx context.Context) {}

func (m *mockControl) Start(ctx context.Context) error {
	m.startCalled++
	return m.startErr
}
func (m *mockControl) Abort(ctx context.Context) error {
	m.abortCalled++
	return m.abortErr
}
func (m *mockControl) NextProfile(ctx context.Context) (int, error) {
	m.nextCalled++
	return m.nextIndex, m.nextErr
}

type mockMonitoring struct {
	snap     status.Snapshot
	profiles []service.ProfileSummary
}

func (m *mockMonitoring) Status() status.Snapshot {
	return m.snap
}
func (m *mockMonitoring) Profiles() []service.ProfileSummary {
	return m.profiles
}

type mockEventLog struct {
	resp     []models.OvenEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.OvenEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
