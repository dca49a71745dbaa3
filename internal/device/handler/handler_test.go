package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"riskgate/internal/device/models"
	"riskgate/internal/device/service"
	"riskgate/internal/recordstore"
	dErrors "riskgate/pkg/domain-errors"
	"riskgate/pkg/testutil"
)

const firefoxOnLinux = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"

// capturingService records what the handler passed down.
type capturingService struct {
	ctx models.DeviceContext
}

func (c *capturingService) RegisterDevice(_ context.Context, _ string, _ recordstore.DeviceFingerprint, dc models.DeviceContext) (*models.DeviceRegistrationResult, error) {
	c.ctx = dc
	return &models.DeviceRegistrationResult{DeviceID: "dev_x"}, nil
}

func (c *capturingService) GetDeviceTrustStatus(context.Context, string, string) models.DeviceTrustStatus {
	return models.UntrustedStatus()
}

type HandlerSuite struct {
	suite.Suite
	router http.Handler
	store  *recordstore.InMemoryStore
	now    time.Time
}

func (s *HandlerSuite) SetupTest() {
	s.store = recordstore.NewInMemoryStore()
	s.now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	r := chi.NewRouter()
	New(service.New(s.store, service.WithLogger(logger)), logger).Register(r)
	s.router = r
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func validBody() RegisterDeviceRequest {
	return RegisterDeviceRequest{
		UserID: "user-1",
		Fingerprint: recordstore.DeviceFingerprint{
			CanvasHash:   "c",
			WebGLHash:    "w",
			ScreenWidth:  1280,
			ScreenHeight: 800,
			Platform:     "Linux x86_64",
		},
	}
}

func (s *HandlerSuite) TestRegister() {
	s.Run("registers and reports trust", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/devices/register", validBody())
		req = testutil.WithRequestTime(testutil.WithClient(req, "198.51.100.4", firefoxOnLinux), s.now)
		rec := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(s.T(), rec)
		result := testutil.UnmarshalResponse[models.DeviceRegistrationResult](s.T(), rec)
		s.True(result.IsNewDevice)
		s.Contains(result.DisplayName, "Firefox")
		s.Equal(models.TrustLow, result.Trust.TrustLevel)

		status := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/devices/user-1/"+result.DeviceID+"/trust"))
		testutil.AssertStatusOK(s.T(), status)
		testutil.AssertJSONContains(s.T(), status, "trustLevel", "low")
	})

	s.Run("missing user is 400", func() {
		body := validBody()
		body.UserID = ""
		rec := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/devices/register", body))
		testutil.AssertStatusAndError(s.T(), rec, http.StatusBadRequest, dErrors.CodeValidation)
	})

	s.Run("fingerprint without hashes is 400", func() {
		body := validBody()
		body.Fingerprint.CanvasHash, body.Fingerprint.WebGLHash = "", ""
		rec := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/devices/register", body))
		testutil.AssertStatusAndError(s.T(), rec, http.StatusBadRequest, dErrors.CodeValidation)
	})

	s.Run("unknown fields are rejected", func() {
		rec := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/devices/register", `{"userId":"u","surprise":1}`))
		testutil.AssertStatus(s.T(), rec, http.StatusBadRequest)
	})
}

func (s *HandlerSuite) TestRegister_FillsClientFromRequest() {
	capture := &capturingService{}
	r := chi.NewRouter()
	New(capture, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))).Register(r)

	body := validBody()
	body.Context.UserAgent = "explicit-agent"
	req := testutil.WithClient(testutil.NewJSONRequest(s.T(), http.MethodPost, "/devices/register", body), "203.0.113.9", firefoxOnLinux)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("203.0.113.9", capture.ctx.IPAddress)
	s.Equal("explicit-agent", capture.ctx.UserAgent)
}

func (s *HandlerSuite) TestTrustStatus_UnknownDevice() {
	rec := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/devices/user-1/dev_unknown/trust"))
	testutil.AssertStatusOK(s.T(), rec)
	status := testutil.UnmarshalResponse[models.DeviceTrustStatus](s.T(), rec)
	s.Equal(models.UntrustedStatus(), *status)
}
