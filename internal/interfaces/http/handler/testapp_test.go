package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	billingapp "github.com/dormdesk/backend/internal/application/billing"
	meteringapp "github.com/dormdesk/backend/internal/application/metering"
	paymentapp "github.com/dormdesk/backend/internal/application/payment"
	propertyapp "github.com/dormdesk/backend/internal/application/property"
	reportapp "github.com/dormdesk/backend/internal/application/report"
	"github.com/dormdesk/backend/internal/domain/metering"
	"github.com/dormdesk/backend/internal/infrastructure/auth"
	"github.com/dormdesk/backend/internal/infrastructure/event"
	"github.com/dormdesk/backend/internal/infrastructure/persistence"
	"github.com/dormdesk/backend/internal/infrastructure/storage"
	"github.com/dormdesk/backend/internal/interfaces/http/middleware"
	"github.com/dormdesk/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testAdminUID  = "admin-1"
	testRenterUID = "line-renter-1"
	headerUID     = "X-Test-UID"
	headerRole    = "X-Test-Role"
)

// testApp is the API over real services and an in-memory database
type testApp struct {
	engine *gin.Engine
}

// fakeAuth trusts identity headers in place of a bearer token
func fakeAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := c.GetHeader(headerUID); uid != "" {
			c.Set(middleware.JWTUIDKey, uid)
			c.Set(middleware.JWTRoleKey, c.GetHeader(headerRole))
		}
		c.Next()
	}
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	middleware.SetupValidator()

	db := testutil.NewSQLiteDB(t)
	tx := persistence.NewTxManager(db)
	bus := event.NewInMemoryEventBus(zap.NewNop())

	buildings := persistence.NewGormBuildingRepository(db)
	rooms := persistence.NewGormRoomRepository(db)
	tenantRepo := persistence.NewGormTenantRepository(db)
	contracts := persistence.NewGormContractRepository(db)
	readings := persistence.NewGormMeterReadingRepository(db)
	bills := persistence.NewGormBillRepository(db)
	payments := persistence.NewGormPaymentRepository(db)

	rates := metering.Rates{Water: decimal.NewFromInt(18), Electric: decimal.NewFromInt(8)}
	tenantService := propertyapp.NewTenantService(tenantRepo, rooms, contracts, tx, bus)
	billService := billingapp.NewBillService(bills, payments, rooms, tenantRepo, readings, tx, bus,
		billingapp.Settings{DueDay: 5, Location: time.UTC})
	paymentService := paymentapp.NewService(payments, bills, tx, storage.NewStubSlipStore(), bus)

	buildingH := NewBuildingHandler(propertyapp.NewBuildingService(buildings, rooms))
	roomH := NewRoomHandler(propertyapp.NewRoomService(rooms, buildings, bus))
	tenantH := NewTenantHandler(tenantService)
	readingH := NewMeterReadingHandler(meteringapp.NewReadingService(readings, rooms, rates, bus))
	billH := NewBillHandler(billService, tenantService)
	paymentH := NewPaymentHandler(paymentService, tenantService)
	dashboardH := NewDashboardHandler(reportapp.NewDashboardService(rooms, tenantRepo, bills, time.UTC))

	engine := gin.New()
	engine.Use(middleware.RequestID(), fakeAuth())
	api := engine.Group("/api/v1")

	admin := api.Group("", middleware.RequireRole(auth.RoleAdmin))
	admin.POST("/buildings", buildingH.Create)
	admin.GET("/buildings/:id", buildingH.Get)
	admin.DELETE("/buildings/:id", buildingH.Delete)
	admin.POST("/rooms", roomH.Create)
	admin.GET("/rooms", roomH.List)
	admin.GET("/rooms/:id", roomH.Get)
	admin.POST("/tenants", tenantH.MoveIn)
	admin.POST("/tenants/:id/move-out", tenantH.MoveOut)
	admin.POST("/meter-readings", readingH.Record)
	admin.GET("/meter-readings/previous", readingH.Previous)
	admin.POST("/bills", billH.Generate)
	admin.GET("/bills", billH.List)
	admin.GET("/bills/summary", billH.Summary)
	admin.POST("/bills/:id/confirm-paid", billH.ConfirmPaid)
	admin.GET("/payments", paymentH.List)
	admin.POST("/payments/:id/approve", paymentH.Approve)
	admin.POST("/payments/:id/reject", paymentH.Reject)
	admin.GET("/dashboard", dashboardH.Get)

	me := api.Group("/me")
	me.GET("/bills", billH.List)
	me.GET("/bills/:id", billH.Get)
	me.POST("/bills/:id/slip-upload-url", paymentH.RequestSlipUpload)
	me.POST("/payments", paymentH.Submit)
	me.GET("/payments", paymentH.List)

	return &testApp{engine: engine}
}

func (a *testApp) do(t *testing.T, method, path string, body any, uid, role string) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.PerformRequest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid != "" {
			r.Header.Set(headerUID, uid)
			r.Header.Set(headerRole, role)
		}
		a.engine.ServeHTTP(w, r)
	}), method, path, body, "")
}

func (a *testApp) asAdmin(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return a.do(t, method, path, body, testAdminUID, auth.RoleAdmin)
}

func (a *testApp) asRenter(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return a.do(t, method, path, body, testRenterUID, auth.RoleTenant)
}

// occupiedRoom creates a building and a room with the test renter moved in
func (a *testApp) occupiedRoom(t *testing.T) (roomID string, tenantID string) {
	t.Helper()

	w := a.asAdmin(t, http.MethodPost, "/api/v1/buildings", map[string]any{"name": "Sukhumvit House"})
	testutil.AssertSuccess(t, w, http.StatusCreated)
	building := testutil.DecodeData[propertyapp.BuildingResponse](t, w)

	w = a.asAdmin(t, http.MethodPost, "/api/v1/rooms", map[string]any{
		"building_id":  building.ID,
		"number":       "101",
		"floor":        1,
		"monthly_rent": "4500",
	})
	testutil.AssertSuccess(t, w, http.StatusCreated)
	room := testutil.DecodeData[propertyapp.RoomResponse](t, w)

	w = a.asAdmin(t, http.MethodPost, "/api/v1/tenants", map[string]any{
		"room_id":      room.ID,
		"name":         "Somchai",
		"email":        "somchai@example.com",
		"user_id":      testRenterUID,
		"move_in_date": "2025-01-01T00:00:00Z",
	})
	testutil.AssertSuccess(t, w, http.StatusCreated)
	tenant := testutil.DecodeData[propertyapp.TenantResponse](t, w)
	require.Equal(t, testRenterUID, tenant.UserID)

	return room.ID.String(), tenant.ID.String()
}
