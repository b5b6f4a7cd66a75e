package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	redislib "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/phoneshop-backend/api/middleware"
	"github.com/angelmondragon/phoneshop-backend/internal/auth"
	"github.com/angelmondragon/phoneshop-backend/internal/cart"
	"github.com/angelmondragon/phoneshop-backend/internal/cartintent"
	"github.com/angelmondragon/phoneshop-backend/internal/checkout"
	"github.com/angelmondragon/phoneshop-backend/internal/orders"
	product "github.com/angelmondragon/phoneshop-backend/internal/products"
	"github.com/angelmondragon/phoneshop-backend/internal/users"
	"github.com/angelmondragon/phoneshop-backend/internal/visitor"
	"github.com/angelmondragon/phoneshop-backend/pkg/auth/session"
	"github.com/angelmondragon/phoneshop-backend/pkg/config"
	"github.com/angelmondragon/phoneshop-backend/pkg/db"
	"github.com/angelmondragon/phoneshop-backend/pkg/db/dbtest"
	"github.com/angelmondragon/phoneshop-backend/pkg/db/models"
	"github.com/angelmondragon/phoneshop-backend/pkg/enums"
	"github.com/angelmondragon/phoneshop-backend/pkg/logger"
	"github.com/angelmondragon/phoneshop-backend/pkg/metrics"
	redisclient "github.com/angelmondragon/phoneshop-backend/pkg/redis"
)

const testPassword = "correct-horse-battery"

type recordingDispatcher struct {
	kinds []enums.NotificationKind
}

func (r *recordingDispatcher) Dispatch(_ context.Context, kind enums.NotificationKind, _ *models.Order) {
	r.kinds = append(r.kinds, kind)
}

type harness struct {
	handler    http.Handler
	conn       *gorm.DB
	client     *db.Client
	products   *product.Repository
	dispatcher *recordingDispatcher
	customers  auth.RegisterService
	staff      auth.RegisterService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Env: "dev", CORSOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{Secret: "test-secret", Issuer: "phoneshop-test", ExpirationMinutes: 15, RefreshTokenTTLMinutes: 60},
		Password: config.PasswordConfig{
			ArgonMemoryKB: 64, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32, MinLength: 8,
		},
		Session: config.SessionConfig{TTL: time.Hour, CookieName: "ps_session"},
	}
	logg := logger.New(logger.Options{ServiceName: "routes-test", Output: &bytes.Buffer{}})

	client := dbtest.Client(t)
	conn := client.DB()

	mr := miniredis.RunT(t)
	rdb := redisclient.Wrap(redislib.NewClient(&redislib.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = rdb.Close() })

	sessions, err := session.NewManager(rdb, cfg.JWT)
	require.NoError(t, err)
	visitors, err := visitor.NewRedisStore(rdb, cfg.Session.TTL)
	require.NoError(t, err)

	productRepo := product.NewRepository(conn)
	productSvc, err := product.NewService(productRepo)
	require.NoError(t, err)
	cartSvc, err := cart.NewService(productRepo, visitors)
	require.NoError(t, err)
	relay, err := cartintent.NewRelay(cartSvc, visitors, logg)
	require.NoError(t, err)

	userRepo := users.NewRepository(conn)
	profiles, err := users.NewProfileService(userRepo)
	require.NoError(t, err)
	authSvc, err := auth.NewService(auth.ServiceParams{UserRepo: userRepo, SessionManager: sessions, JWTConfig: cfg.JWT})
	require.NoError(t, err)
	registerSvc, err := auth.NewRegisterService(auth.RegisterServiceParams{DB: client, PasswordConfig: cfg.Password})
	require.NoError(t, err)
	staffSvc, err := auth.NewStaffRegisterService(auth.RegisterServiceParams{DB: client, PasswordConfig: cfg.Password})
	require.NoError(t, err)

	dispatcher := &recordingDispatcher{}
	ordersRepo := orders.NewRepository(conn)
	ordersSvc, err := orders.NewService(ordersRepo, client, dispatcher)
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	checkoutSvc, err := checkout.NewService(checkout.Deps{
		Tx:          client,
		Cart:        cartSvc,
		ProductRepo: productRepo,
		OrdersRepo:  ordersRepo,
		Notifier:    dispatcher,
		Metrics:     metrics.NewCheckoutMetrics(registry),
		Logger:      logg,
	})
	require.NoError(t, err)

	handler := NewRouter(Deps{
		Config:        cfg,
		Logger:        logg,
		DB:            client,
		Redis:         rdb,
		Sessions:      sessions,
		Visitors:      visitors,
		Auth:          authSvc,
		Register:      registerSvc,
		StaffRegister: staffSvc,
		Profiles:      profiles,
		Products:      productSvc,
		Cart:          cartSvc,
		Relay:         relay,
		Checkout:      checkoutSvc,
		Orders:        ordersSvc,
		Metrics:       registry,
	})

	return &harness{
		handler:    handler,
		conn:       conn,
		client:     client,
		products:   productRepo,
		dispatcher: dispatcher,
		customers:  registerSvc,
		staff:      staffSvc,
	}
}

func (h *harness) seedProduct(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	p, err := h.products.Create(context.Background(), &models.Product{
		Name:         name,
		Slug:         product.Slugify(name),
		Manufacturer: "Acme",
		Price:        decimal.RequireFromString(price),
		Stock:        stock,
		Available:    true,
	})
	require.NoError(t, err)
	return p
}

func (h *harness) seedUser(t *testing.T, svc auth.RegisterService, email string) {
	t.Helper()
	_, err := svc.Register(context.Background(), auth.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  testPassword,
	})
	require.NoError(t, err)
}

type call struct {
	method      string
	path        string
	body        string
	contentType string
	token       string
	session     string
	idemKey     string
}

func (h *harness) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(c.method, c.path, strings.NewReader(c.body))
	if c.body != "" {
		ct := c.contentType
		if ct == "" {
			ct = "application/json"
		}
		req.Header.Set("Content-Type", ct)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.session != "" {
		req.Header.Set(middleware.SessionHeader, c.session)
	}
	if c.idemKey != "" {
		req.Header.Set("Idempotency-Key", c.idemKey)
	}
	resp := httptest.NewRecorder()
	h.handler.ServeHTTP(resp, req)
	return resp
}

// login signs in on the given visitor session and returns the access token
// and the decoded response payload.
func (h *harness) login(t *testing.T, email, sessionID string) (string, map[string]any) {
	t.Helper()
	resp := h.do(t, call{
		method:  http.MethodPost,
		path:    "/api/v1/auth/login",
		body:    `{"email":"` + email + `","password":"` + testPassword + `"}`,
		session: sessionID,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	data := decodeData(t, resp)
	token, _ := data["access_token"].(string)
	require.NotEmpty(t, token)
	return token, data
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope), resp.Body.String())
	return envelope.Data
}

func decodeErrorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope), resp.Body.String())
	return envelope.Error.Code
}

func cartQuantity(t *testing.T, data map[string]any, productID uuid.UUID) int {
	t.Helper()
	lines, _ := data["lines"].([]any)
	for _, raw := range lines {
		line := raw.(map[string]any)
		if line["product_id"] == productID.String() {
			return int(line["quantity"].(float64))
		}
	}
	return 0
}

func TestHealthLive(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, call{method: http.MethodGet, path: "/health/live"})
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "dev", resp.Header().Get("X-PhoneShop-Env"))
}

func TestHealthReadyPingsDependencies(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, call{method: http.MethodGet, path: "/health/ready"})
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, call{method: http.MethodGet, path: "/metrics"})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestProductListAndDetail(t *testing.T) {
	h := newHarness(t)
	phone := h.seedProduct(t, "Pixel 9", "799.00", 4)
	hidden := h.seedProduct(t, "Nokia 3310", "49.00", 10)
	require.NoError(t, h.conn.Model(&models.Product{}).Where("id = ?", hidden.ID).Update("available", false).Error)

	resp := h.do(t, call{method: http.MethodGet, path: "/api/v1/products"})
	require.Equal(t, http.StatusOK, resp.Code)
	list := decodeData(t, resp)["products"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, phone.ID.String(), list[0].(map[string]any)["id"])

	resp = h.do(t, call{method: http.MethodGet, path: "/api/v1/products/" + phone.ID.String() + "/" + phone.Slug})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Pixel 9", decodeData(t, resp)["name"])

	resp = h.do(t, call{method: http.MethodGet, path: "/api/v1/products/" + phone.ID.String() + "/wrong-slug"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = h.do(t, call{method: http.MethodGet, path: "/api/v1/products/" + hidden.ID.String() + "/" + hidden.Slug})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAnonymousAddIsParkedAndReplayedOnLogin(t *testing.T) {
	h := newHarness(t)
	phone := h.seedProduct(t, "Pixel 9", "799.00", 5)
	h.seedUser(t, h.customers, "ada@example.com")

	form := url.Values{"product_id": {phone.ID.String()}, "quantity": {"3"}}
	resp := h.do(t, call{
		method:      http.MethodPost,
		path:        "/api/v1/cart/items",
		body:        form.Encode(),
		contentType: "application/x-www-form-urlencoded",
	})
	require.Equal(t, http.StatusSeeOther, resp.Code, resp.Body.String())
	assert.Equal(t, cartintent.RedirectLocation(), resp.Header().Get("Location"))
	assert.Equal(t, "AUTHENTICATION_REQUIRED", decodeErrorCode(t, resp))
	sessionID := resp.Header().Get(middleware.SessionHeader)
	require.NotEmpty(t, sessionID)

	token, data := h.login(t, "ada@example.com", sessionID)
	intent, ok := data["cart_intent"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, intent["replayed"])

	resp = h.do(t, call{method: http.MethodGet, path: "/api/v1/cart", token: token, session: sessionID})
	require.Equal(t, http.StatusOK, resp.Code)
	cartData := decodeData(t, resp)
	assert.Equal(t, 3, cartQuantity(t, cartData, phone.ID))
	notices := cartData["notices"].([]any)
	require.Len(t, notices, 1)

	resp = h.do(t, call{method: http.MethodPost, path: "/api/v1/cart/pending/complete", token: token, session: sessionID})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, false, decodeData(t, resp)["replayed"])

	resp = h.do(t, call{method: http.MethodGet, path: "/api/v1/cart", token: token, session: sessionID})
	cartData = decodeData(t, resp)
	assert.Equal(t, 3, cartQuantity(t, cartData, phone.ID))
	assert.Empty(t, cartData["notices"])
}

func TestCheckoutPlacesOrderAndReplaysIdempotentRequest(t *testing.T) {
	h := newHarness(t)
	p1 := h.seedProduct(t, "Pixel 9", "100", 5)
	p2 := h.seedProduct(t, "Galaxy S24", "50", 1)
	h.seedUser(t, h.customers, "grace@example.com")

	first := h.do(t, call{method: http.MethodGet, path: "/api/v1/cart"})
	sessionID := first.Header().Get(middleware.SessionHeader)
	token, _ := h.login(t, "grace@example.com", sessionID)

	for _, add := range []struct {
		id  uuid.UUID
		qty int
	}{{p1.ID, 2}, {p2.ID, 1}} {
		body, _ := json.Marshal(map[string]any{"product_id": add.id.String(), "quantity": add.qty})
		resp := h.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items", body: string(body), token: token, session: sessionID})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	shipping := `{"first_name":"Grace","last_name":"Hopper","email":"grace@example.com","address":"1 Navy Way","city":"Arlington","postal_code":"22201"}`

	resp := h.do(t, call{method: http.MethodPost, path: "/api/v1/checkout", body: shipping, token: token, session: sessionID})
	assert.Equal(t, http.StatusBadRequest, resp.Code, "checkout requires an idempotency key")

	resp = h.do(t, call{method: http.MethodPost, path: "/api/v1/checkout", body: shipping, token: token, session: sessionID, idemKey: "order-1"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	order := decodeData(t, resp)
	total, err := decimal.NewFromString(order["total"].(string))
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(250)), "total %s", total)
	assert.Len(t, order["items"], 2)

	replay := h.do(t, call{method: http.MethodPost, path: "/api/v1/checkout", body: shipping, token: token, session: sessionID, idemKey: "order-1"})
	require.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, resp.Body.String(), replay.Body.String())

	var count int64
	require.NoError(t, h.conn.Model(&models.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, []enums.NotificationKind{enums.NotificationKindOrderPlaced}, h.dispatcher.kinds)

	resp = h.do(t, call{method: http.MethodGet, path: "/api/v1/cart", token: token, session: sessionID})
	assert.Empty(t, decodeData(t, resp)["lines"])

	for id, want := range map[uuid.UUID]int{p1.ID: 3, p2.ID: 0} {
		stored, err := h.products.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, want, stored.Stock)
	}

	resp = h.do(t, call{method: http.MethodGet, path: "/api/v1/orders", token: token})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeData(t, resp)["orders"], 1)

	resp = h.do(t, call{method: http.MethodGet, path: "/api/v1/orders/" + order["id"].(string), token: token})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "placed", decodeData(t, resp)["status"])
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	h := newHarness(t)
	shipping := `{"first_name":"Grace","last_name":"Hopper","email":"grace@example.com","address":"1 Navy Way","city":"Arlington","postal_code":"22201"}`
	resp := h.do(t, call{method: http.MethodPost, path: "/api/v1/checkout", body: shipping, idemKey: "empty"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeErrorCode(t, resp))
}

func TestRegisterSignsInAndReturnsCreated(t *testing.T) {
	h := newHarness(t)
	body := `{"first_name":"Linus","last_name":"T","email":"linus@example.com","password":"` + testPassword + `"}`
	resp := h.do(t, call{method: http.MethodPost, path: "/api/v1/auth/register", body: body, idemKey: "reg-1"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	data := decodeData(t, resp)
	assert.NotEmpty(t, data["access_token"])
	user := data["user"].(map[string]any)
	assert.Equal(t, "customer", user["role"])

	dup := h.do(t, call{method: http.MethodPost, path: "/api/v1/auth/register", body: body, idemKey: "reg-2"})
	assert.Equal(t, http.StatusConflict, dup.Code)
}

func TestAccountRoutesRequireToken(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/api/v1/account/profile", "/api/v1/orders"} {
		resp := h.do(t, call{method: http.MethodGet, path: path})
		assert.Equal(t, http.StatusUnauthorized, resp.Code, path)
	}
}

func TestProfileReadAndUpdate(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, h.customers, "ada@example.com")
	token, _ := h.login(t, "ada@example.com", "")

	resp := h.do(t, call{method: http.MethodPut, path: "/api/v1/account/profile", body: `{"phone":"555-0100","address":"12 Analytical St"}`, token: token})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = h.do(t, call{method: http.MethodGet, path: "/api/v1/account/profile", token: token})
	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeData(t, resp)
	assert.Equal(t, "555-0100", data["phone"])
	assert.Equal(t, "12 Analytical St", data["address"])
}

func TestLogoutRevokesSession(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, h.customers, "ada@example.com")
	token, _ := h.login(t, "ada@example.com", "")

	resp := h.do(t, call{method: http.MethodPost, path: "/api/v1/auth/logout", token: token})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = h.do(t, call{method: http.MethodGet, path: "/api/v1/account/profile", token: token})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogoutFlushesVisitorSession(t *testing.T) {
	h := newHarness(t)
	phone := h.seedProduct(t, "Pixel 9", "799.00", 5)
	h.seedUser(t, h.customers, "ada@example.com")

	first := h.do(t, call{method: http.MethodGet, path: "/api/v1/cart"})
	sessionID := first.Header().Get(middleware.SessionHeader)
	token, _ := h.login(t, "ada@example.com", sessionID)

	resp := h.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items", body: `{"product_id":"` + phone.ID.String() + `","quantity":2}`, token: token, session: sessionID})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = h.do(t, call{method: http.MethodPost, path: "/api/v1/auth/logout", token: token, session: sessionID})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	fresh := resp.Header().Get(middleware.SessionHeader)
	require.NotEmpty(t, fresh)
	assert.NotEqual(t, sessionID, fresh)

	for _, id := range []string{sessionID, fresh} {
		resp = h.do(t, call{method: http.MethodGet, path: "/api/v1/cart", session: id})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Empty(t, decodeData(t, resp)["lines"], "session %s should hold no cart after logout", id)
	}
}

func TestLoginAsAnotherUserResetsBoundSession(t *testing.T) {
	h := newHarness(t)
	phone := h.seedProduct(t, "Pixel 9", "799.00", 5)
	h.seedUser(t, h.customers, "ada@example.com")
	h.seedUser(t, h.customers, "grace@example.com")

	first := h.do(t, call{method: http.MethodGet, path: "/api/v1/cart"})
	sessionID := first.Header().Get(middleware.SessionHeader)
	adaToken, _ := h.login(t, "ada@example.com", sessionID)

	resp := h.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items", body: `{"product_id":"` + phone.ID.String() + `"}`, token: adaToken, session: sessionID})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	graceToken, _ := h.login(t, "grace@example.com", sessionID)
	resp = h.do(t, call{method: http.MethodGet, path: "/api/v1/cart", token: graceToken, session: sessionID})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeData(t, resp)["lines"])

	resp = h.do(t, call{method: http.MethodPost, path: "/api/v1/cart/pending/complete", token: adaToken, session: sessionID})
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestStaffCannotUseCart(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, h.staff, "ops@example.com")
	token, _ := h.login(t, "ops@example.com", "")

	resp := h.do(t, call{method: http.MethodGet, path: "/api/v1/cart", token: token})
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestStaffRoutesRequireStaffRole(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, h.customers, "ada@example.com")
	token, _ := h.login(t, "ada@example.com", "")

	resp := h.do(t, call{method: http.MethodPost, path: "/api/staff/v1/products", body: `{"name":"X","price":"1","stock":1}`, token: token, idemKey: "p-1"})
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestStaffManagesCatalogAndShipsOrders(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, h.staff, "ops@example.com")
	token, _ := h.login(t, "ops@example.com", "")

	resp := h.do(t, call{
		method:  http.MethodPost,
		path:    "/api/staff/v1/products",
		body:    `{"name":"iPhone 16 Pro","manufacturer":"Apple","price":"999.00","stock":3}`,
		token:   token,
		idemKey: "create-iphone",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	created := decodeData(t, resp)
	assert.Equal(t, "iphone-16-pro", created["slug"])
	assert.Equal(t, true, created["available"])

	productID := created["id"].(string)
	resp = h.do(t, call{method: http.MethodPatch, path: "/api/staff/v1/products/" + productID, body: `{"available":false}`, token: token})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, false, decodeData(t, resp)["available"])

	order := &models.Order{
		Status:     enums.OrderStatusPlaced,
		Total:      decimal.NewFromInt(10),
		FirstName:  "Grace",
		LastName:   "Hopper",
		Email:      "grace@example.com",
		Address:    "1 Navy Way",
		City:       "Arlington",
		PostalCode: "22201",
	}
	_, err := orders.NewRepository(h.conn).CreateOrder(context.Background(), order)
	require.NoError(t, err)

	resp = h.do(t, call{
		method:  http.MethodPatch,
		path:    "/api/staff/v1/orders/" + order.ID.String(),
		body:    `{"status":"shipped","tracking_number":"1Z999"}`,
		token:   token,
		idemKey: "ship-1",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "shipped", decodeData(t, resp)["status"])
	assert.Equal(t, []enums.NotificationKind{enums.NotificationKindOrderShipped}, h.dispatcher.kinds)

	resp = h.do(t, call{
		method:  http.MethodPatch,
		path:    "/api/staff/v1/orders/" + order.ID.String(),
		body:    `{"status":"placed"}`,
		token:   token,
		idemKey: "ship-2",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestDevStaffRegisterMountedInDev(t *testing.T) {
	h := newHarness(t)
	body := `{"first_name":"Ops","last_name":"Team","email":"ops2@example.com","password":"` + testPassword + `"}`
	resp := h.do(t, call{method: http.MethodPost, path: "/api/dev/v1/staff/register", body: body})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, "staff", decodeData(t, resp)["role"])
}
