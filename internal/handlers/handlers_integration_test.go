package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"storefront/internal/catalog"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test_jwt_secret"

type testApp struct {
	*fiber.App
	cart     *services.CartService
	wishlist *services.WishlistService
	feed     *notify.Feed
}

// setupApp wires every handler on an in-memory SQLite database and the seeded local catalog.
func setupApp(t *testing.T) *testApp {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	productRepo := repositories.NewGORMProductRepository(db)
	require.NoError(t, catalog.Seed(productRepo))

	feed := notify.NewFeed(10)
	opts := services.Options{
		Snapshots: repositories.NewSnapshotStore(repositories.NewGORMSnapshotRepository(db)),
		Sink:      feed,
	}
	cart := services.NewCartService(opts)
	wishlist := services.NewWishlistService(opts)
	orders := services.NewOrderService(opts)
	authService := services.NewAuthService(repositories.NewGORMUserRepository(db), testJWTSecret)
	catalogService := services.NewCatalogService(catalog.NewRepositorySource(productRepo))

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	auth := middleware.AuthRequired(authService)
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1, auth)
	handlers.NewProductHandler(catalogService).RegisterRoutes(apiV1)
	handlers.NewNotificationHandler(feed).RegisterRoutes(apiV1)
	handlers.NewCartHandler(cart, services.NewCheckoutService(cart, orders, 0)).RegisterRoutes(apiV1, auth)
	handlers.NewWishlistHandler(wishlist, cart).RegisterRoutes(apiV1, auth)
	handlers.NewOrderHandler(orders, catalogService).RegisterRoutes(apiV1, auth)

	return &testApp{App: app, cart: cart, wishlist: wishlist, feed: feed}
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func (a *testApp) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (a *testApp) token(t *testing.T) string {
	t.Helper()
	user := map[string]string{"username": "testuser", "email": "test@example.com", "password": "password123"}
	require.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, "/api/v1/auth/register", "", user, nil))

	var loginResp map[string]string
	creds := map[string]string{"username": "testuser", "password": "password123"}
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/api/v1/auth/login", "", creds, &loginResp))
	require.NotEmpty(t, loginResp["token"])
	return loginResp["token"]
}

func TestAuthRegisterLoginAndProfile(t *testing.T) {
	app := setupApp(t)
	token := app.token(t)

	user := map[string]string{"username": "testuser", "email": "test@example.com", "password": "password123"}
	assert.Equal(t, http.StatusConflict, app.do(t, http.MethodPost, "/api/v1/auth/register", "", user, nil))

	var invalid map[string]any
	bad := map[string]string{"username": "x", "email": "nope", "password": "1"}
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodPost, "/api/v1/auth/register", "", bad, &invalid))
	assert.Equal(t, "Validation failed", invalid["message"])
	assert.Contains(t, invalid["errors"], "Email")

	creds := map[string]string{"username": "testuser", "password": "wrong"}
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodPost, "/api/v1/auth/login", "", creds, nil))

	var profile models.Profile
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/auth/me", token, nil, &profile))
	assert.Equal(t, "testuser", profile.Name)
	assert.Equal(t, "test@example.com", profile.Email)
	assert.NotEmpty(t, profile.Sub)

	assert.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/api/v1/auth/me", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/api/v1/auth/me", "not-a-token", nil, nil))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := setupApp(t)

	for _, path := range []string{"/api/v1/wishlist", "/api/v1/orders", "/api/v1/orders/stats"} {
		assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, path, "", nil, nil), path)
	}
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodPost, "/api/v1/cart/checkout", "", nil, nil))
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/cart", "", nil, nil), "the cart is public")
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/products", "", nil, nil), "the catalog is public")
}

func TestCartEndpoints(t *testing.T) {
	app := setupApp(t)

	for i := 1; i <= 7; i++ {
		line := map[string]any{"id": fmt.Sprintf("p%d", i), "title": fmt.Sprintf("Item %d", i), "price": fmt.Sprintf("%d.50", i)}
		require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/v1/cart", "", line, nil))
	}

	var view handlers.CartView
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/cart?page=2&sort=price-desc", "", nil, &view))
	assert.Equal(t, 7, view.TotalItems)
	assert.Equal(t, 2, view.TotalPages)
	require.Len(t, view.Items, 2)
	assert.Equal(t, "p2", view.Items[0].ID)
	assert.Equal(t, 7, view.Totals.ItemCount)

	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/cart?pageSize=9223372036854775807", "", nil, &view))
	assert.Equal(t, 1, view.TotalPages)
	assert.Len(t, view.Items, 7)

	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodGet, "/api/v1/cart?sort=rating", "", nil, nil))
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodPost, "/api/v1/cart", "", map[string]any{"title": "No id"}, nil))
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodPost, "/api/v1/cart", "", map[string]any{"id": "x", "title": "Neg", "price": "-1"}, nil))

	var qty map[string]any
	require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/api/v1/cart/p1/decrement", "", nil, &qty))
	assert.Equal(t, false, qty["changed"])
	require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/api/v1/cart/p1/increment", "", nil, &qty))
	assert.Equal(t, true, qty["changed"])
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodPost, "/api/v1/cart/missing/increment", "", nil, nil))

	var removed map[string]any
	require.Equal(t, http.StatusOK, app.do(t, http.MethodDelete, "/api/v1/cart/p1", "", nil, &removed))
	assert.Equal(t, true, removed["changed"])
	assert.Len(t, app.cart.Lines(), 6)

	require.Equal(t, http.StatusOK, app.do(t, http.MethodDelete, "/api/v1/cart", "", nil, nil))
	assert.Empty(t, app.cart.Lines())
}

func TestWishlistEndpoints(t *testing.T) {
	app := setupApp(t)
	token := app.token(t)

	entry := map[string]any{"id": "p1", "title": "Lamp", "price": "20"}
	assert.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/v1/wishlist", token, entry, nil))

	var again map[string]any
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/api/v1/wishlist", token, entry, &again))
	assert.Equal(t, false, again["changed"])

	var contains map[string]any
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/wishlist/p1", token, nil, &contains))
	assert.Equal(t, true, contains["inWishlist"])

	var moved models.CartLine
	require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/api/v1/wishlist/p1/move-to-cart", token, nil, &moved))
	assert.Equal(t, 1, moved.Quantity)
	assert.True(t, app.wishlist.Contains("p1"), "moving to the cart keeps the entry")
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodPost, "/api/v1/wishlist/zz/move-to-cart", token, nil, nil))

	var page struct {
		Items      []models.WishlistEntry `json:"items"`
		TotalItems int                    `json:"totalItems"`
	}
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/wishlist?q=lamp", token, nil, &page))
	assert.Equal(t, 1, page.TotalItems)

	require.Equal(t, http.StatusOK, app.do(t, http.MethodDelete, "/api/v1/wishlist/p1", token, nil, nil))
	assert.False(t, app.wishlist.Contains("p1"))
}

func TestOrderEndpoints(t *testing.T) {
	app := setupApp(t)
	token := app.token(t)

	var created models.Order
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/v1/orders", token, map[string]any{"productId": 1}, &created))
	assert.Equal(t, "1", created.ProductID)
	assert.Equal(t, 1, created.Quantity)

	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodPost, "/api/v1/orders", token, map[string]any{"productId": 0}, nil))

	var cancelled handlers.OrderView
	require.Equal(t, http.StatusOK, app.do(t, http.MethodPatch, "/api/v1/orders/"+created.ID+"/status", token,
		map[string]any{"status": "cancelled"}, &cancelled))
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledDate)
	assert.Empty(t, cancelled.AllowedTransitions)

	var conflict map[string]any
	assert.Equal(t, http.StatusConflict, app.do(t, http.MethodPatch, "/api/v1/orders/"+created.ID+"/status", token,
		map[string]any{"status": "shipped"}, &conflict))
	assert.Equal(t, "Order status change not allowed", conflict["message"])

	var page struct {
		TotalItems int `json:"totalItems"`
	}
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/orders?status=cancelled", token, nil, &page))
	assert.Equal(t, 1, page.TotalItems)
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/orders?status=pending", token, nil, &page))
	assert.Equal(t, 0, page.TotalItems)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodGet, "/api/v1/orders?status=lost", token, nil, nil))

	var view handlers.OrderView
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/orders/"+created.ID, token, nil, &view))
	assert.Equal(t, created.ID, view.ID)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/api/v1/orders/missing", token, nil, nil))

	require.Equal(t, http.StatusOK, app.do(t, http.MethodDelete, "/api/v1/orders", token, nil, nil))
	var stats models.OrderStats
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/orders/stats", token, nil, &stats))
	assert.Equal(t, models.OrderStats{}, stats)
}

func TestProductEndpoints(t *testing.T) {
	app := setupApp(t)

	var page struct {
		Items      []models.Product `json:"items"`
		TotalItems int              `json:"totalItems"`
		TotalPages int              `json:"totalPages"`
		PageSize   int              `json:"pageSize"`
	}
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/products", "", nil, &page))
	assert.Equal(t, 10, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 8, page.PageSize)

	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/categories/4/products?sort=title-desc", "", nil, &page))
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Rainbow Glitter High Heels", page.Items[0].Title)

	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/search?q=sofa", "", nil, &page))
	assert.Equal(t, 1, page.TotalItems)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodGet, "/api/v1/search", "", nil, nil))

	var product models.Product
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/products/3", "", nil, &product))
	assert.Equal(t, "Classic Red Baseball Cap", product.Title)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/api/v1/products/404", "", nil, nil))

	var categories []models.Category
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/categories", "", nil, &categories))
	assert.Len(t, categories, 5)

	var home services.HomeView
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/home", "", nil, &home))
	assert.Len(t, home.Categories, 5)
	assert.Len(t, home.Products.Items, 8)
}

func TestNotificationEndpoint(t *testing.T) {
	app := setupApp(t)
	app.do(t, http.MethodPost, "/api/v1/cart", "", map[string]any{"id": "p1", "title": "Lamp", "price": "5"}, nil)
	app.do(t, http.MethodDelete, "/api/v1/cart", "", nil, nil)

	var entries []notify.FeedEntry
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/notifications", "", nil, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Cart cleared", entries[1].Message)
	assert.Equal(t, notify.KindSuccess, entries[1].Kind)

	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodGet, "/api/v1/notifications?after=x", "", nil, nil))
}
