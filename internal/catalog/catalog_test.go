package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"title":"Lamp","price":12.5,"images":["a.jpg"],"category":{"id":3,"name":"Furniture"}},
			{"id":2,"title":"Cap","price":35,"images":[],"category":{"id":1,"name":"Clothes"}}]`))
	})
	mux.HandleFunc("/products/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1,"title":"Lamp","price":12.5,"images":["a.jpg"],"category":{"id":3,"name":"Furniture"}}`))
	})
	mux.HandleFunc("/products/99", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Could not find any entity"}`, http.StatusBadRequest)
	})
	mux.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/categories/3/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"title":"Lamp","price":"12.50","category":{"id":3,"name":"Furniture"}}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPSource_FetchProducts(t *testing.T) {
	src := catalog.NewHTTPSource(newAPI(t).URL+"/", time.Second)

	products, err := src.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Lamp", products[0].Title)
	assert.Equal(t, "12.5", products[0].Price.String())
	assert.Equal(t, "Furniture", products[0].Category.Name)
	assert.Equal(t, "a.jpg", products[0].PrimaryImage())
	assert.Empty(t, products[1].PrimaryImage())
}

func TestHTTPSource_FetchProductByID(t *testing.T) {
	src := catalog.NewHTTPSource(newAPI(t).URL, time.Second)

	product, err := src.FetchProductByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, product.ID)

	_, err = src.FetchProductByID(context.Background(), 99)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestHTTPSource_StatusError(t *testing.T) {
	src := catalog.NewHTTPSource(newAPI(t).URL, time.Second)

	_, err := src.FetchCategories(context.Background())
	var statusErr *catalog.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestHTTPSource_FetchProductsByCategory(t *testing.T) {
	src := catalog.NewHTTPSource(newAPI(t).URL, time.Second)

	products, err := src.FetchProductsByCategory(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "12.5", products[0].Price.String())
}

func TestHTTPSource_DiscardsAfterCancel(t *testing.T) {
	src := catalog.NewHTTPSource(newAPI(t).URL, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.FetchProducts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRepositorySource_Seeded(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	require.NoError(t, catalog.Seed(repo))
	require.NoError(t, catalog.Seed(repo), "seeding twice is a no-op")

	src := catalog.NewRepositorySource(repo)
	ctx := context.Background()

	products, err := src.FetchProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 10)

	categories, err := src.FetchCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 5)

	furniture, err := src.FetchProductsByCategory(ctx, 3)
	require.NoError(t, err)
	require.Len(t, furniture, 2)
	assert.Equal(t, "Furniture", furniture[0].Category.Name)

	product, err := src.FetchProductByID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "sleek-wireless-headphone", product.Slug)

	_, err = src.FetchProductByID(ctx, 404)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}
