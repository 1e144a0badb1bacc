package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/sakhi/backend/internal/model/catalog"
	catalogService "github.com/zhouzirui/sakhi/backend/internal/service/catalog"
)

func get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	New(catalogService.NewService()).RegisterRoutes(r)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestProfessionalsQuery(t *testing.T) {
	rr := get(t, "/professionals?available=true&free=1&sort=price-asc")
	require.Equal(t, http.StatusOK, rr.Code)

	var items []catalog.Professional
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Anya Sharma", items[0].Name)

	assert.Equal(t, http.StatusBadRequest, get(t, "/professionals?price=free").Code)
}

func TestProfessionalDetail(t *testing.T) {
	assert.Equal(t, http.StatusOK, get(t, "/professionals/2").Code)
	assert.Equal(t, http.StatusNotFound, get(t, "/professionals/42").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, "/professionals/abc").Code)
}

func TestResourcesAndCommunities(t *testing.T) {
	rr := get(t, "/resources?filter=Video")
	require.Equal(t, http.StatusOK, rr.Code)
	var resources []catalog.Resource
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resources))
	require.Len(t, resources, 1)
	assert.Equal(t, 3, resources[0].ID)

	rr = get(t, "/resources?filter=Exercise")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = get(t, "/communities?view=open&category=Yoga")
	require.Equal(t, http.StatusOK, rr.Code)
	var listing catalogService.CommunityListing
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listing))
	require.Len(t, listing.Open, 1)
	assert.Empty(t, listing.Guided)

	assert.Equal(t, http.StatusOK, get(t, "/feelings").Code)
	assert.Equal(t, http.StatusOK, get(t, "/stories").Code)
}
