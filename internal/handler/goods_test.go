package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// invalid queries are rejected before the repository is touched, so a nil
// repo is fine here
func doGoodsQuery(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewGoodsHandler(nil)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	require.NoError(t, h.GetAllGoods(c))
	return rec
}

func TestGetAllGoodsRejectsBadQueries(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"perPage above bound", "/api/goods?perPage=50"},
		{"perPage below bound", "/api/goods?perPage=2"},
		{"negative page", "/api/goods?page=-1"},
		{"unknown gender", "/api/goods?gender=kids"},
		{"unknown color", "/api/goods?color=purple"},
		{"bad price format", "/api/goods?price=100-500"},
		{"bad sizes csv", "/api/goods?sizes=M,,L"},
		{"unknown sort", "/api/goods?sort=asc"},
		{"non-numeric category", "/api/goods?categoryId=shoes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGoodsQuery(t, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetGoodByIDRejectsBadID(t *testing.T) {
	h := NewGoodsHandler(nil)
	for _, id := range []string{"abc", "0", "-4"} {
		req := httptest.NewRequest(http.MethodGet, "/api/goods/"+id, nil)
		rec := httptest.NewRecorder()
		c := echo.New().NewContext(req, rec)
		c.SetParamNames("goodId")
		c.SetParamValues(id)
		require.NoError(t, h.GetGoodByID(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, id)
	}
}
