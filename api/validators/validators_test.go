package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

type sampleBody struct {
	Name     string `json:"name" validate:"required,max=5"`
	Quantity int    `json:"item_quantity" validate:"min=1"`
}

func TestDecodeJSONBodyReportsFieldsByJSONName(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"toolong","item_quantity":0}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(pkgerrors.FieldDetails)
	require.True(t, ok)
	require.Equal(t, "must be at most 5", details["name"])
	require.Equal(t, "must be at least 1", details["item_quantity"])
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok","item_quantity":1,"role":"admin"}`))
	var body sampleBody
	require.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &body), pkgerrors.CodeValidation))
}

func TestOptionalQueryParsers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?min_price=9.99&in_stock=true&min_rating=3&user="+uuid.NewString(), nil)

	price, err := ParseOptionalDecimal(req, "min_price")
	require.NoError(t, err)
	require.Equal(t, "9.99", price.String())

	inStock, err := ParseOptionalBool(req, "in_stock")
	require.NoError(t, err)
	require.True(t, *inStock)

	rating, err := ParseOptionalInt(req, "min_rating")
	require.NoError(t, err)
	require.Equal(t, 3, *rating)

	user, err := ParseOptionalUUID(req, "user")
	require.NoError(t, err)
	require.NotNil(t, user)

	missing, err := ParseOptionalDecimal(req, "max_price")
	require.NoError(t, err)
	require.Nil(t, missing)

	bad := httptest.NewRequest(http.MethodGet, "/?min_price=cheap&in_stock=maybe", nil)
	_, err = ParseOptionalDecimal(bad, "min_price")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParseOptionalBool(bad, "in_stock")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPageBounds(t *testing.T) {
	limit, cursor, err := Page(httptest.NewRequest(http.MethodGet, "/?limit=10&cursor=abc", nil))
	require.NoError(t, err)
	require.Equal(t, 10, limit)
	require.Equal(t, "abc", cursor)

	_, _, err = Page(httptest.NewRequest(http.MethodGet, "/?limit=1000", nil))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestURLParamUUID(t *testing.T) {
	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rc := chi.NewRouteContext()
	rc.URLParams.Add("itemId", id.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	got, err := URLParamUUID(req, "itemId")
	require.NoError(t, err)
	require.Equal(t, id, got)

	_, err = URLParamUUID(req, "orderId")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
