package binder

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params struct {
	ID       int    `param:"id" query:"-" json:"id" validate:"min=1"`
	Language string `param:"-" query:"language" json:"language" mod:"trim" validate:"omitempty,language"`
	Append   string `param:"-" query:"append_to_response" json:"append_to_response" mod:"trim" default:"videos,credits" validate:"subresources"`
}

func TestNew(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)
	assert.NotNil(t, b)

	t.Run("binds path and query params", func(tt *testing.T) {
		c := newContext(http.MethodGet, "/movies/603?language=+pt-BR+", "603")
		p := params{}
		err := b.Bind(&p, c)
		require.NoError(tt, err)
		assert.Equal(tt, 603, p.ID)
		assert.Equal(tt, "pt-BR", p.Language)
	})

	t.Run("fills in defaults", func(tt *testing.T) {
		c := newContext(http.MethodGet, "/movies/603", "603")
		p := params{}
		err := b.Bind(&p, c)
		require.NoError(tt, err)
		assert.Equal(tt, "videos,credits", p.Append)
	})

	t.Run("ignores unknown query params", func(tt *testing.T) {
		c := newContext(http.MethodGet, "/movies/603?_=1700000000&language=fr", "603")
		p := params{}
		err := b.Bind(&p, c)
		require.NoError(tt, err)
		assert.Equal(tt, 603, p.ID)
		assert.Equal(tt, "fr", p.Language)
	})

	t.Run("returns a good message for type errors", func(tt *testing.T) {
		c := newContext(http.MethodGet, "/movies/abc", "abc")
		p := params{}
		err := b.Bind(&p, c)
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), `"id" should be of type int`)
	})

	t.Run("use validate tag to validate params", func(tt *testing.T) {
		c := newContext(http.MethodGet, "/movies/0", "0")
		p := params{}
		err := b.Bind(&p, c)
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), `"id" must be greater than or equal to 1`)
	})

	t.Run("validates language codes", func(tt *testing.T) {
		c := newContext(http.MethodGet, "/movies/603?language=english", "603")
		p := params{}
		err := b.Bind(&p, c)
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), `"language" should be a language code`)
	})

	t.Run("validates subresources", func(tt *testing.T) {
		c := newContext(http.MethodGet, "/movies/603?append_to_response=videos,trailers", "603")
		p := params{}
		err := b.Bind(&p, c)
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), `"append_to_response" must be a comma-separated list of`)
	})

	t.Run("rejects bodies", func(tt *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/movies/603", strings.NewReader(`{"id":1}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())
		p := params{}
		err := b.Bind(&p, c)
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), "Unsupported Media Type")
	})
}

func newContext(method, target, id string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rr := httptest.NewRecorder()
	c := e.NewContext(req, rr)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}
