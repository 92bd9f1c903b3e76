package views

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"girlmath-server/src/models"
	"girlmath-server/src/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ParsesEveryPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	for _, page := range []string{"index.html", "analytics.html", "goals.html", "login.html", "register.html", "error.html"} {
		assert.Contains(t, r.pages, page)
	}
	assert.NotContains(t, r.pages, "base.html")
}

func TestRender_Goals(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	goals := []models.Goal{{
		ID: 3, Name: "Trip <Paris>", Target: decimal.NewFromInt(1000), Saved: decimal.NewFromInt(250),
		CreatedAt: time.Now(),
	}, {
		ID: 4, Name: "Shoes", Target: decimal.NewFromInt(80), Saved: decimal.NewFromInt(90),
		CreatedAt: time.Now(),
	}}
	w := httptest.NewRecorder()
	err = r.Render(w, http.StatusOK, "goals.html", Page{
		Title:     "Goals",
		Identity:  &models.Identity{UserID: 1, Username: "amy"},
		Flash:     &util.Flash{Kind: util.FlashSuccess, Message: "Goal progress updated!"},
		CSRFToken: "token-123",
		Data:      goals,
	})
	require.NoError(t, err)

	body := w.Body.String()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, body, "Trip &lt;Paris&gt;")
	assert.Contains(t, body, "$250.00 of $1000.00 saved (25.00%)")
	assert.Contains(t, body, "$750.00 to go")
	assert.Contains(t, body, "Goal reached!")
	assert.Contains(t, body, `value="token-123"`)
	assert.Contains(t, body, "Goal progress updated!")
	assert.Contains(t, body, "Log out amy")
}

func TestRender_Error(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	err = r.Render(w, http.StatusNotFound, "error.html", Page{
		Data: struct {
			Status  int
			Message string
		}{http.StatusNotFound, "No such page."},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Page not found")
	assert.Contains(t, w.Body.String(), "Log in")
}

func TestRender_UnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	assert.Error(t, r.Render(w, http.StatusOK, "nope.html", Page{}))
	assert.Equal(t, 0, w.Body.Len())
}

func TestFuncs(t *testing.T) {
	width := funcs["width"].(func(decimal.Decimal, decimal.Decimal) string)
	assert.Equal(t, "50", width(decimal.NewFromInt(20), decimal.NewFromInt(40)))
	assert.Equal(t, "0", width(decimal.NewFromInt(20), decimal.Zero))

	clamp := funcs["clamp"].(func(float64) float64)
	assert.Equal(t, 100.0, clamp(250))
	assert.Equal(t, 0.0, clamp(-3))
	assert.Equal(t, 42.5, clamp(42.5))
}
