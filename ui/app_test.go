package ui

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fastfisher/internal"
	"fastfisher/internal/referee"
)

func newTestApp(t *testing.T, withReferee bool) *App {
	t.Helper()
	logger := internal.NewLoggerTo(&bytes.Buffer{}, internal.LogLevelError, true)
	var ref *referee.Referee
	if withReferee {
		ref = referee.New(nil, referee.LogBinomialOracle{}, referee.Options{Logger: logger})
	}
	app, err := NewApp(nil, ref, Config{BenchIterations: 2, CompareSamples: 50, Seed: 7}, logger)
	require.NoError(t, err)
	return app
}

func get(app *App, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestIndex(t *testing.T) {
	w := get(newTestApp(t, true), "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "log-binomial")
	assert.Contains(t, w.Body.String(), `<a href="/bench">`)
}

func TestBench(t *testing.T) {
	w := get(newTestApp(t, true), "/bench?iterations=3")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, "two-tailed")
	assert.Contains(t, body, "log-binomial")
}

func TestCompare(t *testing.T) {
	w := get(newTestApp(t, true), "/compare?samples=40")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Regexp(t, `samples</td>\s*<td[^>]*>40</td>`, body)
	assert.Contains(t, body, "right-tailed")
}

func TestExceptions(t *testing.T) {
	w := get(newTestApp(t, true), "/exceptions")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "(2,3,0,2)")
}

func TestWithoutReferee(t *testing.T) {
	app := newTestApp(t, false)
	assert.Equal(t, http.StatusNotFound, get(app, "/compare").Code)
	assert.Equal(t, http.StatusNotFound, get(app, "/exceptions").Code)
	assert.Equal(t, http.StatusOK, get(app, "/bench").Code)
}

func TestBadParams(t *testing.T) {
	app := newTestApp(t, true)
	for _, target := range []string{"/bench?iterations=0", "/bench?iterations=x", "/compare?samples=-1", "/compare?samples=999999999"} {
		assert.Equal(t, http.StatusBadRequest, get(app, target).Code, target)
	}
}
