package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func TestDrainAndCloseRequest(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader("prompt=Write+about+cats")}
	req := httptest.NewRequest("POST", "/generate_blog", nil)
	req.Body = body

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	DrainAndCloseRequest()(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, called)
	assert.True(t, body.closed)
	rest, err := io.ReadAll(body.Reader)
	assert.NoError(t, err)
	assert.Empty(t, rest)
}
