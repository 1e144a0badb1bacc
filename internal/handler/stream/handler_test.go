package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/sakhi/backend/internal/analysis/rules"
	chatservice "github.com/zhouzirui/sakhi/backend/internal/service/chat"
	"github.com/zhouzirui/sakhi/backend/internal/service/companion"
)

var eventLine = regexp.MustCompile(`(?m)^event: (\w+)$`)

func setup(t *testing.T) (*chi.Mux, string) {
	t.Helper()
	gen := companion.NewLocal(rules.NewMatcher(rules.DefaultTable(), rules.WithSeed(1)), 0, 0)
	chatSvc := chatservice.NewService(gen)

	session, err := chatSvc.Start(context.Background(), "", nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	New(chatSvc).RegisterRoutes(r)
	return r, session.ID
}

func TestStreamEmitsEventSequence(t *testing.T) {
	r, id := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/stream?message="+url.QueryEscape("I'm so stressed"), nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/event-stream", resp.Header().Get("Content-Type"))

	var names []string
	for _, m := range eventLine.FindAllStringSubmatch(resp.Body.String(), -1) {
		names = append(names, m[1])
	}
	require.NotEmpty(t, names)
	assert.Equal(t, "start", names[0])
	assert.Equal(t, "end", names[len(names)-1])
	assert.Contains(t, names, "message")
	assert.Contains(t, names, "status")
	assert.Contains(t, resp.Body.String(), `"author":"user"`)
	assert.Contains(t, resp.Body.String(), "I'm so stressed")
}

func TestStreamErrors(t *testing.T) {
	r, id := setup(t)

	cases := []struct {
		name string
		path string
		code int
	}{
		{"missing message", "/sessions/" + id + "/stream", http.StatusBadRequest},
		{"blank message", "/sessions/" + id + "/stream?message=%20", http.StatusBadRequest},
		{"unknown session", "/sessions/nope/stream?message=hi", http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.code, resp.Code)
			assert.Contains(t, resp.Header().Get("Content-Type"), "application/json")
		})
	}
}
