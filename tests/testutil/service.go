package testutil

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Madmaxim22/HelpDesk/internal/server"
	"github.com/Madmaxim22/HelpDesk/internal/store"
)

// NewTestService starts the ticket service over an in-memory store and
// returns the running server together with its store. Both are torn down
// when the test completes.
func NewTestService(t *testing.T, opts server.Options) (*httptest.Server, *store.SQLStore) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	s := NewTestStore(t)
	srv := httptest.NewServer(server.New(s, zerolog.Nop(), opts).Router())
	t.Cleanup(srv.Close)

	return srv, s
}
