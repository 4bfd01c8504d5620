package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"gitlab.com/casesync.net/internal/adapter/logging"
)

func TestLogRequestsRecordsStatus(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	LogRequests(logging.NewZapLoggerWithCore(core))(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.php?/api/v2/get_suites/1", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	entries := logs.FilterMessage("Handled request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(http.StatusTeapot), entries[0].ContextMap()["status"])
	assert.Equal(t, "/index.php?/api/v2/get_suites/1", entries[0].ContextMap()["target"])
}
