package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzwordStrategies/MarketingOS/internal/api/dto"
	"github.com/BuzzwordStrategies/MarketingOS/internal/api/handler"
	"github.com/BuzzwordStrategies/MarketingOS/internal/api/middleware"
	"github.com/BuzzwordStrategies/MarketingOS/internal/attribution"
	"github.com/BuzzwordStrategies/MarketingOS/internal/catalog"
	"github.com/BuzzwordStrategies/MarketingOS/internal/core/memory"
	"github.com/BuzzwordStrategies/MarketingOS/internal/domain"
	"github.com/BuzzwordStrategies/MarketingOS/internal/engine"
	"github.com/BuzzwordStrategies/MarketingOS/internal/executor"
	"github.com/BuzzwordStrategies/MarketingOS/internal/metrics"
)

const testSecret = "handler-test-secret"

func newTestRouter(t *testing.T) (*gin.Engine, *engine.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat := catalog.Default()
	notifier := memory.NewNotifier()
	eng := engine.New(
		cat,
		memory.NewStore(),
		notifier,
		executor.Simulated(time.Millisecond),
		attribution.NewHeuristic(7),
		metrics.New(prometheus.NewRegistry()),
		engine.Config{TaskTimeout: 5 * time.Second},
	)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = eng.Shutdown(ctx)
	})

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(testSecret))
	handler.NewWorkflowHandler(eng, cat, notifier).Register(api)
	return router, eng
}

func signToken(t *testing.T, actorID, ownerID uuid.UUID) string {
	t.Helper()
	claims := middleware.Claims{
		Org: ownerID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func executeBody() map[string]any {
	return map[string]any{
		"workflowType": "product-launch",
		"inputs": map[string]any{
			"productName":    "Acme CRM",
			"industry":       "SaaS",
			"targetAudience": "operations leads",
		},
	}
}

func TestRejectsUnauthenticatedRequests(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/workflows/execute", "", executeBody())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/workflows/execute", "not-a-jwt", executeBody())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRejectsTokenWithWrongKey(t *testing.T) {
	router, _ := newTestRouter(t)
	claims := middleware.Claims{
		Org:              uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-key"))
	require.NoError(t, err)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/workflows/running", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExecuteWorkflowAccepted(t *testing.T) {
	router, _ := newTestRouter(t)
	token := signToken(t, uuid.New(), uuid.New())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/workflows/execute", token, executeBody())
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp dto.ExecuteWorkflowResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Equal(t, string(domain.WorkflowPending), resp.Status)
	assert.Equal(t, 0, resp.Progress)
	assert.Equal(t, 45, resp.EstimatedDurationMinutes)
}

func TestExecuteWorkflowBadRequests(t *testing.T) {
	router, _ := newTestRouter(t)
	token := signToken(t, uuid.New(), uuid.New())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/workflows/execute", token, map[string]any{
		"workflowType": "no-such-workflow",
		"inputs":       map[string]any{"productName": "Acme"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/workflows/execute", token, map[string]any{
		"workflowType": "product-launch",
		"inputs":       map[string]any{"productName": "Acme"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "industry")

	rec = doRequest(t, router, http.MethodPost, "/api/v1/workflows/execute", token, map[string]any{
		"inputs": map[string]any{"productName": "Acme"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetExecution(t *testing.T) {
	router, _ := newTestRouter(t)
	token := signToken(t, uuid.New(), uuid.New())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/workflows/execute", token, executeBody())
	require.Equal(t, http.StatusAccepted, rec.Code)
	var created dto.ExecuteWorkflowResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doRequest(t, router, http.MethodGet, "/api/v1/workflows/"+created.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var execution domain.WorkflowExecution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &execution))
	assert.Equal(t, created.ID, execution.ID)
	assert.Len(t, execution.Tasks, 8)
}

func TestGetExecutionErrors(t *testing.T) {
	router, _ := newTestRouter(t)
	token := signToken(t, uuid.New(), uuid.New())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/workflows/"+uuid.NewString(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/workflows/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelExecution(t *testing.T) {
	router, eng := newTestRouter(t)
	token := signToken(t, uuid.New(), uuid.New())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/workflows/execute", token, executeBody())
	require.Equal(t, http.StatusAccepted, rec.Code)
	var created dto.ExecuteWorkflowResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doRequest(t, router, http.MethodPost, "/api/v1/workflows/"+created.ID.String()+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.CancelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, created.ID, resp.ID)

	// Wait for the execution to settle, then cancel again. A terminal
	// execution cancels without error.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		execution, err := eng.Get(context.Background(), created.ID)
		require.NoError(t, err)
		if execution.IsFinished() {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	rec = doRequest(t, router, http.MethodPost, "/api/v1/workflows/"+created.ID.String()+"/cancel", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/workflows/"+uuid.NewString()+"/cancel", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// hookedNotifier interposes on the in-memory notifier so tests can act
// inside the subscribe window and observe unsubscription.
type hookedNotifier struct {
	inner        *memory.Notifier
	onSubscribe  func()
	unsubscribed chan struct{}
}

func (n *hookedNotifier) PublishExecutionUpdated(ctx context.Context, execution *domain.WorkflowExecution) error {
	return n.inner.PublishExecutionUpdated(ctx, execution)
}

func (n *hookedNotifier) Subscribe(ctx context.Context, executionID uuid.UUID) (<-chan *domain.WorkflowExecution, func(), error) {
	ch, unsubscribe, err := n.inner.Subscribe(ctx, executionID)
	if err != nil {
		return nil, nil, err
	}
	if n.onSubscribe != nil {
		n.onSubscribe()
	}
	wrapped := func() {
		unsubscribe()
		if n.unsubscribed != nil {
			select {
			case <-n.unsubscribed:
			default:
				close(n.unsubscribed)
			}
		}
	}
	return ch, wrapped, nil
}

func newStreamServer(t *testing.T, store *memory.Store, notifier *hookedNotifier) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat := catalog.Default()
	eng := engine.New(
		cat,
		store,
		notifier,
		executor.Simulated(0),
		attribution.NewHeuristic(7),
		metrics.New(prometheus.NewRegistry()),
		engine.Config{TaskTimeout: 5 * time.Second},
	)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = eng.Shutdown(ctx)
	})

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(testSecret))
	handler.NewWorkflowHandler(eng, cat, notifier).Register(api)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func seedStoredExecution(t *testing.T, store *memory.Store) *domain.WorkflowExecution {
	t.Helper()
	def, err := catalog.Default().Lookup("product-launch")
	require.NoError(t, err)
	execution := domain.NewExecution(def, uuid.New(), uuid.New(), nil)
	require.NoError(t, store.CreateExecution(context.Background(), execution))
	return execution
}

func dialStream(t *testing.T, server *httptest.Server, executionID uuid.UUID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/workflows/" + executionID.String() + "/stream"
	header := http.Header{"Authorization": {"Bearer " + signToken(t, uuid.New(), uuid.New())}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestStreamDeliversSnapshotFinalizedDuringSubscribe(t *testing.T) {
	store := memory.NewStore()
	notifier := &hookedNotifier{inner: memory.NewNotifier()}
	execution := seedStoredExecution(t, store)

	// The execution reaches COMPLETED inside the subscribe window. The
	// stream must still surface a terminal snapshot, never hang on a
	// stale one.
	notifier.onSubscribe = func() {
		ctx := context.Background()
		require.NoError(t, store.FinalizeExecution(ctx, execution.ID, domain.WorkflowCompleted, 100, nil, time.Now()))
		snapshot, err := store.GetExecution(ctx, execution.ID)
		require.NoError(t, err)
		require.NoError(t, notifier.inner.PublishExecutionUpdated(ctx, snapshot))
	}

	server := newStreamServer(t, store, notifier)
	conn := dialStream(t, server, execution.ID)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	for {
		var snapshot domain.WorkflowExecution
		require.NoError(t, conn.ReadJSON(&snapshot))
		if snapshot.IsFinished() {
			assert.Equal(t, domain.WorkflowCompleted, snapshot.Status)
			assert.Equal(t, 100, snapshot.ProgressPercent)
			return
		}
	}
}

func TestStreamUnsubscribesWhenClientDisconnects(t *testing.T) {
	store := memory.NewStore()
	notifier := &hookedNotifier{inner: memory.NewNotifier(), unsubscribed: make(chan struct{})}
	execution := seedStoredExecution(t, store)

	server := newStreamServer(t, store, notifier)
	conn := dialStream(t, server, execution.ID)

	var snapshot domain.WorkflowExecution
	require.NoError(t, conn.ReadJSON(&snapshot))
	assert.Equal(t, domain.WorkflowPending, snapshot.Status)

	// The execution is not terminal, so only the client's close frame
	// can end the stream.
	require.NoError(t, conn.Close())

	select {
	case <-notifier.unsubscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("stream handler never released its subscription after client close")
	}
}

func TestListRunning(t *testing.T) {
	router, _ := newTestRouter(t)
	token := signToken(t, uuid.New(), uuid.New())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/workflows/running", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.RunningWorkflowsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Running)
}
