package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skydentango/ping-social-app/internal/auth"
	"github.com/skydentango/ping-social-app/internal/engine"
	"github.com/skydentango/ping-social-app/internal/groups"
	"github.com/skydentango/ping-social-app/internal/handlers"
	"github.com/skydentango/ping-social-app/internal/middleware"
	"github.com/skydentango/ping-social-app/internal/models"
	"github.com/skydentango/ping-social-app/internal/routes"
	"github.com/skydentango/ping-social-app/internal/store/memory"
	"github.com/skydentango/ping-social-app/internal/users"
	"github.com/skydentango/ping-social-app/internal/ws"
)

type testAPI struct {
	app *fiber.App
	st  *memory.Store
	jwt *auth.JWTManager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	log := zap.NewNop().Sugar()
	st := memory.New()
	jwtm := auth.NewJWTManager("test-secret")

	eng := engine.New(st, nil, log)
	builder := handlers.NewFeedBuilder(st, st, nil)
	hub := ws.NewHub(st, builder, nil, jwtm, log)

	pingH := handlers.NewPingHandler(eng, st, hub, builder, log)
	groupH := handlers.NewGroupHandler(groups.NewService(st, log))
	userH := handlers.NewUserHandler(users.NewService(st, log), nil)

	app := fiber.New()
	routes.Register(app,
		middleware.JWT(jwtm, log),
		middleware.RateLimit(nil, 0, log),
		hub, pingH, groupH, userH)

	return &testAPI{app: app, st: st, jwt: jwtm}
}

func (a *testAPI) token(t *testing.T, userID, email, name string) string {
	t.Helper()
	tok, err := a.jwt.Generate(userID, email, name, time.Hour)
	require.NoError(t, err)
	return tok
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodGet, "/api/v1/pings/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/api/v1/pings/", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMeCreatesProfile(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token(t, "u1", "alice@example.com", "Alice")

	resp := api.do(t, http.MethodGet, "/api/v1/me", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		User models.User `json:"user"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "u1", body.User.ID)
	assert.Equal(t, "Alice", body.User.DisplayName)
	assert.Equal(t, "🟢", body.User.Status.Emoji)
}

func TestComposeRespondFeed(t *testing.T) {
	api := newTestAPI(t)
	sender := api.token(t, "u1", "alice@example.com", "Alice")
	friend := api.token(t, "u2", "bob@example.com", "Bob")

	// Register both profiles so recipient labels resolve to names.
	for _, tok := range []string{sender, friend} {
		r := api.do(t, http.MethodGet, "/api/v1/me", tok, nil)
		require.Equal(t, http.StatusOK, r.StatusCode)
		r.Body.Close()
	}

	resp := api.do(t, http.MethodPost, "/api/v1/pings/", sender, fiber.Map{
		"message":     "coffee in 10?",
		"mode":        "friends",
		"friends":     []string{"u2"},
		"ttl_minutes": 30,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Ping models.Ping `json:"ping"`
	}
	decode(t, resp, &created)
	require.NotEmpty(t, created.Ping.ID)
	assert.ElementsMatch(t, []string{"u1", "u2"}, created.Ping.Recipients)
	require.NotNil(t, created.Ping.ExpiresAt)

	// Friend answers yes.
	resp = api.do(t, http.MethodPost, "/api/v1/pings/"+created.Ping.ID+"/respond", friend, fiber.Map{
		"response": "yes",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var answered struct {
		Summary engine.Summary `json:"summary"`
	}
	decode(t, resp, &answered)
	assert.Equal(t, 1, answered.Summary.Yes)
	assert.Equal(t, models.ResponseYes, answered.Summary.OwnResponse)

	// Same answer again withdraws it.
	resp = api.do(t, http.MethodPost, "/api/v1/pings/"+created.Ping.ID+"/respond", friend, fiber.Map{
		"response": "yes",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &answered)
	assert.Equal(t, 0, answered.Summary.Yes)
	assert.Empty(t, answered.Summary.OwnResponse)

	// Feed shows the ping to a recipient.
	resp = api.do(t, http.MethodGet, "/api/v1/pings/", friend, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var feed struct {
		Items []handlers.FeedItem `json:"items"`
	}
	decode(t, resp, &feed)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, created.Ping.ID, feed.Items[0].Ping.ID)
	assert.Equal(t, "Bob", feed.Items[0].Recipients)

	// And hides it from everyone else.
	outsider := api.token(t, "u3", "", "")
	resp = api.do(t, http.MethodGet, "/api/v1/pings/", outsider, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &feed)
	assert.Empty(t, feed.Items)
}

func TestComposeValidation(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token(t, "u1", "", "")

	resp := api.do(t, http.MethodPost, "/api/v1/pings/", tok, fiber.Map{
		"message": "",
		"mode":    "friends",
		"friends": []string{"u2"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/api/v1/pings/", tok, fiber.Map{
		"message":     "late one",
		"mode":        "friends",
		"friends":     []string{"u2"},
		"ttl_minutes": 10081,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRespondAuthorization(t *testing.T) {
	api := newTestAPI(t)
	sender := api.token(t, "u1", "", "")

	resp := api.do(t, http.MethodPost, "/api/v1/pings/", sender, fiber.Map{
		"message": "lunch?",
		"mode":    "friends",
		"friends": []string{"u2"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Ping models.Ping `json:"ping"`
	}
	decode(t, resp, &created)

	outsider := api.token(t, "u9", "", "")
	resp = api.do(t, http.MethodPost, "/api/v1/pings/"+created.Ping.ID+"/respond", outsider, fiber.Map{
		"response": "yes",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/api/v1/pings/unknown/respond", sender, fiber.Map{
		"response": "yes",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeletePing(t *testing.T) {
	api := newTestAPI(t)
	sender := api.token(t, "u1", "", "")
	other := api.token(t, "u2", "", "")

	resp := api.do(t, http.MethodPost, "/api/v1/pings/", sender, fiber.Map{
		"message": "movie night",
		"mode":    "friends",
		"friends": []string{"u2"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Ping models.Ping `json:"ping"`
	}
	decode(t, resp, &created)

	resp = api.do(t, http.MethodDelete, "/api/v1/pings/"+created.Ping.ID, other, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = api.do(t, http.MethodDelete, "/api/v1/pings/"+created.Ping.ID, sender, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/api/v1/pings/", sender, nil)
	var feed struct {
		Items []handlers.FeedItem `json:"items"`
	}
	decode(t, resp, &feed)
	assert.Empty(t, feed.Items)
}

func TestGroupLifecycle(t *testing.T) {
	api := newTestAPI(t)
	creator := api.token(t, "u1", "", "")
	member := api.token(t, "u2", "", "")

	resp := api.do(t, http.MethodPost, "/api/v1/groups/", creator, fiber.Map{
		"name":    "climbing crew",
		"friends": []string{"u2", "u3"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Group models.Group `json:"group"`
	}
	decode(t, resp, &created)
	assert.Equal(t, "climbing crew", created.Group.Name)
	assert.Equal(t, []string{"u1", "u2", "u3"}, created.Group.Members)

	// Members see the group in their list.
	resp = api.do(t, http.MethodGet, "/api/v1/groups/", member, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed struct {
		Groups []models.Group `json:"groups"`
	}
	decode(t, resp, &listed)
	require.Len(t, listed.Groups, 1)

	// Only the creator can rename or delete.
	resp = api.do(t, http.MethodPut, "/api/v1/groups/"+created.Group.ID, member, fiber.Map{
		"name": "hijacked",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = api.do(t, http.MethodPut, "/api/v1/groups/"+created.Group.ID, creator, fiber.Map{
		"name": "boulder crew",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.do(t, http.MethodDelete, "/api/v1/groups/"+created.Group.ID, creator, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/api/v1/groups/"+created.Group.ID, creator, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatusUpdate(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token(t, "u1", "alice@example.com", "Alice")

	// Profile must exist first.
	resp := api.do(t, http.MethodGet, "/api/v1/me", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = api.do(t, http.MethodPut, "/api/v1/me/status", tok, fiber.Map{
		"emoji": "🔴",
		"text":  "Busy",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		User models.User `json:"user"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "🔴", body.User.Status.Emoji)
	assert.Equal(t, "Busy", body.User.Status.Text)
}

func TestOnlineWithoutPresenceBackend(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token(t, "u1", "", "")

	resp := api.do(t, http.MethodGet, "/api/v1/users/online", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Online []string `json:"online"`
	}
	decode(t, resp, &body)
	assert.Empty(t, body.Online)
}
