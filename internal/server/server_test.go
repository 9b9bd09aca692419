package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mixee/internal/config"
	"mixee/internal/content"
	"mixee/internal/domain/activity"
	"mixee/internal/server/handlers"
	activitysvc "mixee/internal/service/activity"
	"mixee/internal/service/schedule"
	"mixee/internal/service/setup"
)

type stubProber struct {
	err error
}

func (p stubProber) Probe(ctx context.Context, databaseURL string) error {
	return p.err
}

type fixture struct {
	pulse  *activitysvc.Pulse
	badges *activitysvc.NavigationBadges
	shell  *activity.Shell
	deps   Dependencies
}

func newFixture(t *testing.T, prober setup.Prober) *fixture {
	t.Helper()

	catalog, err := content.Default()
	require.NoError(t, err)

	rng := schedule.NewRand(7)
	pulseCfg := activitysvc.DefaultPulseConfig()
	pulseCfg.PresencePeriod = time.Hour
	pulseCfg.ContentPeriod = time.Hour
	pulseCfg.Generator.MinInterval = time.Hour
	pulseCfg.Generator.MaxInterval = time.Hour

	pulse, err := activitysvc.NewPulse(catalog, rng, pulseCfg, nil)
	require.NoError(t, err)
	t.Cleanup(pulse.Dispose)

	badgeCfg := activitysvc.DefaultBadgeConfig()
	badgeCfg.Period = time.Hour
	badges, err := activitysvc.NewNavigationBadges(catalog, rng, badgeCfg, nil)
	require.NoError(t, err)
	t.Cleanup(badges.Dispose)

	shell := activity.NewShell()

	return &fixture{
		pulse:  pulse,
		badges: badges,
		shell:  shell,
		deps: Dependencies{
			Pulse:    pulse,
			Badges:   badges,
			Shell:    shell,
			Sections: catalog.NavSections(),
			Setup:    setup.NewService(prober, time.Second),
		},
	}
}

func (f *fixture) router() http.Handler {
	return NewRouter(config.ServerConfig{CorsOrigins: []string{"*"}}, f.deps, zap.NewNop())
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	rec := do(t, newFixture(t, nil).router(), http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestPulseLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	r := f.router()

	rec := do(t, r, http.MethodGet, "/api/v1/pulse/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[handlers.PulseView](t, rec)
	assert.False(t, view.Active)
	assert.Equal(t, activity.ViewCollapsed, view.View)
	assert.Empty(t, view.Events)

	rec = do(t, r, http.MethodPut, "/api/v1/pulse/active", `{"active": true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[handlers.PulseView](t, rec)
	assert.True(t, view.Active)
	assert.Equal(t, 23, view.Stats.NearbyUsers)
	assert.Equal(t, 6058, view.Stats.VideosWatched)
	require.Len(t, view.Events, activitysvc.DefaultSeedCount)
	assert.Equal(t, "just now", view.Events[0].Age)
	assert.NotEmpty(t, view.Events[0].ID)

	rec = do(t, r, http.MethodPut, "/api/v1/pulse/active", `{"active": false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[handlers.PulseView](t, rec)
	assert.False(t, view.Active)
	assert.True(t, view.Stats.IsZero())
	assert.Empty(t, view.Events)
}

func TestPulseSetActive_BadRequests(t *testing.T) {
	r := newFixture(t, nil).router()

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPut, "/api/v1/pulse/active", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPut, "/api/v1/pulse/active", `{}`).Code)
}

func TestToggleView_LeavesSimulationAlone(t *testing.T) {
	f := newFixture(t, nil)
	r := f.router()
	f.pulse.SetActive(true)
	before := f.pulse.Stats()

	rec := do(t, r, http.MethodPost, "/api/v1/pulse/view/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"view": "expanded"}, decode[map[string]string](t, rec))

	assert.Equal(t, activity.ViewExpanded, f.shell.State())
	assert.True(t, f.pulse.Active())
	assert.Equal(t, before, f.pulse.Stats())
}

func TestBadges(t *testing.T) {
	f := newFixture(t, nil)
	r := f.router()

	rec := do(t, r, http.MethodPut, "/api/v1/badges/active", `{"active": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Active bool             `json:"active"`
		Badges []activity.Badge `json:"badges"`
	}](t, rec)
	assert.True(t, body.Active)
	require.NotEmpty(t, body.Badges)
	assert.Equal(t, "feed", body.Badges[0].Section)
	assert.Equal(t, 3, body.Badges[0].Count)
	assert.Equal(t, "3", body.Badges[0].Display)

	rec = do(t, r, http.MethodGet, "/api/v1/sections", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sections := decode[[]activity.Section](t, rec)
	assert.Len(t, sections, len(body.Badges))
}

func TestSetupValidate(t *testing.T) {
	r := newFixture(t, nil).router()
	key := "eyJ" + strings.Repeat("k", 120)

	rec := do(t, r, http.MethodPost, "/api/v1/setup/validate",
		`{"project_url": "https://abc.supabase.co", "anon_key": "`+key+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid": true}`, rec.Body.String())

	rec = do(t, r, http.MethodPost, "/api/v1/setup/validate", `{"project_url": "http://abc", "anon_key": "nope"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[struct {
		Errors []setup.FieldError `json:"errors"`
	}](t, rec)
	assert.Len(t, body.Errors, 2)
}

func TestSetupProbe(t *testing.T) {
	key := "eyJ" + strings.Repeat("k", 120)
	good := `{"project_url": "https://abc.supabase.co", "anon_key": "` + key + `", "database_url": "postgres://db"}`

	t.Run("reachable", func(t *testing.T) {
		rec := do(t, newFixture(t, stubProber{}).router(), http.MethodPost, "/api/v1/setup/probe", good)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unreachable", func(t *testing.T) {
		rec := do(t, newFixture(t, stubProber{err: context.DeadlineExceeded}).router(), http.MethodPost, "/api/v1/setup/probe", good)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("disabled without a prober", func(t *testing.T) {
		rec := do(t, newFixture(t, nil).router(), http.MethodPost, "/api/v1/setup/probe", good)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing database url", func(t *testing.T) {
		rec := do(t, newFixture(t, stubProber{}).router(), http.MethodPost, "/api/v1/setup/probe",
			`{"project_url": "https://abc.supabase.co", "anon_key": "`+key+`"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid form", func(t *testing.T) {
		rec := do(t, newFixture(t, stubProber{}).router(), http.MethodPost, "/api/v1/setup/probe",
			`{"project_url": "", "anon_key": "", "database_url": "postgres://db"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

type streamClient struct {
	t    *testing.T
	conn *websocket.Conn
	url  string
}

// startStream serves the fixture with a running hub and dials one client
func startStream(t *testing.T, f *fixture) *streamClient {
	t.Helper()

	hub := handlers.NewStreamHub(f.pulse, f.badges, f.shell, zap.NewNop())
	hub.Attach()
	f.deps.Hub = hub

	ctx, cancel := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	srv := httptest.NewServer(f.router())
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/pulse", nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		<-hubDone
		srv.Close()
	})

	return &streamClient{t: t, conn: conn, url: srv.URL}
}

func (c *streamClient) read() handlers.StreamMessage {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg handlers.StreamMessage
	require.NoError(c.t, c.conn.ReadJSON(&msg))
	return msg
}

// readUntil skips messages of other types
func (c *streamClient) readUntil(kind string) handlers.StreamMessage {
	c.t.Helper()
	for {
		if msg := c.read(); msg.Type == kind {
			return msg
		}
	}
}

func TestStream(t *testing.T) {
	f := newFixture(t, nil)
	client := startStream(t, f)
	conn, read := client.conn, client.read

	assert.Equal(t, "snapshot", read().Type)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "toggle_view"}))
	msg := read()
	assert.Equal(t, "view", msg.Type)
	assert.Equal(t, "expanded", msg.Payload)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "set_active", "active": true}))
	require.Eventually(t, f.pulse.Active, 2*time.Second, 5*time.Millisecond)

	msg = client.readUntil("event")
	payload, ok := msg.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, payload["id"])
}

func TestStream_ActivationPushesState(t *testing.T) {
	f := newFixture(t, nil)
	client := startStream(t, f)
	require.Equal(t, "snapshot", client.read().Type)

	require.NoError(t, client.conn.WriteJSON(map[string]interface{}{"type": "set_active", "active": true}))
	msg := client.readUntil("stats")
	assert.Equal(t, 23.0, msg.Payload.(map[string]interface{})["nearby_users"])

	seeded := 0
	for seeded < activitysvc.DefaultSeedCount {
		if client.read().Type == "event" {
			seeded++
		}
	}

	require.NoError(t, client.conn.WriteJSON(map[string]interface{}{"type": "set_active", "active": false}))
	msg = client.readUntil("stats")
	for name, v := range msg.Payload.(map[string]interface{}) {
		assert.Equal(t, 0.0, v, name)
	}
	assert.Equal(t, "cleared", client.readUntil("cleared").Type)
}

func TestStream_RestToggleReachesStream(t *testing.T) {
	f := newFixture(t, nil)
	client := startStream(t, f)
	require.Equal(t, "snapshot", client.read().Type)

	resp, err := http.Post(client.url+"/api/v1/pulse/view/toggle", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	msg := client.readUntil("view")
	assert.Equal(t, "expanded", msg.Payload)
}

func TestStream_SnapshotReflectsStateAtRegistration(t *testing.T) {
	f := newFixture(t, nil)
	f.pulse.SetActive(true)
	f.shell.Set(activity.ViewExpanded)

	client := startStream(t, f)
	msg := client.read()
	require.Equal(t, "snapshot", msg.Type)

	payload := msg.Payload.(map[string]interface{})
	assert.Equal(t, true, payload["active"])
	assert.Equal(t, "expanded", payload["view"])
	assert.Len(t, payload["events"], activitysvc.DefaultSeedCount)
}
