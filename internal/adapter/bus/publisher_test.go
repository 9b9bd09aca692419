package bus

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mixee/internal/content"
	activitysvc "mixee/internal/service/activity"
	"mixee/internal/service/schedule"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, published{subject: subject, data: data})
	return c.err
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = nil
}

func (c *fakeConn) subjects() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.msgs))
	for _, m := range c.msgs {
		out = append(out, m.subject)
	}
	return out
}

func newServices(t *testing.T) (*activitysvc.Pulse, *activitysvc.NavigationBadges) {
	t.Helper()

	catalog, err := content.Default()
	require.NoError(t, err)

	cfg := activitysvc.DefaultPulseConfig()
	cfg.PresencePeriod = time.Hour
	cfg.ContentPeriod = time.Hour
	cfg.Generator.MinInterval = time.Hour
	cfg.Generator.MaxInterval = time.Hour
	pulse, err := activitysvc.NewPulse(catalog, schedule.NewRand(11), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(pulse.Dispose)

	badgeCfg := activitysvc.DefaultBadgeConfig()
	badgeCfg.Period = time.Hour
	badges, err := activitysvc.NewNavigationBadges(catalog, schedule.NewRand(12), badgeCfg, nil)
	require.NoError(t, err)
	t.Cleanup(badges.Dispose)

	return pulse, badges
}

func TestPublisher_Subjects(t *testing.T) {
	p := NewPublisher(&fakeConn{}, "mixee.pulse", nil)
	assert.Equal(t, "mixee.pulse.stats", p.Subject("stats"))
}

func TestPublisher_ForwardsChanges(t *testing.T) {
	conn := &fakeConn{}
	pulse, badges := newServices(t)
	NewPublisher(conn, "mixee.pulse", nil).Attach(pulse, badges)

	pulse.SetActive(true)
	badges.SetActive(true)
	conn.reset()

	require.True(t, pulse.Counters().Tick(activitysvc.GroupPresence))
	require.True(t, pulse.Feed().Emit())
	require.True(t, badges.Tick())

	assert.Equal(t, []string{"mixee.pulse.stats", "mixee.pulse.event", "mixee.pulse.badges"}, conn.subjects())

	var n Notification
	require.NoError(t, json.Unmarshal(conn.msgs[0].data, &n))
	assert.Equal(t, "stats", n.Type)
	stats, ok := n.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, stats, "nearby_users")
}

func TestPublisher_FailuresDoNotStopTheSimulation(t *testing.T) {
	conn := &fakeConn{err: errors.New("nats: connection closed")}
	pulse, _ := newServices(t)
	NewPublisher(conn, "mixee.pulse", nil).Attach(pulse, nil)

	pulse.SetActive(true)
	conn.reset()
	for i := 0; i < 5; i++ {
		require.True(t, pulse.Feed().Emit())
	}

	assert.Len(t, pulse.RecentEvents(), activitysvc.DefaultFeedCapacity)
	assert.Len(t, conn.subjects(), 5)
}

func TestPublisher_ForwardsActivationChanges(t *testing.T) {
	conn := &fakeConn{}
	pulse, badges := newServices(t)
	NewPublisher(conn, "mixee.pulse", nil).Attach(pulse, badges)

	pulse.SetActive(true)
	subjects := conn.subjects()
	assert.Equal(t, []string{"mixee.pulse.stats", "mixee.pulse.stats"}, subjects[:2])
	assert.Len(t, subjects, 2+activitysvc.DefaultSeedCount)

	conn.reset()
	pulse.SetActive(false)
	assert.Equal(t, []string{"mixee.pulse.stats", "mixee.pulse.stats", "mixee.pulse.cleared"}, conn.subjects())

	var n Notification
	require.NoError(t, json.Unmarshal(conn.msgs[1].data, &n))
	assert.Equal(t, map[string]interface{}{
		"nearby_users": 0.0, "active_now": 0.0, "total_connections": 0.0, "videos_watched": 0.0, "new_posts": 0.0,
	}, n.Payload)
}
