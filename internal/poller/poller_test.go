package poller

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/services/scorebot/internal/providers/espn"
	"github.com/fortuna/services/scorebot/internal/sports/college_football"
	"github.com/fortuna/services/scorebot/internal/tracker"
	"github.com/fortuna/services/scorebot/pkg/contracts"
	"github.com/fortuna/services/scorebot/pkg/models"
)

type fakeFetcher struct {
	mu     sync.Mutex
	events []interface{}
	err    error
	calls  int
	path   string
}

func (f *fakeFetcher) set(events ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = events
	f.err = nil
}

func (f *fakeFetcher) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeFetcher) FetchScoreboard(_ context.Context, path string) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.path = path
	if f.err != nil {
		return nil, f.err
	}
	return map[string]interface{}{"events": f.events}, nil
}

type fakeAnnouncer struct {
	anns []models.Announcement
}

func (f *fakeAnnouncer) Announce(_ context.Context, anns []models.Announcement) {
	f.anns = append(f.anns, anns...)
}

type fakeOps struct {
	messages []string
}

func (f *fakeOps) Report(_ context.Context, msg string) {
	f.messages = append(f.messages, msg)
}

type fakeMirror struct {
	writes int
	err    error
}

func (f *fakeMirror) WriteSnapshot(_ context.Context, _ *models.Snapshot) error {
	f.writes++
	return f.err
}

func event(id, state, detail string, home, away int) map[string]interface{} {
	return map[string]interface{}{
		"id":     id,
		"date":   "2024-11-30T17:00Z",
		"status": map[string]interface{}{"type": map[string]interface{}{"state": state, "shortDetail": detail}},
		"competitions": []interface{}{
			map[string]interface{}{
				"competitors": []interface{}{
					map[string]interface{}{
						"id": "194", "homeAway": "home", "score": strconv.Itoa(home),
						"team": map[string]interface{}{"location": "Ohio State", "abbreviation": "OSU"},
					},
					map[string]interface{}{
						"id": "130", "homeAway": "away", "score": strconv.Itoa(away),
						"team": map[string]interface{}{"location": "Michigan", "abbreviation": "MICH"},
					},
				},
			},
		},
	}
}

type harness struct {
	poller    *Poller
	fetcher   *fakeFetcher
	announcer *fakeAnnouncer
	ops       *fakeOps
	mirror    *fakeMirror
	tracker   *tracker.Tracker
	clock     time.Time
}

func newHarness() *harness {
	h := &harness{
		fetcher:   &fakeFetcher{},
		announcer: &fakeAnnouncer{},
		ops:       &fakeOps{},
		mirror:    &fakeMirror{},
		tracker:   tracker.New(),
		clock:     time.Date(2024, 11, 30, 17, 0, 0, 0, time.UTC),
	}
	h.poller = NewPoller(college_football.NewFBS(), h.fetcher, h.tracker, h.announcer, h.ops, Options{
		Mirror: h.mirror,
	})
	h.poller.now = func() time.Time { return h.clock }
	return h
}

func (h *harness) tick(advance time.Duration) {
	h.clock = h.clock.Add(advance)
	h.poller.Tick(context.Background())
}

func TestTick_AnnouncesTransitions(t *testing.T) {
	h := newHarness()
	// keeps the tracker in active mode
	live := event("g0", "in", "3rd 1:00", 3, 3)

	h.fetcher.set(live, event("g1", "pre", "11/30 - 12:00 PM EST", 0, 0))
	h.tick(0)
	assert.Empty(t, h.announcer.anns, "first sighting is never announced")
	assert.Equal(t, 2, h.tracker.Snapshot().Len())
	assert.Equal(t, "/college-football/scoreboard/_/group/80", h.fetcher.path)

	h.fetcher.set(live, event("g1", "in", "1st 15:00", 0, 0))
	h.tick(10 * time.Second)
	require.Len(t, h.announcer.anns, 1)
	assert.Equal(t, models.KindGameStarted, h.announcer.anns[0].Kind)

	h.fetcher.set(live, event("g1", "in", "1st 9:12", 7, 0))
	h.tick(10 * time.Second)
	require.Len(t, h.announcer.anns, 2)
	assert.Equal(t, models.KindScore, h.announcer.anns[1].Kind)
	assert.Equal(t, models.ScoreDelta{Home: 7}, h.announcer.anns[1].Delta)

	assert.Equal(t, 3, h.mirror.writes)
}

func TestTick_FailureLeavesSnapshotAlone(t *testing.T) {
	h := newHarness()

	h.fetcher.set(event("g1", "in", "2nd 4:00", 3, 0))
	h.tick(0)
	before := h.tracker.Snapshot()

	h.fetcher.fail(espn.ErrTransport)
	h.tick(10 * time.Second)

	assert.Same(t, before, h.tracker.Snapshot())
	assert.Equal(t, tracker.ModeActive, h.tracker.Mode())
	assert.Equal(t, h.clock, h.tracker.LastPoll(), "failed attempts still stamp the poll time")
	require.Len(t, h.ops.messages, 1)
	assert.Equal(t, "Error retrieving scores: "+espn.ErrTransport.Error(), h.ops.messages[0])
	assert.Equal(t, 1, h.mirror.writes)
}

func TestTick_BadEventFailsWholePoll(t *testing.T) {
	h := newHarness()

	broken := event("g2", "in", "1st 1:00", 0, 0)
	delete(broken, "id")
	h.fetcher.set(event("g1", "in", "1st 1:00", 0, 0), broken)
	h.tick(0)

	assert.Equal(t, 0, h.tracker.Snapshot().Len())
	require.Len(t, h.ops.messages, 1)
	assert.Contains(t, h.ops.messages[0], "Error retrieving scores: ")
	assert.Contains(t, h.ops.messages[0], "missing required field")
}

func TestTick_InactiveThrottle(t *testing.T) {
	h := newHarness()

	h.fetcher.set(event("g1", "post", "Final", 24, 17))
	h.tick(0)
	assert.Equal(t, tracker.ModeInactive, h.tracker.Mode())
	assert.Equal(t, []string{"All games are inactive, disabling active mode."}, h.ops.messages)
	assert.Equal(t, 1, h.fetcher.calls)

	h.tick(time.Minute)
	assert.Equal(t, 1, h.fetcher.calls, "inactive mode waits for the inactive interval")

	h.fetcher.set(event("g1", "post", "Final", 24, 17), event("g2", "in", "1st 12:00", 0, 0))
	h.tick(4 * time.Minute)
	assert.Equal(t, 2, h.fetcher.calls)
	assert.Equal(t, tracker.ModeActive, h.tracker.Mode())
	assert.Equal(t, "At least one game is active, enabling active mode.", h.ops.messages[1])
}

func TestTick_MirrorFailureIsNotFatal(t *testing.T) {
	h := newHarness()
	h.mirror.err = errors.New("redis down")

	h.fetcher.set(event("g1", "in", "1st 1:00", 0, 0))
	h.tick(0)

	assert.Equal(t, 1, h.tracker.Snapshot().Len())
	assert.Empty(t, h.ops.messages)
}

func TestNewPoller_OptionsOverrideModule(t *testing.T) {
	p := NewPoller(college_football.NewFBS(), &fakeFetcher{}, tracker.New(), &fakeAnnouncer{}, &fakeOps{}, Options{})
	assert.Equal(t, 10*time.Second, p.Interval())

	assert.Equal(t, defaultFetchTimeout, p.fetchTimeout)

	p = NewPoller(college_football.NewFBS(), &fakeFetcher{}, tracker.New(), &fakeAnnouncer{}, &fakeOps{}, Options{
		Polling:      contracts.PollingConfig{Interval: 20 * time.Second, InactiveInterval: 2 * time.Minute},
		FetchTimeout: 5 * time.Second,
	})
	assert.Equal(t, 20*time.Second, p.Interval())
	assert.Equal(t, 2*time.Minute, p.polling.InactiveInterval)
	assert.Equal(t, 5*time.Second, p.fetchTimeout)
}

type countingTick struct {
	n atomic.Int32
}

func (c *countingTick) Tick(context.Context) {
	c.n.Add(1)
}

func TestScheduler(t *testing.T) {
	s := NewScheduler(context.Background())
	tick := &countingTick{}

	require.Error(t, s.Every(100*time.Millisecond, tick))
	require.NoError(t, s.Every(time.Hour, tick))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return tick.n.Load() == 1 }, time.Second, 10*time.Millisecond,
		"start fires an immediate tick")
}

// blockingTick holds the first tick until released
type blockingTick struct {
	started  chan struct{}
	release  chan struct{}
	finished atomic.Bool
}

func (b *blockingTick) Tick(context.Context) {
	close(b.started)
	<-b.release
	b.finished.Store(true)
}

func TestScheduler_StopWaitsForFirstTick(t *testing.T) {
	s := NewScheduler(context.Background())
	tick := &blockingTick{started: make(chan struct{}), release: make(chan struct{})}
	require.NoError(t, s.Every(time.Hour, tick))

	s.Start()
	<-tick.started

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the first tick was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(tick.release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the first tick finished")
	}
	assert.True(t, tick.finished.Load())
}
