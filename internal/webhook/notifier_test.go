package webhook

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/statecast/statecast/internal/bus"
	"github.com/statecast/statecast/internal/config"
	"github.com/statecast/statecast/internal/topic"
)

// receiver records every POST body it gets.
type receiver struct {
	mu     sync.Mutex
	bodies []string
}

func (r *receiver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	r.bodies = append(r.bodies, string(body))
	r.mu.Unlock()
}

func (r *receiver) wait(t *testing.T, n int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		got := len(r.bodies)
		r.mu.Unlock()
		if got >= n {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.bodies) < n {
		t.Fatalf("deliveries: got %d, want %d", len(r.bodies), n)
	}
	return append([]string(nil), r.bodies...)
}

func newTestRegistry(t *testing.T) *topic.Registry {
	t.Helper()
	reg, err := topic.NewRegistry([]topic.Spec{
		{Name: "scoreChange", Fields: []string{"score"}},
		{Name: "teamNamesChange", Fields: []string{"p1name"}},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestBind_DeliversMatchingTopic(t *testing.T) {
	rec := &receiver{}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)
	t.Setenv("WH_TEST_URL", srv.URL)

	b := bus.New()
	New([]config.Webhook{{URLEnv: "WH_TEST_URL", Events: []string{"scoreChange"}}}).
		Bind(b, newTestRegistry(t))

	b.Publish("scoreChange", []byte(`{"type":"scoreUpdate","score":3}`))

	bodies := rec.wait(t, 1)
	if bodies[0] != `{"type":"scoreUpdate","score":3}` {
		t.Errorf("body: got %q", bodies[0])
	}
}

func TestBind_FilterExcludesOtherTopics(t *testing.T) {
	rec := &receiver{}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)
	t.Setenv("WH_TEST_URL", srv.URL)

	b := bus.New()
	New([]config.Webhook{{URLEnv: "WH_TEST_URL", Events: []string{"scoreChange"}}}).
		Bind(b, newTestRegistry(t))

	// The filtered-out topic gets no listener at all.
	if n := b.ListenerCount("teamNamesChange"); n != 0 {
		t.Errorf("teamNamesChange listeners: got %d, want 0", n)
	}
	if n := b.ListenerCount("scoreChange"); n != 1 {
		t.Errorf("scoreChange listeners: got %d, want 1", n)
	}
}

func TestBind_EmptyFilterTakesAllTopics(t *testing.T) {
	rec := &receiver{}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)
	t.Setenv("WH_TEST_URL", srv.URL)

	b := bus.New()
	New([]config.Webhook{{URLEnv: "WH_TEST_URL"}}).Bind(b, newTestRegistry(t))

	b.Publish("scoreChange", []byte(`{"a":1}`))
	b.Publish("teamNamesChange", []byte(`{"b":2}`))

	rec.wait(t, 2)
}

func TestBind_NoTargetsIsNoOp(t *testing.T) {
	b := bus.New()
	New(nil).Bind(b, newTestRegistry(t))

	if n := b.ListenerCount("scoreChange"); n != 0 {
		t.Errorf("listeners without targets: got %d, want 0", n)
	}
}

func TestDeliver_FailureDoesNotAffectPublish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("WH_TEST_URL", srv.URL)

	b := bus.New()
	New([]config.Webhook{{URLEnv: "WH_TEST_URL"}}).Bind(b, newTestRegistry(t))

	received := false
	b.Subscribe("scoreChange", func([]byte) error { received = true; return nil })

	// A failing webhook target must not break fan-out to other listeners.
	b.Publish("scoreChange", []byte(`{"x":1}`))

	if !received {
		t.Error("listener after failing webhook target not reached")
	}
}
