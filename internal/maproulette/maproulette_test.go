package maproulette

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas-checks/internal/checks"
	"atlas-checks/internal/flag"
)

const pointGeometry = `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{}}]}`

// fakeServer：内存中的项目/挑战/任务
type fakeServer struct {
	mu         sync.Mutex
	projects   map[string]Project
	challenges map[string]ChallengePayload
	tasks      []flag.Task
	batches    int32
	nextID     int64
}

func newFakeServer() *fakeServer {
	return &fakeServer{projects: map[string]Project{}, challenges: map[string]ChallengePayload{}, nextID: 100}
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("apiKey") != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/v2/projectByName/"):
		p, ok := f.projects[strings.TrimPrefix(r.URL.Path, "/api/v2/projectByName/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(p)
	case r.Method == http.MethodPost && r.URL.Path == "/api/v2/project":
		var p Project
		_ = json.NewDecoder(r.Body).Decode(&p)
		f.nextID++
		p.ID = f.nextID
		f.projects[p.Name] = p
		_ = json.NewEncoder(w).Encode(p)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/v2/project/"):
		ch, ok := f.challenges[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(ch)
	case r.Method == http.MethodPost && r.URL.Path == "/api/v2/challenge":
		var ch ChallengePayload
		_ = json.NewDecoder(r.Body).Decode(&ch)
		f.nextID++
		ch.ID = f.nextID
		f.challenges[fmt.Sprintf("/api/v2/project/%d/challenge/%s", ch.Parent, ch.Name)] = ch
		_ = json.NewEncoder(w).Encode(ch)
	case r.Method == http.MethodPost && r.URL.Path == "/api/v2/tasks":
		var batch []flag.Task
		_ = json.NewDecoder(r.Body).Decode(&batch)
		atomic.AddInt32(&f.batches, 1)
		f.tasks = append(f.tasks, batch...)
		w.WriteHeader(http.StatusCreated)
	default:
		w.WriteHeader(http.StatusTeapot)
	}
}

func records(check string, n int) []flag.Record {
	out := make([]flag.Record, n)
	for i := range out {
		out[i] = flag.Record{Check: check, Country: "USA", Identifier: fmt.Sprint(i + 1), Instructions: "fix", Geometry: json.RawMessage(pointGeometry)}
	}
	return out
}

func TestUploadRecords(t *testing.T) {
	fake := newFakeServer()
	srv := httptest.NewServer(fake)
	defer srv.Close()
	c := &Client{BaseURL: srv.URL, APIKey: "secret", HTTP: srv.Client()}

	list := append(records("PoolSizeCheck", 3), records("LongNameCheck", BatchSize+2)...)
	challengeFor := func(check string) checks.Challenge {
		return checks.Challenge{Name: check, Description: "d", Difficulty: checks.DifficultyExpert, DefaultPriority: checks.PriorityLow}
	}
	n, err := UploadRecords(context.Background(), c, "Atlas", list, challengeFor)
	require.NoError(t, err)
	assert.Equal(t, BatchSize+5, n)
	assert.Len(t, fake.tasks, BatchSize+5)
	assert.Equal(t, int32(3), fake.batches)
	require.Contains(t, fake.projects, "Atlas")
	assert.Len(t, fake.challenges, 2)
	for _, ch := range fake.challenges {
		assert.Equal(t, fake.projects["Atlas"].ID, ch.Parent)
		assert.Equal(t, 3, ch.Difficulty)
		assert.Equal(t, 2, ch.DefaultPriority)
	}
	for _, task := range fake.tasks {
		assert.NotZero(t, task.Parent)
	}

	// 再次上传复用已有项目与挑战
	_, err = UploadRecords(context.Background(), c, "Atlas", records("PoolSizeCheck", 1), nil)
	require.NoError(t, err)
	assert.Len(t, fake.projects, 1)
	assert.Len(t, fake.challenges, 2)
}

func TestUnauthorized(t *testing.T) {
	srv := httptest.NewServer(newFakeServer())
	defer srv.Close()
	c := &Client{BaseURL: srv.URL, APIKey: "wrong", HTTP: srv.Client()}
	_, err := c.EnsureProject(context.Background(), "Atlas")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := &Client{BaseURL: srv.URL, APIKey: "k"}
	err := c.UploadTasks(context.Background(), 1, []flag.Task{{Name: "1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("MAPROULETTE_API_KEY", "")
	_, err := NewFromEnv()
	assert.ErrorIs(t, err, ErrMissingKey)

	t.Setenv("MAPROULETTE_API_KEY", "k")
	t.Setenv("MAPROULETTE_SERVER", "http://mr.local/")
	c, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://mr.local", c.BaseURL)
}

func TestPayloadFrom(t *testing.T) {
	p := payloadFrom(7, checks.Challenge{Name: "X", HighPriorityRule: map[string]any{"condition": "OR"}})
	assert.Equal(t, int64(7), p.Parent)
	assert.Equal(t, `{"condition":"OR"}`, p.HighPriorityRule)
	assert.Equal(t, 1, p.Difficulty)
	assert.Equal(t, -1, p.DefaultPriority)
	assert.Empty(t, p.LowPriorityRule)
}
