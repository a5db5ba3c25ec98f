package bench

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecer records commands and serves canned results
type fakeExecer struct {
	calls    []string
	detached []string
	failOn   map[string]error
	outputs  map[string]string
}

func newFakeExecer() *fakeExecer {
	return &fakeExecer{
		failOn:  map[string]error{},
		outputs: map[string]string{},
	}
}

func key(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func (f *fakeExecer) Run(_ context.Context, _, name string, args ...string) error {
	k := key(name, args)
	f.calls = append(f.calls, k)
	return f.failOn[k]
}

func (f *fakeExecer) Output(_ context.Context, _, name string, args ...string) (string, error) {
	k := key(name, args)
	f.calls = append(f.calls, k)
	return f.outputs[k], f.failOn[k]
}

func (f *fakeExecer) StartDetached(_, name string, args ...string) error {
	k := key(name, args)
	f.detached = append(f.detached, k)
	return f.failOn[k]
}

func TestRunner_NewSite(t *testing.T) {
	fake := newFakeExecer()
	r := NewRunner("/srv/bench", fake, nil)

	require.NoError(t, r.NewSite(context.Background(), "site1.local", "admin"))
	assert.Equal(t, []string{"bench new-site site1.local --admin-password admin --no-mariadb-socket"}, fake.calls)
}

func TestRunner_InstallApp(t *testing.T) {
	fake := newFakeExecer()
	r := NewRunner("/srv/bench", fake, nil)
	ctx := context.Background()

	require.NoError(t, r.InstallApp(ctx, "site1.local", "library_app", false))
	require.NoError(t, r.InstallApp(ctx, "site1.local", "library_app", true))

	assert.Equal(t, []string{
		"bench --site site1.local install-app library_app",
		"bench --site site1.local install-app library_app --force",
	}, fake.calls)
}

func TestRunner_ListApps(t *testing.T) {
	fake := newFakeExecer()
	fake.outputs["bench list-apps --site site1.local"] = "frappe\nlibrary_app\n\n  \n"
	r := NewRunner("/srv/bench", fake, nil)

	apps, err := r.ListApps(context.Background(), "site1.local")
	require.NoError(t, err)
	assert.Equal(t, []string{"frappe", "library_app"}, apps)
}

func TestRunner_ClearCache(t *testing.T) {
	fake := newFakeExecer()
	r := NewRunner("/srv/bench", fake, nil)
	ctx := context.Background()

	require.NoError(t, r.ClearCache(ctx, ""))
	require.NoError(t, r.ClearCache(ctx, "site1.local"))
	require.NoError(t, r.ClearWebsiteCache(ctx, "site1.local"))

	assert.Equal(t, []string{
		"bench clear-cache",
		"bench --site site1.local clear-cache",
		"bench --site site1.local clear-website-cache",
	}, fake.calls)
}

func TestRunner_StartSkipsWhenRunning(t *testing.T) {
	fake := newFakeExecer()
	fake.outputs["pgrep -f bench start"] = "12345\n"
	r := NewRunner("/srv/bench", fake, nil)

	started, err := r.Start(context.Background())
	require.NoError(t, err)
	assert.False(t, started)
	assert.Empty(t, fake.detached)
}

func TestRunner_StartWhenNotRunning(t *testing.T) {
	fake := newFakeExecer()
	fake.failOn["pgrep -f bench start"] = assert.AnError
	r := NewRunner("/srv/bench", fake, nil)

	started, err := r.Start(context.Background())
	require.NoError(t, err)
	assert.True(t, started)
	assert.Equal(t, []string{"bench start"}, fake.detached)
}

func TestRunner_PipInstall(t *testing.T) {
	fake := newFakeExecer()
	r := NewRunner("/srv/bench", fake, nil)

	require.NoError(t, r.PipInstall(context.Background(), "/srv/bench/apps/library_app"))
	assert.Equal(t, []string{"/srv/bench/env/bin/python -m pip install -e /srv/bench/apps/library_app"}, fake.calls)
}

func TestRunner_ErrorsAreWrapped(t *testing.T) {
	fake := newFakeExecer()
	fake.failOn["bench --site site1.local migrate"] = assert.AnError
	r := NewRunner("/srv/bench", fake, nil)

	err := r.Migrate(context.Background(), "site1.local")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bench --site")
	assert.ErrorIs(t, err, assert.AnError)
}
