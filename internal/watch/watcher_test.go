package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, files []string) <-chan struct{} {
	t.Helper()
	changed := make(chan struct{}, 10)

	w, err := New(files, 50*time.Millisecond, func(ctx context.Context) {
		changed <- struct{}{}
	})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(w.Stop)

	return changed
}

func TestWatcher_CallsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classrooms.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0644))

	changed := startWatcher(t, []string{path})

	// A burst of writes settles into one call
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`[{"classroom": "R1", "description": "d", "images": []}]`), 0644))
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("onChange was not called after the payload file changed")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classrooms.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0644))

	changed := startWatcher(t, []string{path})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644))

	select {
	case <-changed:
		t.Fatal("onChange was called for an unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_RenameReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "images.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0644))

	changed := startWatcher(t, []string{path})

	tmp := filepath.Join(dir, "images.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`[{"image_name": "x", "image": "enc"}]`), 0644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("onChange was not called after the payload file was replaced")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "missing", "classrooms.json")}, 0, func(ctx context.Context) {})
	require.NoError(t, err)
	defer w.Stop()

	require.Error(t, w.Start(context.Background()))
}

func TestWatcher_StopWaitsForRunningReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classrooms.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0644))

	entered := make(chan struct{}, 10)
	release := make(chan struct{})
	w, err := New([]string{path}, 50*time.Millisecond, func(ctx context.Context) {
		entered <- struct{}{}
		<-release
	})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(path, []byte(`[{"classroom": "R1", "description": "d", "images": []}]`), 0644))
	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		close(release)
		w.Stop()
		t.Fatal("onChange was not called after the payload file changed")
	}

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		close(release)
		t.Fatal("Stop returned while onChange was still running")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after onChange finished")
	}
}

func TestWatcher_StopCancelsPendingReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "images.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0644))

	called := make(chan struct{}, 10)
	w, err := New([]string{path}, time.Hour, func(ctx context.Context) {
		called <- struct{}{}
	})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(path, []byte(`[{"image_name": "x", "image": "enc"}]`), 0644))
	time.Sleep(200 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop hung on a reload that had not fired yet")
	}
	require.Empty(t, called)
}
