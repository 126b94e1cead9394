package domain

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cachesnap.dev/pkg/cachesnap/internal/adapter"
	m "cachesnap.dev/pkg/cachesnap/internal/model"
)

type dumpFixture struct {
	fs        afero.Fs
	residency *fakeResidency
	workflow  Workflow
}

func newDumpFixture(t *testing.T) *dumpFixture {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/work/sub", 0o755))
	require.NoError(t, fs.MkdirAll("/out", 0o755))

	writeMemFile(t, fs, "/work/a.txt", 3)
	writeMemFile(t, fs, "/work/sub/b.txt", 6)
	writeMemFile(t, fs, "/work/cold.txt", 2)
	require.NoError(t, afero.WriteFile(fs, "/work/empty.txt", nil, 0o644))

	residency := newFakeResidency()
	residency.setResident("/work/a.txt", 0, 1, 2)
	residency.setResident("/work/sub/b.txt", 5)

	return &dumpFixture{
		fs:        fs,
		residency: residency,
		workflow: NewWorkflow(
			adapter.NewSnapshotFSAdapter(fs),
			residency,
			adapter.NewGzipSnapshotStore(fs),
		),
	}
}

func (f *dumpFixture) readSnapshot(t *testing.T, path string) string {
	t.Helper()

	file, err := f.fs.Open(path)
	require.NoError(t, err)

	defer file.Close()

	zr, err := gzip.NewReader(file)
	require.NoError(t, err)

	data, err := io.ReadAll(zr)
	require.NoError(t, err)

	return string(data)
}

func defaultDumpArgs() DumpArgs {
	return DumpArgs{
		Root:   "/work",
		Output: "/out/snap.gz",
		Sink:   adapter.DefaultSinkOptions(),
	}
}

func TestWorkflow_Dump(t *testing.T) {
	f := newDumpFixture(t)

	stats, err := f.workflow.Dump(context.Background(), defaultDumpArgs())
	require.NoError(t, err)

	assert.Equal(t, "/work/a.txt\n0\n1\n1\n/work/sub/b.txt\n5\n", f.readSnapshot(t, "/out/snap.gz"))

	assert.Equal(t, m.Stats{
		Directories:        2,
		FilesSeen:          4,
		FilesScanned:       3,
		FilesSkipped:       1,
		FilesWithResidency: 2,
		ResidentPages:      4,
		ScannedBytes:       uint64(11 * adapter.PageSize()),
	}, stats)

	assert.Equal(t, f.residency.maps, f.residency.unmaps)
}

func TestWorkflow_DumpIsRepeatable(t *testing.T) {
	f := newDumpFixture(t)

	_, err := f.workflow.Dump(context.Background(), defaultDumpArgs())
	require.NoError(t, err)

	first := f.readSnapshot(t, "/out/snap.gz")

	_, err = f.workflow.Dump(context.Background(), defaultDumpArgs())
	require.NoError(t, err)

	assert.Equal(t, first, f.readSnapshot(t, "/out/snap.gz"))
}

func TestWorkflow_DumpFailFast(t *testing.T) {
	f := newDumpFixture(t)
	boom := errors.New("mincore: EINVAL")
	f.residency.failOn["/work/sub/b.txt"] = boom

	_, err := f.workflow.Dump(context.Background(), defaultDumpArgs())
	require.ErrorIs(t, err, boom)

	file, err := f.fs.Open("/out/snap.gz")
	require.NoError(t, err)

	defer file.Close()

	// The stream has no trailer, so decoding it must fail.
	zr, err := gzip.NewReader(file)
	if err == nil {
		_, err = io.ReadAll(zr)
	}

	require.Error(t, err)
	assert.Equal(t, f.residency.maps, f.residency.unmaps)
}

func TestWorkflow_DumpAtomic(t *testing.T) {
	t.Run("publishes on success", func(t *testing.T) {
		f := newDumpFixture(t)
		args := defaultDumpArgs()
		args.Sink.Atomic = true

		_, err := f.workflow.Dump(context.Background(), args)
		require.NoError(t, err)

		exists, err := afero.Exists(f.fs, "/out/snap.gz.tmp")
		require.NoError(t, err)
		assert.False(t, exists)
		assert.Contains(t, f.readSnapshot(t, "/out/snap.gz"), "/work/a.txt\n")
	})

	t.Run("leaves nothing on failure", func(t *testing.T) {
		f := newDumpFixture(t)
		f.residency.failOn["/work/a.txt"] = errors.New("boom")

		args := defaultDumpArgs()
		args.Sink.Atomic = true

		_, err := f.workflow.Dump(context.Background(), args)
		require.Error(t, err)

		for _, path := range []string{"/out/snap.gz", "/out/snap.gz.tmp"} {
			exists, err := afero.Exists(f.fs, path)
			require.NoError(t, err)
			assert.False(t, exists, path)
		}
	})
}

func TestWorkflow_DumpChunkingDoesNotChangeOutput(t *testing.T) {
	f := newDumpFixture(t)
	f.residency.setResident("/work/sub/b.txt", 0, 1, 2, 3, 5)

	args := defaultDumpArgs()
	args.ChunkPages = 2

	_, err := f.workflow.Dump(context.Background(), args)
	require.NoError(t, err)

	chunked := f.readSnapshot(t, "/out/snap.gz")

	args.ChunkPages = 0

	_, err = f.workflow.Dump(context.Background(), args)
	require.NoError(t, err)

	assert.Equal(t, f.readSnapshot(t, "/out/snap.gz"), chunked)
}

func TestWorkflow_DumpSkipsOwnFiles(t *testing.T) {
	f := newDumpFixture(t)
	writeMemFile(t, f.fs, "/work/dump.log", 1)
	f.residency.setResident("/work/dump.log", 0)

	args := defaultDumpArgs()
	args.Output = "/work/snap.gz"
	args.Exclude = []m.Path{"/work/dump.log"}

	_, err := f.workflow.Dump(context.Background(), args)
	require.NoError(t, err)

	snapshot := f.readSnapshot(t, "/work/snap.gz")
	assert.NotContains(t, snapshot, "dump.log")
	assert.NotContains(t, snapshot, "snap.gz")
}

func TestWorkflow_DumpRelativeRootKeepsPathPrefix(t *testing.T) {
	chdir(t, t.TempDir())

	fs := afero.NewOsFs()
	require.NoError(t, fs.MkdirAll("12", 0o755))
	writeMemFile(t, fs, "7", 1)
	writeMemFile(t, fs, "a.txt", 2)
	writeMemFile(t, fs, filepath.Join("12", "34"), 1)

	residency := newFakeResidency()
	residency.setResident("./7", 0)
	residency.setResident("./a.txt", 1)
	residency.setResident("./12/34", 0)

	wf := NewWorkflow(adapter.NewSnapshotFSAdapter(fs), residency, adapter.NewGzipSnapshotStore(fs))
	output := m.Path(filepath.Join(t.TempDir(), "snap.gz"))

	_, err := wf.Dump(context.Background(), DumpArgs{
		Root:   ".",
		Output: output,
		Sink:   adapter.DefaultSinkOptions(),
	})
	require.NoError(t, err)

	blocks, err := wf.Inspect(context.Background(), InspectArgs{Snapshot: output})
	require.NoError(t, err)

	assert.Equal(t, []m.Block{
		{Path: "./12/34", Pages: []m.PageIndex{0}},
		{Path: "./7", Pages: []m.PageIndex{0}},
		{Path: "./a.txt", Pages: []m.PageIndex{1}},
	}, blocks)
}

func TestWorkflow_DumpExcludesOwnFilesAcrossPathForms(t *testing.T) {
	root := t.TempDir()
	chdir(t, root)

	fs := afero.NewOsFs()
	names := []string{
		"data.bin",
		".cachesnap.log",
		".cachesnap-2026-10-19T10-00-00.000.log.gz",
		"snap.gz",
	}

	residency := newFakeResidency()
	for _, name := range names[:3] {
		writeMemFile(t, fs, filepath.Join(root, name), 1)
	}

	for _, name := range names {
		residency.setResident(filepath.Join(root, name), 0)
	}

	wf := NewWorkflow(adapter.NewSnapshotFSAdapter(fs), residency, adapter.NewGzipSnapshotStore(fs))

	stats, err := wf.Dump(context.Background(), DumpArgs{
		Root:    m.Path(root),
		Output:  "snap.gz",
		Sink:    adapter.DefaultSinkOptions(),
		Exclude: []m.Path{".cachesnap.log"},
	})
	require.NoError(t, err)

	// The snapshot already holds data.bin's block when the walk reaches it.
	assert.Equal(t, uint64(1), stats.FilesScanned)

	blocks, err := wf.Inspect(context.Background(), InspectArgs{Snapshot: "snap.gz"})
	require.NoError(t, err)

	assert.Equal(t, []m.Block{
		{Path: m.Path(filepath.Join(root, "data.bin")), Pages: []m.PageIndex{0}},
	}, blocks)
}

func TestExclusions(t *testing.T) {
	ex := newExclusions(DumpArgs{
		Output:  "/out/snap.gz",
		Exclude: []m.Path{"/var/log/app.log"},
	})

	tests := []struct {
		path string
		want bool
	}{
		{"/out/snap.gz", true},
		{"/out/../out/snap.gz", true},
		{"/out/snap.gz.tmp", true},
		{"/var/log/app.log", true},
		{"/var/log/app-2026-10-19T10-00-00.000.log", true},
		{"/var/log/app-2026-10-19T10-00-00.000.log.gz", true},
		{"/var/log/app-notes.txt", false},
		{"/var/log/other.log", false},
		{"/srv/app-2026-10-19T10-00-00.000.log", false},
		{"/out/snap.gz.bak", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ex.match(m.Path(tt.path)))
		})
	}
}

func TestWorkflow_Inspect(t *testing.T) {
	f := newDumpFixture(t)

	_, err := f.workflow.Dump(context.Background(), defaultDumpArgs())
	require.NoError(t, err)

	blocks, err := f.workflow.Inspect(context.Background(), InspectArgs{Snapshot: "/out/snap.gz"})
	require.NoError(t, err)

	assert.Equal(t, []m.Block{
		{Path: "/work/a.txt", Pages: []m.PageIndex{0, 1, 2}},
		{Path: "/work/sub/b.txt", Pages: []m.PageIndex{5}},
	}, blocks)
}

func TestWorkflow_InspectMissingSnapshot(t *testing.T) {
	f := newDumpFixture(t)

	_, err := f.workflow.Inspect(context.Background(), InspectArgs{Snapshot: "/out/none.gz"})
	require.Error(t, err)
}
