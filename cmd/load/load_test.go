package main

import (
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"promptmeta/internal/database"
	"promptmeta/internal/png"

	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path, prompt string) {
	t.Helper()
	data := append([]byte("prompt"), 0)
	data = append(data, prompt...)
	chunk := make([]byte, 8+len(data)+4)
	binary.BigEndian.PutUint32(chunk, uint32(len(data)))
	copy(chunk[4:], "tEXt")
	copy(chunk[8:], data)
	require.NoError(t, os.WriteFile(path, append(append([]byte{}, png.Signature...), chunk...), 0o644))
}

func TestGetPngPaths(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nested"), 0o755))
	writePNG(t, filepath.Join(root, "a.png"), "a")
	writePNG(t, filepath.Join(root, "nested", "b.PNG"), "b")
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))

	paths, err := getPngPaths(root)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{filepath.Join(root, "a.png"), filepath.Join(root, "nested", "b.PNG")}, paths)

	_, err = getPngPaths(t.TempDir())
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"1.png", "2.png", "3.png", "4.png", "5.png"} {
		writePNG(t, filepath.Join(root, name), `{"1": {"class_type": "CLIPTextEncode", "inputs": {"text": "prompt `+name+`"}}}`)
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.png"), []byte("GIF89a"), 0o644))

	paths, err := getPngPaths(root)
	require.NoError(t, err)
	require.Len(t, paths, 6)

	db, err := database.Open(filepath.Join(t.TempDir(), "prompts.sqlite"))
	require.NoError(t, err)
	defer db.Close()

	l := loader{
		db:        db,
		workers:   3,
		batchSize: 2,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		progress:  io.Discard,
	}
	stats, err := l.load(paths)
	require.NoError(t, err)
	require.Equal(t, loadStats{found: 6, processed: 6, failed: 1}, stats)

	fp, err := db.Get(context.Background(), filepath.Join(root, "3.png"))
	require.NoError(t, err)
	require.Equal(t, "prompt 3.png", fp.Positive.String)

	fp, err = db.Get(context.Background(), filepath.Join(root, "broken.png"))
	require.NoError(t, err)
	require.NotEmpty(t, fp.ParseError)

	// second run skips everything already stored
	stats, err = l.load(paths)
	require.NoError(t, err)
	require.Equal(t, loadStats{found: 6, skipped: 6}, stats)
}
