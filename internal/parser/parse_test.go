package parser_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"promptmeta/internal/parser"
	"promptmeta/internal/png"

	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, texts ...[2]string) string {
	t.Helper()
	buf := append([]byte{}, png.Signature...)
	for _, kv := range texts {
		data := append([]byte(kv[0]), 0)
		data = append(data, kv[1]...)
		chunk := make([]byte, 8+len(data)+4)
		binary.BigEndian.PutUint32(chunk, uint32(len(data)))
		copy(chunk[4:], "tEXt")
		copy(chunk[8:], data)
		buf = append(buf, chunk...)
	}
	path := filepath.Join(t.TempDir(), "sample.png")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestParseFile(t *testing.T) {
	path := writePNG(t, [2]string{"prompt", basicGraph}, [2]string{"workflow", `{"nodes":[]}`})

	md, err := parser.ParseFile(path)
	require.NoError(t, err)
	require.Equal(t, path, md.Path)
	require.Len(t, md.Chunks, 2)
	require.Equal(t, basicGraph, md.Prompt)
	require.Equal(t, `{"nodes":[]}`, md.Workflow)
	require.Equal(t, "a cat", *md.Payload.Positive)
}

func TestParseFileNotPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.png")
	require.NoError(t, os.WriteFile(path, []byte("JFIF"), 0o644))

	md, err := parser.ParseFile(path)
	require.ErrorIs(t, err, png.ErrNotPNG)
	require.Equal(t, path, md.Path)
}

func TestExtractChunk(t *testing.T) {
	testFile := writePNG(t, [2]string{"prompt", basicGraph}, [2]string{"workflow", `{"nodes":[]}`})

	prompt, workflow, err := parser.ExtractFileChunks(testFile)
	require.NoError(t, err)
	require.NotEmpty(t, prompt)
	require.NotEmpty(t, workflow)

	_, _, err = parser.ExtractFileChunks(writePNG(t, [2]string{"prompt", "p"}))
	require.ErrorContains(t, err, "workflow")
}
