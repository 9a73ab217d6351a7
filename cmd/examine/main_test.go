package main

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"promptmeta/internal/database"
	"promptmeta/internal/parser"
	"promptmeta/internal/png"
	"promptmeta/internal/render"

	"github.com/stretchr/testify/require"
)

const graph = `{"1":{"class_type":"CLIPTextEncode","inputs":{"text":"a cat"}},"3":{"class_type":"KSampler","inputs":{"steps":20,"positive":["1",0]}}}`

func writePNG(t *testing.T) string {
	t.Helper()
	data := append([]byte("prompt"), 0)
	data = append(data, graph...)
	chunk := make([]byte, 8+len(data)+4)
	binary.BigEndian.PutUint32(chunk, uint32(len(data)))
	copy(chunk[4:], "tEXt")
	copy(chunk[8:], data)
	path := filepath.Join(t.TempDir(), "sample.png")
	require.NoError(t, os.WriteFile(path, append(append([]byte{}, png.Signature...), chunk...), 0o644))
	return path
}

func TestExamineFile(t *testing.T) {
	path := writePNG(t)
	printer := render.NewPrinter("en")

	var b strings.Builder
	require.NoError(t, examineFile(&b, printer, path, options{chunks: true, raw: true}))
	out := b.String()
	require.Contains(t, out, "[tEXt] prompt: ")
	require.Contains(t, out, "Prompt:\n{\n")
	require.Contains(t, out, "Positive prompt:\na cat\n")
	require.Contains(t, out, "Negative prompt:\nnot found\n")
	require.Contains(t, out, "  steps  20\n")

	b.Reset()
	require.NoError(t, examineFile(&b, printer, path, options{asJSON: true}))
	require.JSONEq(t, `{"positive_prompt":"a cat","settings":{"steps":"20"}}`, b.String())
}

func TestExamineFileNotPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.png")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0o644))

	var b strings.Builder
	err := examineFile(&b, render.NewPrinter("ja"), path, options{})
	require.ErrorContains(t, err, "PNGシグネチャが一致しません")
}

func TestPrettyJSON(t *testing.T) {
	require.Equal(t, "not json", prettyJSON("not json"))
	require.Equal(t, "{\n  \"a\": 1\n}\n", prettyJSON(`{"a":1}`))
}

func TestExamineDatabase(t *testing.T) {
	dbpath := filepath.Join(t.TempDir(), "prompts.sqlite")
	md, err := parser.ParseFile(writePNG(t))
	require.NoError(t, err)
	require.NoError(t, database.WithDB(dbpath, func(db *database.DB) error {
		return db.InsertBatch(context.Background(), []database.FilePrompt{database.FromMetadata(md, nil)})
	}))

	var b strings.Builder
	require.NoError(t, examineDatabase(&b, render.NewPrinter("en"), dbpath, 10))
	require.Contains(t, b.String(), "File: "+md.Path)
	require.Contains(t, b.String(), "a cat")
}
