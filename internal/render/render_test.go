package render_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"promptmeta/internal/parser"
	"promptmeta/internal/png"
	"promptmeta/internal/render"

	"github.com/stretchr/testify/require"
)

func TestRows(t *testing.T) {
	positive := "a cat"
	payload := parser.PromptPayload{
		Positive: &positive,
		Settings: parser.Settings{{Label: "steps", Value: "20"}, {Label: "cfg", Value: "7.5"}},
	}

	rows := render.NewPrinter("en").Rows(payload)
	require.Equal(t, []render.Row{
		{Label: "Positive prompt", Value: "a cat"},
		{Label: "Negative prompt", Value: "not found"},
		{Label: "steps", Value: "20"},
		{Label: "cfg", Value: "7.5"},
	}, rows)

	rows = render.NewPrinter("ja").Rows(parser.PromptPayload{})
	require.Equal(t, "未検出", rows[0].Value)
	require.Equal(t, "未検出", rows[1].Value)
}

func TestPayload(t *testing.T) {
	negative := ""
	var b strings.Builder
	err := render.NewPrinter("fr").Payload(&b, parser.PromptPayload{
		Negative: &negative,
		Settings: parser.Settings{{Label: "sampler", Value: "euler"}, {Label: "seed", Value: "1"}},
	})
	require.NoError(t, err)
	require.Equal(t, "Positive prompt:\nnot found\n\n"+
		"Negative prompt:\n\n\n"+
		"Settings:\n"+
		"  sampler  euler\n"+
		"  seed     1\n", b.String())

	b.Reset()
	require.NoError(t, render.NewPrinter("en").Payload(&b, parser.PromptPayload{}))
	require.Contains(t, b.String(), "Settings:\n  not found\n")
}

func TestChunks(t *testing.T) {
	var b strings.Builder
	require.NoError(t, render.NewPrinter("en").Chunks(&b, []png.TextChunk{
		{Keyword: "prompt", Text: "{}", Kind: png.KindText},
		{Keyword: "parameters", Text: png.CompressedZTXt, Kind: png.KindZText},
	}))
	require.Equal(t, "[tEXt] prompt: {}\n[zTXt] parameters: [compressed zTXt data not decoded]\n", b.String())
}

func TestError(t *testing.T) {
	_, err := png.Scan([]byte("nope"))
	wrapped := fmt.Errorf("photo.png: %w", err)

	require.Equal(t, "PNGシグネチャが一致しません。PNGファイルを選択してください。", render.NewPrinter("ja").Error(wrapped))
	require.Contains(t, render.NewPrinter("en").Error(wrapped), "PNG signature")
	require.Equal(t, "Failed to read the PNG.", render.NewPrinter("en").Error(errors.New("disk on fire")))
}
