// Package render turns extracted prompt payloads into text for people.
// It owns every user-facing string so the parsing packages stay locale-neutral.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"promptmeta/internal/parser"
	"promptmeta/internal/png"
)

type messages struct {
	positive  string
	negative  string
	settings  string
	notFound  string
	badFormat string
	failed    string
}

var catalog = map[string]messages{
	"en": {
		positive:  "Positive prompt",
		negative:  "Negative prompt",
		settings:  "Settings",
		notFound:  "not found",
		badFormat: "The PNG signature does not match. Please choose a PNG file.",
		failed:    "Failed to read the PNG.",
	},
	"ja": {
		positive:  "ポジティブプロンプト",
		negative:  "ネガティブプロンプト",
		settings:  "生成設定",
		notFound:  "未検出",
		badFormat: "PNGシグネチャが一致しません。PNGファイルを選択してください。",
		failed:    "PNGの読み込みに失敗しました。",
	},
}

// Printer writes payloads in one locale. Unknown locales fall back to English.
type Printer struct {
	msg messages
}

func NewPrinter(locale string) Printer {
	msg, ok := catalog[strings.ToLower(locale)]
	if !ok {
		msg = catalog["en"]
	}
	return Printer{msg: msg}
}

// Row is one label/value line of output.
type Row struct {
	Label string
	Value string
}

// Rows lays a payload out the way it is displayed: both prompts, each with a
// placeholder when unset, followed by the settings.
func (p Printer) Rows(payload parser.PromptPayload) []Row {
	rows := []Row{
		{Label: p.msg.positive, Value: p.orNotFound(payload.Positive)},
		{Label: p.msg.negative, Value: p.orNotFound(payload.Negative)},
	}
	for _, s := range payload.Settings {
		rows = append(rows, Row{Label: s.Label, Value: s.Value})
	}
	return rows
}

func (p Printer) orNotFound(s *string) string {
	if s == nil {
		return p.msg.notFound
	}
	return *s
}

func (p Printer) Payload(w io.Writer, payload parser.PromptPayload) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n%s\n\n", p.msg.positive, p.orNotFound(payload.Positive))
	fmt.Fprintf(&b, "%s:\n%s\n\n", p.msg.negative, p.orNotFound(payload.Negative))
	fmt.Fprintf(&b, "%s:\n", p.msg.settings)
	if len(payload.Settings) == 0 {
		fmt.Fprintf(&b, "  %s\n", p.msg.notFound)
	}
	width := 0
	for _, s := range payload.Settings {
		width = max(width, len(s.Label))
	}
	for _, s := range payload.Settings {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, s.Label, s.Value)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Chunks lists every text chunk with its kind and keyword.
func (p Printer) Chunks(w io.Writer, chunks []png.TextChunk) error {
	var b strings.Builder
	for _, c := range chunks {
		fmt.Fprintf(&b, "[%s] %s: %s\n", c.Kind, c.Keyword, c.Text)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Error localizes scan failures; other errors get a generic message.
func (p Printer) Error(err error) string {
	var fe *png.FormatError
	if errors.As(err, &fe) && fe.Kind == png.KindBadSignature {
		return p.msg.badFormat
	}
	return p.msg.failed
}
