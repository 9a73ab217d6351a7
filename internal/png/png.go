package png

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// ChunkKind is the four-letter type tag of a textual PNG chunk.
type ChunkKind string

const (
	KindText  ChunkKind = "tEXt"
	KindIText ChunkKind = "iTXt"
	KindZText ChunkKind = "zTXt"
)

const (
	CompressedITXt = "[compressed iTXt data not decoded]"
	CompressedZTXt = "[compressed zTXt data not decoded]"
)

// Signature is the fixed 8-byte prefix of every PNG stream: 137 80 78 71 13 10 26 10.
var Signature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// TextChunk is one decoded tEXt, iTXt or zTXt chunk. Keywords are not unique.
type TextChunk struct {
	Keyword string    `json:"keyword"`
	Text    string    `json:"text"`
	Kind    ChunkKind `json:"kind"`
}

var (
	latin1   = charmap.ISO8859_1
	utf8Text = unicode.UTF8BOM
)

// Scan walks the chunk stream of a PNG held in memory and returns its text
// chunks in file order. The only error is a *FormatError for a missing
// signature; malformed chunks are dropped and a truncated tail ends the scan.
func Scan(data []byte) ([]TextChunk, error) {
	if !bytes.HasPrefix(data, Signature) {
		return nil, &FormatError{Kind: KindBadSignature}
	}

	chunks := []TextChunk{}
	offset := uint64(len(Signature))
	size := uint64(len(data))
	for offset+8 <= size {
		// Read length (4 bytes, big endian)
		length := uint64(binary.BigEndian.Uint32(data[offset : offset+4]))
		chunkType := string(data[offset+4 : offset+8])
		dataStart := offset + 8
		dataEnd := dataStart + length
		if dataEnd > size {
			break
		}

		body := data[dataStart:dataEnd]
		switch ChunkKind(chunkType) {
		case KindText:
			if c, ok := decodeText(body); ok {
				chunks = append(chunks, c)
			}
		case KindIText:
			if c, ok := decodeIText(body); ok {
				chunks = append(chunks, c)
			}
		case KindZText:
			if c, ok := decodeZText(body); ok {
				chunks = append(chunks, c)
			}
		}

		// skip the CRC, even if it is missing
		offset = dataEnd + 4
	}
	return chunks, nil
}

// ReadFile reads a PNG from disk and scans it.
func ReadFile(filename string) ([]TextChunk, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	chunks, err := Scan(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return chunks, nil
}

// First returns the first chunk carrying keyword.
func First(chunks []TextChunk, keyword string) (TextChunk, bool) {
	for _, c := range chunks {
		if c.Keyword == keyword {
			return c, true
		}
	}
	return TextChunk{}, false
}

// tEXt: keyword NUL value
func decodeText(body []byte) (TextChunk, bool) {
	sep := bytes.IndexByte(body, 0)
	if sep == -1 {
		return TextChunk{}, false
	}
	return TextChunk{
		Keyword: decodeString(body[:sep], latin1),
		Text:    decodeString(body[sep+1:], latin1),
		Kind:    KindText,
	}, true
}

// iTXt: keyword NUL flag method language NUL translated NUL text
func decodeIText(body []byte) (TextChunk, bool) {
	keywordEnd := bytes.IndexByte(body, 0)
	if keywordEnd == -1 {
		return TextChunk{}, false
	}
	keyword := decodeString(body[:keywordEnd], latin1)

	cursor := keywordEnd + 1
	compressed := cursor >= len(body) || body[cursor] != 0
	cursor += 2
	cursor = skipField(body, cursor) // language tag
	cursor = skipField(body, cursor) // translated keyword

	text := CompressedITXt
	if !compressed {
		text = ""
		if cursor < len(body) {
			text = decodeString(body[cursor:], utf8Text)
		}
	}
	return TextChunk{Keyword: keyword, Text: text, Kind: KindIText}, true
}

// zTXt: keyword NUL method compressed...
func decodeZText(body []byte) (TextChunk, bool) {
	sep := bytes.IndexByte(body, 0)
	if sep == -1 {
		return TextChunk{}, false
	}
	return TextChunk{
		Keyword: decodeString(body[:sep], latin1),
		Text:    CompressedZTXt,
		Kind:    KindZText,
	}, true
}

// skipField moves past a NUL-terminated field starting at cursor. Without a
// terminator the field is treated as empty and cursor is returned unchanged.
func skipField(body []byte, cursor int) int {
	if cursor >= len(body) {
		return cursor
	}
	end := bytes.IndexByte(body[cursor:], 0)
	if end == -1 {
		return cursor
	}
	return cursor + end + 1
}

func decodeString(b []byte, enc encoding.Encoding) string {
	s, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		s, _ = utf8Text.NewDecoder().Bytes(b)
	}
	return string(s)
}
