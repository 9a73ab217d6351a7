package parser

import (
	"fmt"

	"promptmeta/internal/png"
)

// FileMetadata is everything read from one image.
type FileMetadata struct {
	Path     string
	Chunks   []png.TextChunk
	Payload  PromptPayload
	Prompt   string // raw "prompt" chunk text
	Workflow string // raw "workflow" chunk text
}

// ParseFile scans the text chunks of a PNG on disk and extracts its prompt payload.
func ParseFile(filepath string) (FileMetadata, error) {
	chunks, err := png.ReadFile(filepath)
	if err != nil {
		return FileMetadata{Path: filepath}, fmt.Errorf("error extracting chunks: %w", err)
	}
	return FromChunks(filepath, chunks), nil
}

func FromChunks(filepath string, chunks []png.TextChunk) FileMetadata {
	md := FileMetadata{
		Path:    filepath,
		Chunks:  chunks,
		Payload: Extract(chunks),
	}
	if c, ok := png.First(chunks, PromptKeyword); ok {
		md.Prompt = c.Text
	}
	if c, ok := png.First(chunks, WorkflowKeyword); ok {
		md.Workflow = c.Text
	}
	return md
}

// ExtractFileChunks returns the raw prompt and workflow texts of a file.
func ExtractFileChunks(filepath string) (string, string, error) {
	chunks, err := png.ReadFile(filepath)
	if err != nil {
		return "", "", fmt.Errorf("error extracting chunks: %w", err)
	}

	prompt, ok := png.First(chunks, PromptKeyword)
	if !ok {
		return "", "", fmt.Errorf("no 'prompt' chunk found")
	}

	workflow, ok := png.First(chunks, WorkflowKeyword)
	if !ok {
		return "", "", fmt.Errorf("no 'workflow' chunk found")
	}

	return prompt.Text, workflow.Text, nil
}
