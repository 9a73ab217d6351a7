package parser

import (
	"strings"

	"promptmeta/internal/png"

	"github.com/tidwall/gjson"
)

const (
	PromptKeyword   = "prompt"
	WorkflowKeyword = "workflow"

	clipTextEncode = "CLIPTextEncode"
	kSampler       = "KSampler"
)

// samplerSettings maps KSampler input names to setting labels, in display order.
var samplerSettings = []struct {
	input string
	label string
}{
	{"steps", "steps"},
	{"cfg", "cfg"},
	{"cfg_scale", "cfg_scale"},
	{"sampler_name", "sampler"},
	{"scheduler", "scheduler"},
	{"seed", "seed"},
	{"denoise", "denoise"},
}

// Extract recovers prompts and sampler settings from the first "prompt"
// chunk. It never fails: unexpected input yields a partial or empty payload.
//
// The chunk text is read as a ComfyUI API graph, either a flat id->node
// object or one wrapped in "nodes". Prompts come from the conditioning
// inputs of KSampler nodes, falling back to the first two CLIPTextEncode
// nodes. The first value found for any field wins.
func Extract(chunks []png.TextChunk) PromptPayload {
	var payload PromptPayload

	chunk, ok := png.First(chunks, PromptKeyword)
	if !ok {
		return payload
	}

	if !gjson.Valid(chunk.Text) {
		text := chunk.Text
		payload.Positive = &text
		return payload
	}
	parsed := gjson.Parse(chunk.Text)
	if parsed.Type == gjson.String {
		text := parsed.String()
		payload.Positive = &text
		return payload
	}
	root, ok := asObject(parsed)
	if !ok {
		return payload
	}

	container := root
	if v, ok := root.get("nodes"); ok {
		if nested, ok := asObject(v); ok {
			container = nested
		}
	}

	var (
		nodes []node
		byID  = make(map[string]node)
		clips []string
	)
	for _, id := range container.keys {
		n, ok := asNode(id, container.fields[id])
		if !ok {
			continue
		}
		nodes = append(nodes, n)
		byID[id] = n
		if n.classType == clipTextEncode {
			if text, ok := n.text(); ok {
				clips = append(clips, text)
			}
		}
	}

	for _, n := range nodes {
		if n.inputs == nil || !strings.Contains(n.classType, kSampler) {
			continue
		}
		if payload.Positive == nil {
			payload.Positive = linkedText(n.inputs, "positive", byID)
		}
		if payload.Negative == nil {
			payload.Negative = linkedText(n.inputs, "negative", byID)
		}
		for _, s := range samplerSettings {
			if _, ok := payload.Settings.Get(s.label); ok {
				continue
			}
			v, ok := n.inputs.get(s.input)
			if !ok {
				continue
			}
			if value, ok := scalar(v); ok {
				payload.Settings.add(s.label, value)
			}
		}
	}

	if payload.Positive == nil && len(clips) > 0 {
		payload.Positive = &clips[0]
	}
	if payload.Negative == nil && len(clips) > 1 {
		payload.Negative = &clips[1]
	}
	return payload
}

// linkedText follows a conditioning input to the node it references and
// returns that node's text input.
func linkedText(inputs *object, name string, byID map[string]node) *string {
	v, ok := inputs.get(name)
	if !ok {
		return nil
	}
	id, ok := connection(v)
	if !ok {
		return nil
	}
	target, ok := byID[id]
	if !ok {
		return nil
	}
	text, ok := target.text()
	if !ok {
		return nil
	}
	return &text
}
