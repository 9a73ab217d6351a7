package parser

import (
	"cmp"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// object is a JSON object with the key order a browser would report:
// array-index keys ascending, then the remaining keys in document order.
// A repeated key keeps its first position and its last value.
type object struct {
	keys   []string
	fields map[string]gjson.Result
}

func asObject(r gjson.Result) (*object, bool) {
	if !r.IsObject() {
		return nil, false
	}
	o := &object{fields: make(map[string]gjson.Result)}
	var indexed []string
	r.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		if _, seen := o.fields[key]; !seen {
			if _, ok := arrayIndex(key); ok {
				indexed = append(indexed, key)
			} else {
				o.keys = append(o.keys, key)
			}
		}
		o.fields[key] = v
		return true
	})
	slices.SortFunc(indexed, func(a, b string) int {
		x, _ := arrayIndex(a)
		y, _ := arrayIndex(b)
		return cmp.Compare(x, y)
	})
	o.keys = append(indexed, o.keys...)
	return o, true
}

func (o *object) get(key string) (gjson.Result, bool) {
	if o == nil {
		return gjson.Result{}, false
	}
	v, ok := o.fields[key]
	return v, ok
}

func (o *object) str(key string) (string, bool) {
	v, ok := o.get(key)
	if !ok || v.Type != gjson.String {
		return "", false
	}
	return v.String(), true
}

func arrayIndex(key string) (uint64, bool) {
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == math.MaxUint32 || strconv.FormatUint(n, 10) != key {
		return 0, false
	}
	return n, true
}

// node is one entry of the prompt graph.
type node struct {
	id        string
	classType string
	inputs    *object
}

func asNode(id string, r gjson.Result) (node, bool) {
	o, ok := asObject(r)
	if !ok {
		return node{}, false
	}
	n := node{id: id}
	n.classType, _ = o.str("class_type")
	if v, ok := o.get("inputs"); ok {
		n.inputs, _ = asObject(v)
	}
	return n, true
}

func (n node) text() (string, bool) {
	return n.inputs.str("text")
}

// connection returns the node id of a [id, slot] link.
func connection(r gjson.Result) (string, bool) {
	if !r.IsArray() {
		return "", false
	}
	link := r.Array()
	if len(link) != 2 || link[0].Type != gjson.String {
		return "", false
	}
	return link[0].String(), true
}

var integerLiteral = regexp.MustCompile(`^-?[0-9]+$`)

// scalar renders a string, number or boolean the way it reads in the graph.
// Integer literals are kept digit for digit so 64-bit seeds survive.
func scalar(r gjson.Result) (string, bool) {
	switch r.Type {
	case gjson.String:
		return r.String(), true
	case gjson.True:
		return "true", true
	case gjson.False:
		return "false", true
	case gjson.Number:
		return formatNumber(r.Raw), true
	}
	return "", false
}

func formatNumber(raw string) string {
	if integerLiteral.MatchString(raw) {
		if strings.TrimLeft(raw, "-0") == "" {
			return "0"
		}
		return raw
	}
	f, _ := strconv.ParseFloat(raw, 64)
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	// 1.5e-07 -> 1.5e-7
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}
