// Package truncate bounds the serialized size of tool responses. Oversized
// payloads are rewritten rather than dropped: array tails and long strings
// are cut and replaced with markers so the result stays valid JSON and the
// caller can tell what was omitted.
package truncate

import (
	"encoding/json"
	"fmt"
	"sort"
)

// metadataReserve is the slack kept for the _metadata object attached to a
// truncated payload, so the final serialization still fits the budget.
const metadataReserve = 256

// Options are the truncation knobs. The fractions are configurable because
// there is no normative justification for any specific value; the defaults
// match the historical behavior.
type Options struct {
	// BudgetFraction is the portion of the working budget that may be filled
	// before a marker is emitted (default 0.9).
	BudgetFraction float64
	// NestedDivisor divides the budget when recursing into an oversized
	// array-valued object field (default 4).
	NestedDivisor int
	// NestedArrayMin is the element count above which an array-valued object
	// field is recursed into (default 10).
	NestedArrayMin int
	// MaxStringLen is the rune count above which string values inside objects
	// are clipped (default 1000).
	MaxStringLen int
}

// Metadata describes the outcome of a Bound call.
type Metadata struct {
	Size         int  `json:"size"`
	Truncated    bool `json:"truncated"`
	OriginalSize int  `json:"originalSize,omitempty"`
}

// Result carries the (possibly rewritten) payload and its size metadata.
type Result struct {
	Data     any      `json:"data"`
	Metadata Metadata `json:"metadata"`
}

// Truncator rewrites values to fit a byte budget. Truncation is
// deterministic: the same input and budget always produce the same cut
// points (first-fit accumulation, object keys visited in sorted order).
type Truncator struct {
	opts Options
}

// New creates a Truncator, filling zero options with defaults.
func New(opts Options) *Truncator {
	if opts.BudgetFraction <= 0 || opts.BudgetFraction > 1 {
		opts.BudgetFraction = 0.9
	}
	if opts.NestedDivisor < 1 {
		opts.NestedDivisor = 4
	}
	if opts.NestedArrayMin <= 0 {
		opts.NestedArrayMin = 10
	}
	if opts.MaxStringLen <= 0 {
		opts.MaxStringLen = 1000
	}
	return &Truncator{opts: opts}
}

// Bound returns v unchanged when its JSON serialization fits maxBytes.
// Otherwise it rewrites the value to fit and attaches a _metadata object
// with the original and truncated sizes and a hint to narrow the query.
func (t *Truncator) Bound(v any, maxBytes int) Result {
	originalSize := serializedSize(v)
	if originalSize <= 0 || originalSize <= maxBytes {
		return Result{
			Data:     v,
			Metadata: Metadata{Size: originalSize},
		}
	}

	working := maxBytes - metadataReserve
	if working < maxBytes/2 {
		working = maxBytes / 2
	}

	cut := t.truncateValue(normalize(v), working)
	cutSize := serializedSize(cut)

	payload, ok := cut.(map[string]any)
	if !ok {
		payload = map[string]any{"data": cut}
	}
	payload["_metadata"] = map[string]any{
		"truncated":     true,
		"originalSize":  originalSize,
		"truncatedSize": cutSize,
		"message": fmt.Sprintf(
			"Response truncated from %d to %d bytes. Narrow your query or reduce maxDepth for full detail.",
			originalSize, cutSize,
		),
	}

	return Result{
		Data: payload,
		Metadata: Metadata{
			Size:         serializedSize(payload),
			Truncated:    true,
			OriginalSize: originalSize,
		},
	}
}

// truncateValue dispatches on the normalized JSON shape.
func (t *Truncator) truncateValue(v any, budget int) any {
	switch val := v.(type) {
	case map[string]any:
		return t.truncateObject(val, budget)
	case []any:
		return t.truncateArray(val, budget)
	case string:
		return t.clipToBudget(val, budget)
	default:
		return v
	}
}

// truncateArray keeps a prefix of elements while the running serialized size
// stays under the fraction of the budget, then appends a single marker
// element naming the omitted count. Elements are taken whole; the tail is
// discarded, not summarized.
func (t *Truncator) truncateArray(arr []any, budget int) []any {
	target := int(float64(budget) * t.opts.BudgetFraction)

	running := 2 // brackets
	out := make([]any, 0, len(arr))
	for i, el := range arr {
		elSize := serializedSize(el) + 1
		if running+elSize > target {
			out = append(out, map[string]any{
				"_truncated": true,
				"message":    fmt.Sprintf("%d of %d items omitted", len(arr)-i, len(arr)),
			})
			return out
		}
		out = append(out, el)
		running += elSize
	}
	return arr
}

// truncateObject accumulates fields under the fraction of the budget,
// recursing into oversized array-valued fields with a divided budget and
// clipping long string values. On overflow a single _remaining marker field
// replaces the rest. Keys are visited in sorted order so cut points are
// reproducible.
func (t *Truncator) truncateObject(obj map[string]any, budget int) map[string]any {
	target := int(float64(budget) * t.opts.BudgetFraction)

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	running := 2 // braces
	modified := false
	out := make(map[string]any, len(obj))
	for i, k := range keys {
		v := obj[k]

		switch val := v.(type) {
		case string:
			if clipped, ok := t.clipString(val); ok {
				v = clipped
				modified = true
			}
		case []any:
			if len(val) > t.opts.NestedArrayMin {
				nested := t.truncateArray(val, budget/t.opts.NestedDivisor)
				if len(nested) != len(val) {
					modified = true
				}
				v = nested
			}
		}

		entrySize := len(k) + 3 + serializedSize(v) + 1 // quotes, colon, comma
		if running+entrySize > target {
			out["_remaining"] = fmt.Sprintf("%d of %d fields omitted", len(keys)-i, len(keys))
			return out
		}
		out[k] = v
		running += entrySize
	}

	if !modified {
		return obj
	}
	return out
}

// clipString returns the first MaxStringLen runes plus a suffix marker.
func (t *Truncator) clipString(s string) (string, bool) {
	runes := []rune(s)
	if len(runes) <= t.opts.MaxStringLen {
		return s, false
	}
	return string(runes[:t.opts.MaxStringLen]) + "... [truncated]", true
}

// clipToBudget cuts a bare string to the byte budget. Strings inside objects
// clip by rune count; a top-level string only reaches here when it alone
// blew the budget, so the cut is sized against the serialized length.
func (t *Truncator) clipToBudget(s string, budget int) string {
	target := int(float64(budget) * t.opts.BudgetFraction)
	if serializedSize(s) <= target {
		return s
	}
	runes := []rune(s)
	keep := len(runes)
	for keep > 0 && serializedSize(string(runes[:keep])+"... [truncated]") > target {
		keep = keep * 3 / 4
	}
	return string(runes[:keep]) + "... [truncated]"
}

// normalize round-trips v through JSON so the truncation pass sees only
// maps, slices, strings, numbers, bools, and nil.
func normalize(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

func serializedSize(v any) int {
	data, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return len(data)
}
