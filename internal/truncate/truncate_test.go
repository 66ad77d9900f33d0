package truncate

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestBound_UnderBudgetUnchanged(t *testing.T) {
	tr := New(Options{})
	value := map[string]any{"query": "foo", "totalResults": 2}

	res := tr.Bound(value, 1024)

	if res.Metadata.Truncated {
		t.Fatal("expected no truncation under budget")
	}
	if !reflect.DeepEqual(res.Data, value) {
		t.Errorf("expected value unchanged, got %v", res.Data)
	}
	if res.Metadata.Size != serializedSize(value) {
		t.Errorf("unexpected size %d", res.Metadata.Size)
	}
}

func TestBound_TopLevelStringClipped(t *testing.T) {
	tr := New(Options{})
	budget := 4096
	huge := strings.Repeat("x", 1<<20)

	res := tr.Bound(huge, budget)

	if !res.Metadata.Truncated {
		t.Fatal("expected truncation")
	}
	if res.Metadata.Size > budget {
		t.Errorf("truncated size %d exceeds budget %d", res.Metadata.Size, budget)
	}
	payload, ok := res.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected map payload, got %T", res.Data)
	}
	s, ok := payload["data"].(string)
	if !ok {
		t.Fatalf("expected clipped string under data, got %T", payload["data"])
	}
	if !strings.HasSuffix(s, "... [truncated]") {
		t.Error("expected truncation suffix on the clipped string")
	}

	data, err := json.Marshal(res.Data)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if len(data) > budget {
		t.Errorf("serialized payload %d exceeds budget %d", len(data), budget)
	}
}

func TestBound_OversizedPayload(t *testing.T) {
	tr := New(Options{})

	// Roughly 2,000,000 serialized bytes of result entries.
	items := make([]any, 0, 2000)
	for i := 0; i < 2000; i++ {
		items = append(items, map[string]any{
			"id":      fmt.Sprintf("block-%04d", i),
			"content": strings.Repeat("x", 960),
		})
	}
	value := map[string]any{"results": items}
	originalSize := serializedSize(value)
	if originalSize < 1900000 {
		t.Fatalf("test payload too small: %d bytes", originalSize)
	}

	budget := 1048576
	res := tr.Bound(value, budget)

	if !res.Metadata.Truncated {
		t.Fatal("expected truncation")
	}
	if res.Metadata.OriginalSize != originalSize {
		t.Errorf("expected originalSize=%d, got %d", originalSize, res.Metadata.OriginalSize)
	}
	if res.Metadata.Size > budget {
		t.Errorf("truncated size %d exceeds budget %d", res.Metadata.Size, budget)
	}

	payload, ok := res.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected map payload, got %T", res.Data)
	}
	meta, ok := payload["_metadata"].(map[string]any)
	if !ok {
		t.Fatal("expected _metadata on truncated payload")
	}
	if meta["truncated"] != true {
		t.Error("expected _metadata.truncated=true")
	}
	if meta["originalSize"] != originalSize {
		t.Errorf("expected _metadata.originalSize=%d, got %v", originalSize, meta["originalSize"])
	}
	if msg, _ := meta["message"].(string); msg == "" {
		t.Error("expected non-empty truncation message")
	}
}

func TestBound_ArrayMarker(t *testing.T) {
	tr := New(Options{})

	items := make([]any, 0, 100)
	for i := 0; i < 100; i++ {
		items = append(items, strings.Repeat("a", 100))
	}

	res := tr.Bound(items, 2048)

	if !res.Metadata.Truncated {
		t.Fatal("expected truncation")
	}
	payload := res.Data.(map[string]any)
	arr, ok := payload["data"].([]any)
	if !ok {
		t.Fatalf("expected wrapped array, got %T", payload["data"])
	}

	marker, ok := arr[len(arr)-1].(map[string]any)
	if !ok {
		t.Fatalf("expected marker element, got %T", arr[len(arr)-1])
	}
	if marker["_truncated"] != true {
		t.Error("expected _truncated marker element")
	}

	// Everything before the marker is an untouched prefix of the input.
	for i := 0; i < len(arr)-1; i++ {
		if arr[i] != items[i] {
			t.Fatalf("element %d modified by truncation", i)
		}
	}
}

func TestBound_ObjectRemainingMarker(t *testing.T) {
	tr := New(Options{})

	obj := map[string]any{}
	for i := 0; i < 50; i++ {
		obj[fmt.Sprintf("field%02d", i)] = strings.Repeat("b", 200)
	}

	res := tr.Bound(obj, 2048)

	if !res.Metadata.Truncated {
		t.Fatal("expected truncation")
	}
	payload := res.Data.(map[string]any)
	remaining, ok := payload["_remaining"].(string)
	if !ok || remaining == "" {
		t.Fatalf("expected _remaining marker, got %v", payload["_remaining"])
	}

	// Kept fields are untouched and visited in sorted order, so field00
	// survives before field49.
	if _, ok := payload["field00"]; !ok {
		t.Error("expected first sorted field to survive")
	}
}

func TestBound_LongStringClipped(t *testing.T) {
	tr := New(Options{})

	long := strings.Repeat("s", 5000)
	value := map[string]any{
		"note":    long,
		"padding": strings.Repeat("p", 2000),
	}

	res := tr.Bound(value, 3000)

	if !res.Metadata.Truncated {
		t.Fatal("expected truncation")
	}
	payload := res.Data.(map[string]any)
	note, _ := payload["note"].(string)
	if !strings.HasSuffix(note, "... [truncated]") {
		t.Errorf("expected clipped string suffix, got tail %q", note[len(note)-30:])
	}
	if len([]rune(note)) != 1000+len("... [truncated]") {
		t.Errorf("unexpected clipped length %d", len(note))
	}
}

func TestBound_Deterministic(t *testing.T) {
	tr := New(Options{})

	items := make([]any, 0, 500)
	for i := 0; i < 500; i++ {
		items = append(items, map[string]any{"id": i, "body": strings.Repeat("z", 50)})
	}
	value := map[string]any{"results": items, "query": "q"}

	first := tr.Bound(value, 4096)
	second := tr.Bound(value, 4096)

	a, _ := json.Marshal(first.Data)
	b, _ := json.Marshal(second.Data)
	if string(a) != string(b) {
		t.Error("truncation is not deterministic for identical input and budget")
	}
}

func TestBound_Idempotent(t *testing.T) {
	tr := New(Options{})

	items := make([]any, 0, 500)
	for i := 0; i < 500; i++ {
		items = append(items, strings.Repeat("i", 100))
	}
	value := map[string]any{"results": items}

	budget := 8192
	first := tr.Bound(value, budget)
	if !first.Metadata.Truncated {
		t.Fatal("expected first pass to truncate")
	}

	second := tr.Bound(first.Data, budget)
	if second.Metadata.Truncated {
		t.Error("re-bounding already-truncated output at the same budget truncated again")
	}
	if !reflect.DeepEqual(second.Data, first.Data) {
		t.Error("re-bounding changed an already-fitting payload")
	}
}

func TestBound_NestedArrayFieldQuarteredBudget(t *testing.T) {
	tr := New(Options{})

	nested := make([]any, 0, 200)
	for i := 0; i < 200; i++ {
		nested = append(nested, strings.Repeat("n", 50))
	}
	value := map[string]any{
		"blocks": nested,
		"filler": strings.Repeat("f", 8000),
	}

	res := tr.Bound(value, 8192)

	if !res.Metadata.Truncated {
		t.Fatal("expected truncation")
	}
	payload := res.Data.(map[string]any)
	blocks, ok := payload["blocks"].([]any)
	if !ok {
		t.Fatalf("expected blocks array kept, got %T", payload["blocks"])
	}
	if len(blocks) >= 200 {
		t.Error("expected nested array to be cut under the divided budget")
	}
	if marker, ok := blocks[len(blocks)-1].(map[string]any); !ok || marker["_truncated"] != true {
		t.Error("expected marker element at nested array tail")
	}
}

func TestNew_Defaults(t *testing.T) {
	tr := New(Options{})
	if tr.opts.BudgetFraction != 0.9 || tr.opts.NestedDivisor != 4 ||
		tr.opts.NestedArrayMin != 10 || tr.opts.MaxStringLen != 1000 {
		t.Errorf("unexpected defaults: %+v", tr.opts)
	}
}
