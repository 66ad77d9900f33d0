// Package domain holds the shared types of the document adapter: the opaque
// Block shape produced by the upstream API, search result envelopes, and the
// sentinel errors transports map to caller-visible payloads.
package domain

// Block is one node of a document tree as returned by the upstream API.
// The shape is owned by the upstream service and treated as opaque here:
// a JSON object with at least an "id", usually a "type" and "content", and
// a recursive "children" array. Decoding into a map keeps unknown fields.
type Block map[string]any

// ID returns the block id, or "" when absent.
func (b Block) ID() string {
	id, _ := b["id"].(string)
	return id
}

// Type returns the block type, or "" when absent.
func (b Block) Type() string {
	t, _ := b["type"].(string)
	return t
}

// Children returns the child blocks, if any. Children that are not JSON
// objects are skipped.
func (b Block) Children() []Block {
	raw, ok := b["children"].([]any)
	if !ok {
		return nil
	}
	children := make([]Block, 0, len(raw))
	for _, c := range raw {
		if m, ok := c.(map[string]any); ok {
			children = append(children, Block(m))
		}
	}
	return children
}
