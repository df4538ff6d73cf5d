package search

import (
	"encoding/json"
	"strings"

	"github.com/poiesic/recall/core"
)

// Hit is one search result. Payload carries the content only; the ID is
// kept separately for callers that need to fetch or delete the item.
type Hit struct {
	ID      core.ID      `json:"id"`
	Score   float32      `json:"score"`
	Payload core.Payload `json:"payload"`
}

// Hits is a ranked result list.
type Hits []Hit

// Grounding renders each payload as a JSON document, one per line, in rank
// order. This is the context handed to the completion model.
func (h Hits) Grounding() string {
	var sb strings.Builder
	for i, hit := range h {
		data, err := json.Marshal(hit.Payload)
		if err != nil {
			continue
		}
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.Write(data)
	}
	return sb.String()
}

// IDs returns the hit IDs in rank order.
func (h Hits) IDs() []core.ID {
	ids := make([]core.ID, len(h))
	for i, hit := range h {
		ids[i] = hit.ID
	}
	return ids
}
