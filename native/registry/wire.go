package registry

import (
	"encoding/json"
	"fmt"
)

// ParseWireFormat decodes the registry refresh body: a JSON object mapping
// publisher_id to a [verified, excluded] pair (spec §6). Extra trailing
// fields in the array are tolerated; missing verified/excluded default to
// false rather than failing the whole parse, so a single malformed entry
// does not sink an otherwise-good refresh.
func ParseWireFormat(body []byte) (map[string]Entry, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("registry: decode body: %w", err)
	}
	out := make(map[string]Entry, len(raw))
	for id, value := range raw {
		var flags []json.RawMessage
		if err := json.Unmarshal(value, &flags); err != nil {
			continue
		}
		var entry Entry
		if len(flags) > 0 {
			_ = json.Unmarshal(flags[0], &entry.Verified)
		}
		if len(flags) > 1 {
			_ = json.Unmarshal(flags[1], &entry.Excluded)
		}
		out[id] = entry
	}
	return out, nil
}
