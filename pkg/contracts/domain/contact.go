package domain

// ContactHistory maps a listing id to the timestamp of its last export,
// encoded as RFC 3339 in UTC. Entries are written on export commit and
// consulted by the suppression filter on subsequent searches.
type ContactHistory map[string]string

// Clone returns an independent copy of the history. Mutating the copy never
// affects the original.
func (h ContactHistory) Clone() ContactHistory {
	out := make(ContactHistory, len(h))
	for id, ts := range h {
		out[id] = ts
	}
	return out
}
