package services

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"zvgcli/internal/portal"
)

// otherPropertyType buckets cached listings no keyword matches.
const otherPropertyType = "Sonstige"

// StateCount is one bar of the per-state chart.
type StateCount struct {
	Land  string `json:"land"`
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// TypeCount is one slice of the property-type chart.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Stats aggregates the cached result sets for the dashboard.
type Stats struct {
	States        []StateCount `json:"states"`
	PropertyTypes []TypeCount  `json:"propertyTypes"`
	Listings      int          `json:"listings"`
	CachedStates  int          `json:"cachedStates"`
}

// StatsService computes dashboard aggregates. It only ever reads the portal
// cache, so the numbers cover what was searched recently, not the whole
// portal.
type StatsService struct {
	cache  *portal.Cache
	logger *slog.Logger
}

// NewStatsService creates a stats service.
func NewStatsService(cache *portal.Cache, logger *slog.Logger) *StatsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsService{cache: cache, logger: logger}
}

// Snapshot aggregates the fresh cache entries into chart-ready counts.
// States are sorted by count descending, property types in table order with
// the rest bucket last.
func (s *StatsService) Snapshot(ctx context.Context) Stats {
	snapshot := s.cache.Snapshot()

	stats := Stats{CachedStates: len(snapshot)}
	typeCounts := make(map[string]int)
	allTypes := portal.PropertyTypes()

	for code, listings := range snapshot {
		name := code
		if land, ok := portal.NormalizeState(code); ok {
			name = land.Name
		}
		stats.States = append(stats.States, StateCount{Land: name, Code: code, Count: len(listings)})
		stats.Listings += len(listings)

		for _, l := range listings {
			text := strings.TrimSpace(l.ObjectText + " " + l.Description)
			ptype, ok := portal.ClassifyPropertyType(text, allTypes)
			if !ok {
				ptype = otherPropertyType
			}
			typeCounts[ptype]++
		}
	}

	sort.Slice(stats.States, func(i, j int) bool {
		if stats.States[i].Count != stats.States[j].Count {
			return stats.States[i].Count > stats.States[j].Count
		}
		return stats.States[i].Code < stats.States[j].Code
	})

	for _, ptype := range allTypes {
		if n := typeCounts[ptype]; n > 0 {
			stats.PropertyTypes = append(stats.PropertyTypes, TypeCount{Type: ptype, Count: n})
		}
	}
	if n := typeCounts[otherPropertyType]; n > 0 {
		stats.PropertyTypes = append(stats.PropertyTypes, TypeCount{Type: otherPropertyType, Count: n})
	}

	s.logger.DebugContext(ctx, "stats snapshot",
		slog.Int("cached_states", stats.CachedStates),
		slog.Int("listings", stats.Listings))
	return stats
}
