package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"zvgcli/internal/contacts"
	apierrors "zvgcli/internal/errors"
	"zvgcli/internal/infrastructure"
	"zvgcli/internal/portal"
	"zvgcli/pkg/contracts/domain"
	"zvgcli/pkg/contracts/events"
)

// PortalSearcher is the portal client surface the search service needs.
type PortalSearcher interface {
	Search(ctx context.Context, land portal.Land) ([]domain.Listing, error)
}

// Broadcaster pushes progress events to connected UI clients. The payloads
// are the events.Progress contract.
type Broadcaster interface {
	Broadcast(messageType string, data interface{})
}

// SearchService resolves search queries against the portal and applies the
// result filters and the contact suppression step.
type SearchService struct {
	client  PortalSearcher
	cache   *portal.Cache
	store   contacts.Store
	hub     Broadcaster
	metrics *infrastructure.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewSearchService creates a search service. hub and metrics may be nil;
// progress events and instrument updates are skipped then.
func NewSearchService(client PortalSearcher, cache *portal.Cache, store contacts.Store, hub Broadcaster, metrics *infrastructure.Metrics, logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{
		client:  client,
		cache:   cache,
		store:   store,
		hub:     hub,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Search runs one query: resolve the state, fetch or reuse the state's
// listings, filter them in the original order (date, auction kind, property
// type) and suppress recently contacted listings unless the query opts out.
func (s *SearchService) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error) {
	land, ok := portal.NormalizeState(query.State)
	if !ok {
		return nil, fmt.Errorf("%w: %q", apierrors.ErrUnknownState, query.State)
	}

	s.broadcast(events.Progress{Stage: "started", Land: land.Code})

	start := time.Now()
	listings, fromCache := s.cache.Get(land.Code)
	infrastructure.RecordCacheAccess(ctx, s.metrics, fromCache)

	if !fromCache {
		var err error
		listings, err = s.client.Search(ctx, land)
		infrastructure.RecordSearchMetrics(ctx, s.metrics, land.Code, time.Since(start), len(listings), false, err)
		if err != nil {
			return nil, s.classifySearchError(err, land)
		}
		s.cache.Put(land.Code, listings)
	} else {
		infrastructure.RecordSearchMetrics(ctx, s.metrics, land.Code, time.Since(start), len(listings), true, nil)
	}

	s.broadcast(events.Progress{Stage: "fetched", Land: land.Code, Count: len(listings)})

	filtered := s.applyFilters(listings, query)

	result := &domain.SearchResult{Listings: filtered, Total: len(filtered)}
	if !query.IncludeContacted {
		history, err := s.store.Load(ctx)
		if err != nil {
			// Suppression is advisory; a broken store must not block searching.
			s.logger.WarnContext(ctx, "contact history unavailable, skipping suppression",
				slog.String("error", err.Error()))
		} else {
			kept, suppressed := contacts.FilterListings(filtered, history, s.now())
			result.Listings = kept
			result.Total = len(kept)
			result.Suppressed = suppressed
			infrastructure.RecordSuppressedListings(ctx, s.metrics, suppressed)
		}
	}

	s.broadcast(events.Progress{Stage: "completed", Land: land.Code, Count: result.Total})

	s.logger.InfoContext(ctx, "search completed",
		slog.String("land", land.Code),
		slog.Int("fetched", len(listings)),
		slog.Int("total", result.Total),
		slog.Int("suppressed", result.Suppressed),
		slog.Bool("from_cache", fromCache))
	return result, nil
}

// States returns the selectable federal states in portal order.
func (s *SearchService) States() []portal.Land {
	return portal.Laender()
}

// AuctionTypes returns the selectable auction kinds.
func (s *SearchService) AuctionTypes() []string {
	out := make([]string, len(portal.AuctionTypes))
	copy(out, portal.AuctionTypes)
	return out
}

// PropertyTypes returns the selectable property types.
func (s *SearchService) PropertyTypes() []string {
	return portal.PropertyTypes()
}

// applyFilters drops listings in the fixed filter order. The listing date is
// compared at day precision against today+MinDays.
func (s *SearchService) applyFilters(listings []domain.Listing, query domain.SearchQuery) []domain.Listing {
	ref := s.now().AddDate(0, 0, query.MinDays)
	minDate := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())

	auctionTypes := make(map[string]bool, len(query.AuctionTypes))
	for _, t := range query.AuctionTypes {
		if t != "" {
			auctionTypes[t] = true
		}
	}

	// Non-nil so an empty result serializes as [] rather than null.
	out := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		date, err := time.ParseInLocation("2006-01-02", l.Date, minDate.Location())
		if err != nil || date.Before(minDate) {
			continue
		}
		// Listings without a stated kind pass the kind filter.
		if len(auctionTypes) > 0 && l.AuctionType != "" && !auctionTypes[l.AuctionType] {
			continue
		}
		if len(query.PropertyTypes) > 0 {
			text := strings.TrimSpace(l.ObjectText + " " + l.Description)
			ptype, ok := portal.ClassifyPropertyType(text, query.PropertyTypes)
			if !ok {
				continue
			}
			l.PropertyType = ptype
		}
		out = append(out, l)
	}
	return out
}

// classifySearchError turns raw client errors into the sentinels handlers
// map to problem responses. Context errors pass through untouched.
func (s *SearchService) classifySearchError(err error, land portal.Land) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, portal.ErrBadResultPage):
		return apierrors.NewParsingError(fmt.Sprintf("portal result page for %s", land.Name), err)
	default:
		return fmt.Errorf("%w: %v", apierrors.ErrPortalUnavailable, err)
	}
}

func (s *SearchService) broadcast(event events.Progress) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(events.TypeSearchProgress, event)
}
