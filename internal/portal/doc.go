// Package portal is the client for zvg-portal.de, the public listing site of
// the German foreclosure courts.
//
// This package contains three main components:
//
// Client: Performs the per-state search request against the portal, applies a
// polite request rate and turns the returned HTML into Listing values. Broken
// entries are skipped with a warning instead of failing the whole search.
//
// Cache: A per-state TTL cache over search results. The portal renders every
// listing of a state into one page, so searches are expensive and results
// change slowly.
//
// Normalization helpers: the federal state table with its portal codes,
// parsing of German auction date strings, repair of doubly encoded umlauts
// and property type classification by keyword.
package portal
