// Package vector maintains the semantic content index in Qdrant.
//
// [Client] is a small REST client covering only what the service
// needs: ensure a collection, upsert points, search, scroll and
// delete. [ContentIndex] sits above it and pairs the embedding
// provider with the store: each project owns one collection named
// project_<id>, 1536-dimension Cosine vectors, point IDs derived
// deterministically from the content so re-indexing the same text
// overwrites instead of duplicating.
//
// The index degrades rather than fails: an unreachable embedding
// backend yields zero vectors, a missing collection yields empty
// search results and zeroed analytics.
package vector
