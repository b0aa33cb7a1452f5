// Package store is the MongoDB persistence layer.
//
// One [Store] owns the content_system database and its four
// collections: projects, content, schedules and analytics. Documents
// are addressed by hex ObjectIDs at the API boundary; a malformed ID
// surfaces as [ErrInvalidID] before it ever reaches the driver.
//
// All timestamps are stored in UTC. List operations return empty
// slices, never nil, so handlers can serialize results directly.
// Project deletion is soft: rows flip to status "deleted" and stop
// appearing in listings.
package store
