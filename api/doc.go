// Package api defines the wire envelope shared by every HTTP surface
// of the service: the content API under api/handlers and the runtime
// configuration API in the config package. Keeping the envelope in a
// leaf package lets both serialize responses identically without
// depending on each other.
package api
