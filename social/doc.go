// Package social publishes content to the supported platforms.
//
// Each platform implements [Publisher]; [Service] fronts them with
// name normalization ("x" is twitter) and per-platform formatting.
// Twitter threads are split on dash separator lines and chained with
// reply IDs. Connection checks report failures in the returned
// [ConnectionStatus] rather than as errors, and upstream rejections
// keep the response body in the error detail.
package social
