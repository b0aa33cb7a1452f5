// Package scheduler executes scheduled posts.
//
// A [Scheduler] polls the store for pending schedules whose time has
// come and publishes each through the social layer: success marks the
// content posted and the schedule completed, failure marks the
// schedule failed. [NextOptimalTime] picks the posting slot when a
// schedule request carries no explicit time.
package scheduler
