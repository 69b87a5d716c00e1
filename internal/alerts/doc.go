// Package alerts evaluates trend alert rules against each freshly computed
// report and delivers webhook notifications when a page's traffic moves past
// a configured threshold.
//
// A rule is a small expression over one delta record, for example
// "percent_delta < -0.5" (the page lost more than half its current-traffic
// share) or "absolute_delta < -1000". Rules fire per path, respect a
// cooldown, and resolve automatically once the path stops matching.
package alerts
