// Package pathfilter decides which reported page paths are worth analysing.
// Reporting pipelines are full of noise: tracking query strings, paginated
// archive listings, and short spam paths. Rules is a pure predicate over the
// path string — no I/O, no hidden state — applied by the snapshot builder
// before any trend maths happens.
//
// Every threshold is a Rules field rather than a constant: what counts as
// noise is site policy, and callers override it through configuration.
package pathfilter
