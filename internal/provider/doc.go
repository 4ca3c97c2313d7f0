// Package provider defines the contract between the aggregation engine and
// the intelligence sources it queries.
//
// A Provider takes a target (domain or username) and returns a Result: a
// single record, a batch of records, or nothing at all. Records may be typed
// findings from the model package or loosely typed payloads; the engine
// classifies both the same way.
//
// Providers are registered once at startup in a Registry. Registration order
// is significant: the dispatcher launches providers in that order and reports
// their outcomes in that order.
package provider
