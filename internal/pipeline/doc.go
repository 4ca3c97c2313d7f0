// Package pipeline implements the aggregation engine: fan-out to every
// registered provider, classification of what they return into typed
// buckets, report assembly and the read-through report cache.
//
// The flow for one target is
//
//	check cache -> (hit) serve cached report
//	            -> (miss) dispatch -> classify -> assemble -> store
//
// The Dispatcher waits for every provider to settle and never lets one
// failure cancel another. Provider failures, cache failures and records that
// cannot be classified are logged and dropped; only a missing provider
// configuration or a too-short target fails an analysis.
//
// BatchProcessor runs the engine over many targets with bounded concurrency.
package pipeline
