// Package etl defines shared plumbing consumed by the pipeline stages:
// context annotation for run and stage identifiers, and the sentinel
// error taxonomy used to classify stage failures.
package etl
