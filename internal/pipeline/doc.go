// Package pipeline runs independent transport operations concurrently.
//
// Run fans a slice of inputs out to an operation with a bound on how many
// run at once and sorts every outcome into successes and failures. Future
// wraps a single operation started in the background. Chunk groups encoded
// lines into batch payloads for a Writer.
//
// Operations are independent: a failure never cancels its siblings, and
// nothing is retried.
package pipeline
