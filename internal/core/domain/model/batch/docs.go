// Package batch contains the Batch aggregate: a dispatch batch that collects
// orders while it is open and is closed once no more orders may join it.
//
// Lifecycle:
//
//	Open ──Close──> Closed
//
// A closed batch never reopens. Closing raises a BatchClosed domain event
// carrying the number of orders reserved on the batch.
package batch
