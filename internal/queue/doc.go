// Package queue persists sync-and-plan jobs in a SQLite database so batches
// survive restarts and a drained runner can report what happened to each job.
package queue
