// Package seeddb stores seeding runs and their trajectory seeds in SQLite.
//
// The schema is managed with golang-migrate from migrations embedded in the
// binary. A run is opened with BeginRun, filled event by event with
// SaveEvent and closed with FinishRun. Each SaveEvent writes all seeds of
// the event in one transaction.
package seeddb
