// Package store defines the persistence interfaces of the finance API and the
// errors they return. Implementations live under internal/platform: postgres
// for production and memory for tests and database-less runs.
//
// Every RecordStore method filters by owner as well as by id, so a record that
// exists but belongs to someone else is indistinguishable from one that does
// not exist at all.
package store
