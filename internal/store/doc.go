// Package store provides a SQLite-backed record table that can be filtered
// with compiled queries.
//
// The table has one column per registered field plus the reserved "_id"
// primary key, a UUIDv7 by default:
//
//	records("_id" TEXT PRIMARY KEY, "<field>" INTEGER|REAL|TEXT [NOT NULL], ...)
//
// Integer kinds map to INTEGER, decimal64 to REAL and text kinds to TEXT.
// Optional kinds are nullable; NULL is the absent value.
//
// # Select
//
// Select pushes the filter down as a parameterized WHERE clause when
// querysql can compile it. Otherwise (regular expressions, literal coercion
// errors) it scans every row and evaluates the filter in process. Both paths
// return rows ordered by "_id" with BINARY collation, and both agree on
// every record.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
