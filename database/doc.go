// Package database provides a storage driver that serves objects from SQL blob
// tables.
//
// A cluster configuration file selects the database:
//
//	type: sqlite        # or postgres
//	dsn: /var/lib/stowgate/blobs.db
//	auto_migrate: true
//
// Every pool is a table with the columns key, data, size and modified_at. When a
// pool is opened its table is optionally created and then validated, so a gateway
// never starts against a table it cannot read.
//
// # Subpackages
//
//   - database/postgres: PostgreSQL implementation using pgx
//   - database/sqlite: SQLite implementation using modernc.org/sqlite
package database
