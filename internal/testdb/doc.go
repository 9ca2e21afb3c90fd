// Package testdb provides helpers for integration tests that need a real
// PostgreSQL database.
//
// Tests are skipped unless DATABASE_URL (or FINANCE_TEST_DB_URL) is set. The
// embedded migrations are applied once per test binary, and each test runs
// inside a transaction that is rolled back when it finishes:
//
//	func TestSomething(t *testing.T) {
//		db := testdb.GetTestDBWithT(t)
//		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//			userStore := postgres.NewPostgresUserStore(tx, bcrypt.MinCost, nil)
//			// ...
//		})
//	}
package testdb
