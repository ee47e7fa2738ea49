//go:build !cgo_sqlite

package transcript

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// initDB opens the transcript with the pure Go driver.
func initDB(dataSource string) (*sql.DB, error) {
	return sql.Open("sqlite", withParam(dataSource, "_pragma=busy_timeout(5000)"))
}
