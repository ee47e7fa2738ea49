//go:build cgo_sqlite

package transcript

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// initDB opens the transcript with the cgo driver.
func initDB(dataSource string) (*sql.DB, error) {
	return sql.Open("sqlite3", withParam(dataSource, "_busy_timeout=5000"))
}
