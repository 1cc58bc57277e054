// Package db opens the gorm connection the Job Repository persists
// through. Sqlite (via glebarez, no cgo) is the default for local/dev use;
// mysql is the production alternative, matching the teacher's own
// sqlite-for-tests / mysql-for-production split.
package db

import (
	"fmt"
	"log"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Connect opens driver/dsn and returns a ready *gorm.DB. driver is "sqlite"
// or "mysql"; anything else falls back to sqlite with a warning.
func Connect(driver, dsn string) *gorm.DB {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite", "":
		dialector = gormsqlite.Open(dsn)
	default:
		log.Printf("db: unknown driver %q, falling back to sqlite", driver)
		dialector = gormsqlite.Open(dsn)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("db: connect %s: %v", driver, err)
	}
	return gdb
}

// DSNFromParts builds a mysql DSN the way the teacher's config comment
// demonstrates, for operators who set DB_DRIVER=mysql without a full DSN.
func DSNFromParts(user, pass, host, port, name string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		user, pass, host, port, name)
}
