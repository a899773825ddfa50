package database

import (
	"database/sql"
	"regexp"
	"sync"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// sqlite 没有内置 REGEXP，这里注册一个带 regexp() 函数的驱动
const sqliteRegexpDriver = "sqlite3_regexp"

var registerOnce sync.Once

func openSQLite(dsn string) gorm.Dialector {
	registerOnce.Do(func() {
		sql.Register(sqliteRegexpDriver, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("regexp", func(re, s string) (bool, error) {
					return regexp.MatchString(re, s)
				}, true)
			},
		})
	})
	if dsn == "" {
		dsn = "file::memory:"
	}
	return sqlite.Dialector{DriverName: sqliteRegexpDriver, DSN: dsn}
}
