package db

import (
	"errors"
	"regexp"

	"github.com/go-sql-driver/mysql"
)

const mysqlDupEntryCode = 1062

// IsDupKeyErr reports whether err is a MySQL duplicate-key violation.
func IsDupKeyErr(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == mysqlDupEntryCode
}

var dupKeyRe = regexp.MustCompile(`for key '((?:[^'])+)'`)

// GetDupKey extracts the violated key name from a duplicate-key error,
// or returns "" when it cannot be determined.
func GetDupKey(err error) string {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return ""
	}
	match := dupKeyRe.FindStringSubmatch(mysqlErr.Message)
	if match == nil {
		return ""
	}
	return match[1]
}
