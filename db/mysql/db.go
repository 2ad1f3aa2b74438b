package mysql

import (
	"database/sql"

	db2 "github.com/stopmotionlab/blog-be/db"

	"github.com/upper/db/v4"
	"github.com/upper/db/v4/adapter/mysql"
)

// MySQLDB implements db.Database.
var _ db2.Database = (*MySQLDB)(nil)

type MySQLDB struct {
	*UserDB
	*PostDB
	*DiscussionDB
	sess  db.Session
	sqlDB *sql.DB
}

func GetDatabase(dsn string) (*MySQLDB, error) {
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(50)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxIdleTime(0)

	sess, err := mysql.New(sqlDB)
	if err != nil {
		return nil, err
	}

	return &MySQLDB{
		UserDB:       getUserDB(sess),
		PostDB:       getPostDB(sess),
		DiscussionDB: getDiscussionDB(sess),
		sess:         sess,
		sqlDB:        sqlDB,
	}, nil
}

func (mdb *MySQLDB) GetSQLDB() *sql.DB {
	return mdb.sqlDB
}

func (mdb *MySQLDB) Close() error {
	return mdb.sess.Close()
}

func nullString(val string) sql.NullString {
	return sql.NullString{String: val, Valid: val != ""}
}

func nullInt64(val int64) sql.NullInt64 {
	return sql.NullInt64{Int64: val, Valid: val != 0}
}
