package mysql

import (
	"context"
	"database/sql"
	"time"

	db2 "github.com/stopmotionlab/blog-be/db"
	"github.com/stopmotionlab/blog-be/model"

	"github.com/upper/db/v4"
)

type UserDB struct {
	sess db.Session
}

func getUserDB(sess db.Session) *UserDB {
	return &UserDB{sess}
}

type flattenedUser struct {
	Id           int64          `db:"id"`
	Username     string         `db:"username"`
	Email        sql.NullString `db:"email"`
	PasswordHash string         `db:"password_hash"`
	DisplayName  sql.NullString `db:"display_name"`
	GoogleId     sql.NullString `db:"google_id"`
	IsAdmin      bool           `db:"is_admin"`
	CreatedAt    time.Time      `db:"created_at"`
}

func buildUserFromFlattened(user *flattenedUser) *model.User {
	return &model.User{
		Id:           user.Id,
		Username:     user.Username,
		Email:        user.Email.String,
		PasswordHash: user.PasswordHash,
		DisplayName:  user.DisplayName.String,
		GoogleId:     user.GoogleId.String,
		IsAdmin:      user.IsAdmin,
		CreatedAt:    user.CreatedAt,
	}
}

func (udb *UserDB) CreateUser(ctx context.Context, req *db2.CreateUser) (int64, error) {
	res, err := udb.sess.SQL().
		InsertInto("person").
		Columns("username", "email", "password_hash", "display_name", "google_id", "is_admin").
		Values(req.Username, nullString(req.Email), req.PasswordHash,
			req.DisplayName, nullString(req.GoogleId), req.IsAdmin).
		ExecContext(ctx)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (udb *UserDB) GetUserById(ctx context.Context, id int64) (*model.User, error) {
	return udb.getUserWhere(ctx, "id = ?", id)
}

func (udb *UserDB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return udb.getUserWhere(ctx, "email = ?", email)
}

func (udb *UserDB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return udb.getUserWhere(ctx, "username = ?", username)
}

func (udb *UserDB) GetUserByGoogleId(ctx context.Context, googleId string) (*model.User, error) {
	return udb.getUserWhere(ctx, "google_id = ?", googleId)
}

func (udb *UserDB) getUserWhere(ctx context.Context, cond string, arg interface{}) (*model.User, error) {
	var user flattenedUser
	if err := udb.sess.SQL().
		Select("*").
		From("person").
		Where(cond, arg).
		IteratorContext(ctx).
		One(&user); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, nil
		}
		return nil, err
	}
	return buildUserFromFlattened(&user), nil
}

func (udb *UserDB) GetUsers(ctx context.Context) ([]*model.User, error) {
	var flattenedUsers []flattenedUser
	if err := udb.sess.SQL().
		Select("*").
		From("person").
		OrderBy("created_at DESC", "id DESC").
		IteratorContext(ctx).
		All(&flattenedUsers); err != nil {
		return nil, err
	}
	users := make([]*model.User, len(flattenedUsers))
	for i := range flattenedUsers {
		users[i] = buildUserFromFlattened(&flattenedUsers[i])
	}
	return users, nil
}

func (udb *UserDB) SetDisplayName(ctx context.Context, id int64, displayName string) error {
	_, err := udb.sess.SQL().
		Update("person").
		Set("display_name", displayName).
		Where("id = ?", id).
		ExecContext(ctx)
	return err
}

func (udb *UserDB) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := udb.sess.SQL().
		Update("person").
		Set("password_hash", passwordHash).
		Where("id = ?", id).
		ExecContext(ctx)
	return err
}

func (udb *UserDB) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	_, err := udb.sess.SQL().
		Update("person").
		Set("is_admin", isAdmin).
		Where("id = ?", id).
		ExecContext(ctx)
	return err
}

// LinkGoogleAccount attaches a Google identity to an existing account.
// displayName only fills in when the account has none.
func (udb *UserDB) LinkGoogleAccount(ctx context.Context, id int64, googleId, displayName string) error {
	_, err := udb.sess.SQL().
		Update("person").
		Set("google_id = ?, display_name = IF(display_name = '', ?, display_name)",
			googleId, displayName).
		Where("id = ?", id).
		ExecContext(ctx)
	return err
}
