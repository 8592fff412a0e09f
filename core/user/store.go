package user

import (
	"context"

	"github.com/irsalhamdi/lms/database"
	"github.com/jmoiron/sqlx"
)

const userColumns = `user_id, name, email, phone, role, password_hash, active, created_at, updated_at, version`

func Create(ctx context.Context, db sqlx.ExtContext, usr User) error {
	q := `
	INSERT INTO users
		(user_id, name, email, phone, role, password_hash, active, created_at, updated_at)
	VALUES
		(:user_id, :name, :email, :phone, :role, :password_hash, :active, :created_at, :updated_at)`

	return database.NamedExecContext(ctx, db, q, usr)
}

func Activate(ctx context.Context, db sqlx.ExtContext, usr User) error {
	q := `
	UPDATE users SET
		active = TRUE,
		updated_at = :updated_at,
		version = version + 1
	WHERE user_id = :user_id`

	return database.NamedExecAffected(ctx, db, q, usr)
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (User, error) {
	in := struct {
		ID string `db:"user_id"`
	}{id}

	q := `SELECT ` + userColumns + ` FROM users WHERE user_id = :user_id`

	var usr User
	if err := database.NamedQueryStruct(ctx, db, q, in, &usr); err != nil {
		return User{}, err
	}
	return usr, nil
}

func FetchByEmail(ctx context.Context, db sqlx.ExtContext, email string) (User, error) {
	in := struct {
		Email string `db:"email"`
	}{email}

	q := `SELECT ` + userColumns + ` FROM users WHERE email = :email`

	var usr User
	if err := database.NamedQueryStruct(ctx, db, q, in, &usr); err != nil {
		return User{}, err
	}
	return usr, nil
}

func FetchByPhone(ctx context.Context, db sqlx.ExtContext, phone string) (User, error) {
	in := struct {
		Phone string `db:"phone"`
	}{phone}

	q := `SELECT ` + userColumns + ` FROM users WHERE phone = :phone`

	var usr User
	if err := database.NamedQueryStruct(ctx, db, q, in, &usr); err != nil {
		return User{}, err
	}
	return usr, nil
}
