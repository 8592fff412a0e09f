package auth

import (
	"context"
	"time"

	"github.com/irsalhamdi/lms/database"
	"github.com/jmoiron/sqlx"
)

type phoneIn struct {
	Phone string `db:"phone"`
}

// SaveOTP replaces any pending code of the phone and resets its attempts.
func SaveOTP(ctx context.Context, db sqlx.ExtContext, otp OTP) error {
	q := `
	INSERT INTO otp_codes
		(phone, code_hash, attempts, expires_at, created_at)
	VALUES
		(:phone, :code_hash, 0, :expires_at, :created_at)
	ON CONFLICT (phone) DO UPDATE SET
		code_hash = EXCLUDED.code_hash,
		attempts = 0,
		expires_at = EXCLUDED.expires_at,
		created_at = EXCLUDED.created_at`

	return database.NamedExecContext(ctx, db, q, otp)
}

func FetchOTP(ctx context.Context, db sqlx.ExtContext, phone string) (OTP, error) {
	q := `
	SELECT phone, code_hash, attempts, expires_at, created_at
	FROM otp_codes
	WHERE phone = :phone`

	var otp OTP
	if err := database.NamedQueryStruct(ctx, db, q, phoneIn{phone}, &otp); err != nil {
		return OTP{}, err
	}
	return otp, nil
}

// ReserveOTPAttempt counts one verification attempt against the pending code
// of the phone and returns the code as it was before the attempt. It reports
// database.ErrDBNotFound when no code is pending, or when it is expired or
// out of attempts, so concurrent guesses never exceed the limit.
func ReserveOTPAttempt(ctx context.Context, db sqlx.ExtContext, phone string, now time.Time) (OTP, error) {
	in := struct {
		Phone string    `db:"phone"`
		Max   int       `db:"max_attempts"`
		Now   time.Time `db:"now"`
	}{phone, otpMaxAttempts, now}

	q := `
	UPDATE otp_codes
	SET attempts = attempts + 1
	WHERE phone = :phone AND attempts < :max_attempts AND expires_at > :now
	RETURNING phone, code_hash, attempts - 1 AS attempts, expires_at, created_at`

	var otp OTP
	if err := database.NamedQueryStruct(ctx, db, q, in, &otp); err != nil {
		return OTP{}, err
	}
	return otp, nil
}

// ConsumeOTP deletes the code matching hash. It reports database.ErrDBNotFound
// when the code was already used or replaced by a newer one.
func ConsumeOTP(ctx context.Context, db sqlx.ExtContext, phone string, hash []byte) error {
	in := struct {
		Phone    string `db:"phone"`
		CodeHash []byte `db:"code_hash"`
	}{phone, hash}

	q := `DELETE FROM otp_codes WHERE phone = :phone AND code_hash = :code_hash`

	return database.NamedExecAffected(ctx, db, q, in)
}
