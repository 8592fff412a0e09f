package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/lms/api/background"
	"github.com/irsalhamdi/lms/api/web"
	"github.com/irsalhamdi/lms/api/weberr"
	"github.com/irsalhamdi/lms/core/claims"
	"github.com/irsalhamdi/lms/core/user"
	"github.com/irsalhamdi/lms/database"
	"github.com/irsalhamdi/lms/random"
	"github.com/irsalhamdi/lms/rate"
	"github.com/irsalhamdi/lms/sms"
	"github.com/irsalhamdi/lms/validate"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpLength      = 6
	otpMaxAttempts = 5
)

var (
	ErrOTPExpired  = errors.New("code expired")
	ErrOTPAttempts = errors.New("too many attempts")
	ErrOTPMismatch = errors.New("code does not match")
)

// OTP is the pending one-time password of a phone number. Only the bcrypt
// hash of the code is stored.
type OTP struct {
	Phone     string    `db:"phone"`
	CodeHash  []byte    `db:"code_hash"`
	Attempts  int       `db:"attempts"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// Verify checks code against the stored hash. Expiry and the attempt limit
// are checked before the hash so that exhausted codes never match.
func (o OTP) Verify(code string, now time.Time) error {
	if !now.Before(o.ExpiresAt) {
		return ErrOTPExpired
	}
	if o.Attempts >= otpMaxAttempts {
		return ErrOTPAttempts
	}
	if err := bcrypt.CompareHashAndPassword(o.CodeHash, []byte(code)); err != nil {
		return ErrOTPMismatch
	}
	return nil
}

type OTPRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
}

type OTPVerify struct {
	Phone string `json:"phone" validate:"required,e164"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type OTPConfig struct {
	Timeout time.Duration
	Limiter *rate.Limiter
	Sender  sms.Sender
	Bg      *background.Background
}

func HandleOTPRequest(db *sqlx.DB, cfg OTPConfig) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in OTPRequest
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.BadRequest(err)
		}

		if !cfg.Limiter.Allow(in.Phone) {
			return weberr.TooManyRequests(fmt.Errorf("too many codes requested for phone[%s]", in.Phone))
		}

		code, err := random.Digits(otpLength)
		if err != nil {
			return fmt.Errorf("generating otp: %w", err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing otp: %w", err)
		}

		now := time.Now().UTC()
		otp := OTP{
			Phone:     in.Phone,
			CodeHash:  hash,
			ExpiresAt: now.Add(cfg.Timeout),
			CreatedAt: now,
		}

		if err := SaveOTP(ctx, db, otp); err != nil {
			return fmt.Errorf("saving otp for phone[%s]: %w", in.Phone, err)
		}

		msg := fmt.Sprintf("Your verification code is %s. It expires in %s.", code, cfg.Timeout)
		err = cfg.Bg.Add(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return cfg.Sender.Send(ctx, in.Phone, msg)
		})
		if err != nil {
			return fmt.Errorf("scheduling otp delivery: %w", err)
		}

		resp := struct {
			ExpiresAt time.Time `json:"expiresAt"`
		}{otp.ExpiresAt}

		return web.Respond(ctx, w, resp, http.StatusAccepted)
	}
}

// HandleOTPVerify logs in the owner of the phone number, creating the user on
// first login.
func HandleOTPVerify(db *sqlx.DB, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in OTPVerify
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.BadRequest(err)
		}

		now := time.Now().UTC()

		otp, err := ReserveOTPAttempt(ctx, db, in.Phone, now)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotAuthorized(fmt.Errorf("no usable code for phone[%s]", in.Phone))
			}
			return fmt.Errorf("reserving otp attempt for phone[%s]: %w", in.Phone, err)
		}

		if err := otp.Verify(in.Code, now); err != nil {
			return weberr.NotAuthorized(err)
		}

		var usr user.User
		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := ConsumeOTP(ctx, tx, in.Phone, otp.CodeHash); err != nil {
				return fmt.Errorf("consuming otp: %w", err)
			}

			usr, err = phoneUser(ctx, tx, in.Phone)
			return err
		})
		switch {
		case errors.Is(err, database.ErrDBNotFound):
			return weberr.NotAuthorized(fmt.Errorf("code for phone[%s] already used", in.Phone))
		case err != nil:
			return fmt.Errorf("logging in phone[%s]: %w", in.Phone, err)
		}

		if !usr.Active {
			return weberr.Forbidden(fmt.Errorf("user[%s] is not active", usr.ID))
		}

		if err := login(ctx, sm, usr); err != nil {
			return err
		}

		return web.Respond(ctx, w, usr, http.StatusOK)
	}
}

func phoneUser(ctx context.Context, db sqlx.ExtContext, phone string) (user.User, error) {
	usr, err := user.FetchByPhone(ctx, db, phone)
	if err == nil {
		return usr, nil
	}
	if !errors.Is(err, database.ErrDBNotFound) {
		return user.User{}, fmt.Errorf("fetching user: %w", err)
	}

	now := time.Now().UTC()
	usr = user.User{
		ID:        validate.GenerateID(),
		Name:      phone,
		Phone:     &phone,
		Role:      claims.RoleUser,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.Create(ctx, db, usr); err != nil {
		return user.User{}, fmt.Errorf("creating user: %w", err)
	}
	return usr, nil
}
