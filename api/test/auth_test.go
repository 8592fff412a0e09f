package test

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/irsalhamdi/lms/core/auth"
	"github.com/irsalhamdi/lms/core/claims"
	"github.com/irsalhamdi/lms/core/user"
)

var codeRe = regexp.MustCompile(`\b\d{6}\b`)

func (e *TestEnv) receiveCode(t *testing.T) string {
	t.Helper()

	select {
	case msg := <-e.SMS.msgs:
		code := codeRe.FindString(msg)
		if code == "" {
			t.Fatalf("no code in message %q", msg)
		}
		return code
	case <-time.After(5 * time.Second):
		t.Fatal("no code delivered")
	}
	return ""
}

func TestAuth(t *testing.T) {
	env, err := NewTestEnv(t, "auth_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	t.Run("signup logs in", func(t *testing.T) {
		in := user.UserSignup{
			Name:            "Learner",
			Email:           "learner@example.com",
			Password:        "learner-password",
			PasswordConfirm: "learner-password",
		}
		Expect(t, env.Server, http.MethodPost, "/auth/signup", in, http.StatusCreated, nil)

		var me user.User
		Expect(t, env.Server, http.MethodGet, "/users/current", nil, http.StatusOK, &me)
		if me.Email == nil || *me.Email != in.Email || me.Role != claims.RoleUser {
			t.Fatalf("unexpected current user %+v", me)
		}

		Expect(t, env.Server, http.MethodPost, "/auth/signup", in, http.StatusConflict, nil)

		if err := Logout(env.Server); err != nil {
			t.Fatal(err)
		}
		Expect(t, env.Server, http.MethodGet, "/users/current", nil, http.StatusUnauthorized, nil)
	})

	t.Run("wrong password", func(t *testing.T) {
		in := user.UserLogin{Email: env.UserEmail, Password: "not-the-password"}
		Expect(t, env.Server, http.MethodPost, "/auth/login", in, http.StatusUnauthorized, nil)
	})

	t.Run("phone otp", func(t *testing.T) {
		phone := "+15550001111"

		Expect(t, env.Server, http.MethodPost, "/auth/otp", auth.OTPRequest{Phone: phone}, http.StatusAccepted, nil)
		code := env.receiveCode(t)

		wrong := "000000"
		if code == wrong {
			wrong = "111111"
		}
		Expect(t, env.Server, http.MethodPost, "/auth/otp/verify", auth.OTPVerify{Phone: phone, Code: wrong}, http.StatusUnauthorized, nil)

		var usr user.User
		Expect(t, env.Server, http.MethodPost, "/auth/otp/verify", auth.OTPVerify{Phone: phone, Code: code}, http.StatusOK, &usr)
		if usr.Phone == nil || *usr.Phone != phone {
			t.Fatalf("unexpected user %+v", usr)
		}

		var me user.User
		Expect(t, env.Server, http.MethodGet, "/users/current", nil, http.StatusOK, &me)
		if me.ID != usr.ID {
			t.Fatalf("expected session of %s, got %s", usr.ID, me.ID)
		}

		Expect(t, env.Server, http.MethodPost, "/auth/otp/verify", auth.OTPVerify{Phone: phone, Code: code}, http.StatusUnauthorized, nil)

		if err := Logout(env.Server); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("otp requests are throttled", func(t *testing.T) {
		phone := "+15550002222"

		for i := 0; i < 3; i++ {
			Expect(t, env.Server, http.MethodPost, "/auth/otp", auth.OTPRequest{Phone: phone}, http.StatusAccepted, nil)
			env.receiveCode(t)
		}
		Expect(t, env.Server, http.MethodPost, "/auth/otp", auth.OTPRequest{Phone: phone}, http.StatusTooManyRequests, nil)
	})

	t.Run("parallel guesses share the attempt limit", func(t *testing.T) {
		phone := "+15550003333"

		Expect(t, env.Server, http.MethodPost, "/auth/otp", auth.OTPRequest{Phone: phone}, http.StatusAccepted, nil)
		code := env.receiveCode(t)

		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			stats = map[int]int{}
		)
		for i := 0; i < 10; i++ {
			guess := fmt.Sprintf("%06d", i)
			if guess == code {
				guess = "999999"
			}

			wg.Add(1)
			go func() {
				defer wg.Done()

				w, err := Do(env.Server, http.MethodPost, "/auth/otp/verify", auth.OTPVerify{Phone: phone, Code: guess})
				if err != nil {
					t.Error(err)
					return
				}
				w.Body.Close()

				mu.Lock()
				stats[w.StatusCode]++
				mu.Unlock()
			}()
		}
		wg.Wait()

		if stats[http.StatusUnauthorized] != 10 {
			t.Fatalf("expected every guess to be rejected, got %v", stats)
		}

		otp, err := auth.FetchOTP(context.Background(), env.DB, phone)
		if err != nil {
			t.Fatalf("fetching otp: %v", err)
		}
		if otp.Attempts != 5 {
			t.Fatalf("expected 5 attempts counted, got %d", otp.Attempts)
		}

		Expect(t, env.Server, http.MethodPost, "/auth/otp/verify", auth.OTPVerify{Phone: phone, Code: code}, http.StatusUnauthorized, nil)
	})
}
