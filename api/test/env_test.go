package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/lms/api"
	"github.com/irsalhamdi/lms/api/background"
	"github.com/irsalhamdi/lms/config"
	"github.com/irsalhamdi/lms/core/access"
	"github.com/irsalhamdi/lms/core/auth"
	"github.com/irsalhamdi/lms/core/claims"
	"github.com/irsalhamdi/lms/core/user"
	"github.com/irsalhamdi/lms/database"
	"github.com/irsalhamdi/lms/rate"
	"github.com/irsalhamdi/lms/validate"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/plutov/paypal/v4"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

// TestEnv is a running api backed by a throwaway postgres container, with
// PayPal and Stripe replaced by local mocks.
type TestEnv struct {
	*httptest.Server
	DB *sqlx.DB

	AdminID    string
	AdminEmail string
	AdminPass  string
	UserID     string
	UserEmail  string
	UserPass   string

	WebhookSecret string
	Paypal        *mockPaypal
	Stripe        *mockStripe
	SMS           *captureSender
}

// captureSender hands delivered messages to the test instead of a carrier.
type captureSender struct {
	msgs chan string
}

func (s *captureSender) Send(ctx context.Context, phone string, body string) error {
	s.msgs <- body
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func startDB(t *testing.T, name string) *sqlx.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}

	res, err := pool.RunWithOptions(&dockertest.RunOptions{
		Name:       "lms_" + name,
		Repository: "postgres",
		Tag:        "15-alpine",
		Env:        []string{"POSTGRES_PASSWORD=postgres", "POSTGRES_DB=lms"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("starting postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Purge(res); err != nil {
			t.Logf("purging postgres: %v", err)
		}
	})
	_ = res.Expire(120)

	cfg := config.DB{
		User:       "postgres",
		Password:   "postgres",
		Host:       res.GetHostPort("5432/tcp"),
		Name:       "lms",
		DisableTLS: true,
	}

	var db *sqlx.DB
	pool.MaxWait = time.Minute
	err = pool.Retry(func() error {
		var err error
		if db, err = database.Open(cfg); err != nil {
			return err
		}
		return database.StatusCheck(context.Background(), db)
	})
	if err != nil {
		t.Fatalf("waiting for postgres: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	return db
}

func seedUser(db *sqlx.DB, email string, pass string, role string) (string, error) {
	hash, err := user.HashPassword(pass)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	usr := user.User{
		ID:           validate.GenerateID(),
		Name:         role,
		Email:        &email,
		Role:         role,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Create(context.Background(), db, usr); err != nil {
		return "", err
	}
	return usr.ID, nil
}

func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	db := startDB(t, name)
	log := quietLogger()

	env := TestEnv{
		DB:            db,
		AdminEmail:    "admin@example.com",
		AdminPass:     "admin-password",
		UserEmail:     "user@example.com",
		UserPass:      "user-password",
		WebhookSecret: "whsec_test",
		Paypal:        &mockPaypal{},
		Stripe:        &mockStripe{},
		SMS:           &captureSender{msgs: make(chan string, 16)},
	}

	var err error
	if env.AdminID, err = seedUser(db, env.AdminEmail, env.AdminPass, claims.RoleAdmin); err != nil {
		return nil, fmt.Errorf("seeding admin: %w", err)
	}
	if env.UserID, err = seedUser(db, env.UserEmail, env.UserPass, claims.RoleUser); err != nil {
		return nil, fmt.Errorf("seeding user: %w", err)
	}

	ppSrv := httptest.NewServer(env.Paypal.handle())
	t.Cleanup(ppSrv.Close)

	pp, err := paypal.NewClient("client", "secret", ppSrv.URL)
	if err != nil {
		return nil, fmt.Errorf("building paypal client: %w", err)
	}

	stSrv := httptest.NewServer(env.Stripe.handle())
	t.Cleanup(stSrv.Close)

	strp := &stripecl.API{}
	strp.Init("sk_test", &stripe.Backends{
		API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:           stripe.String(stSrv.URL),
			LeveledLogger: &stripe.LeveledLogger{Level: stripe.LevelNull},
		}),
	})

	bg := background.New(log)
	t.Cleanup(func() { _ = bg.Shutdown(context.Background()) })

	limiter := rate.NewLimiter(3, time.Minute, time.Hour)
	t.Cleanup(limiter.Stop)

	store := access.NewStore(db)

	mux := api.APIMux(api.APIConfig{
		Log:     log,
		DB:      db,
		Session: scs.New(),
		OTP: auth.OTPConfig{
			Timeout: 5 * time.Minute,
			Limiter: limiter,
			Sender:  env.SMS,
			Bg:      bg,
		},
		Access: access.NewResolver(log, store, store, store),
		Paypal: pp,
		Stripe: strp,
		StripeCfg: config.Stripe{
			WebhookSecret: env.WebhookSecret,
			SuccessURL:    "http://localhost/success",
			CancelURL:     "http://localhost/cancel",
		},
		Providers: map[string]auth.Provider{},
	})

	env.Server = httptest.NewServer(mux)
	t.Cleanup(env.Server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	cl := env.Server.Client()
	cl.Jar = jar
	cl.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &env, nil
}

func Login(srv *httptest.Server, email string, pass string) error {
	in := user.UserLogin{Email: email, Password: pass}

	w, err := Do(srv, http.MethodPost, "/auth/login", in)
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		return fmt.Errorf("login of %s failed: status code %s", email, w.Status)
	}
	return nil
}

func Logout(srv *httptest.Server) error {
	w, err := Do(srv, http.MethodPost, "/auth/logout", nil)
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusNoContent {
		return fmt.Errorf("logout failed: status code %s", w.Status)
	}
	return nil
}

// Do sends body as JSON, when not nil, with the session of the test client.
func Do(srv *httptest.Server, method string, path string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}

	r, err := http.NewRequest(method, srv.URL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	return srv.Client().Do(r)
}

// Expect sends the request and decodes the answer into out, failing the test
// when the status differs from status.
func Expect(t *testing.T, srv *httptest.Server, method string, path string, body any, status int, out any) {
	t.Helper()

	w, err := Do(srv, method, path, body)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != status {
		b, _ := io.ReadAll(w.Body)
		t.Fatalf("%s %s: expected status %d, got %s: %s", method, path, status, w.Status, b)
	}

	if out == nil {
		return
	}
	if err := json.NewDecoder(w.Body).Decode(out); err != nil {
		t.Fatalf("%s %s: decoding response: %v", method, path, err)
	}
}
