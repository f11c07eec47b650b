package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"second-chance/internal/database"
	"second-chance/internal/logging"
	"second-chance/internal/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type userRecord struct {
	id, email, hash, name string
	created, updated      time.Time
}

type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

// usersTable answers the three statements the account store issues.
func usersTable() *database.FakeDB {
	var mu sync.Mutex
	byEmail := map[string]*userRecord{}
	return &database.FakeDB{
		QueryRowFn: func(_ context.Context, sql string, args ...any) pgx.Row {
			mu.Lock()
			defer mu.Unlock()
			switch {
			case strings.HasPrefix(strings.TrimSpace(sql), "SELECT"):
				u, ok := byEmail[args[0].(string)]
				if !ok {
					return rowFunc(func(...any) error { return pgx.ErrNoRows })
				}
				cp := *u
				return rowFunc(func(dest ...any) error {
					*dest[0].(*string) = cp.id
					*dest[1].(*string) = cp.email
					*dest[2].(*string) = cp.hash
					*dest[3].(*string) = cp.name
					*dest[4].(*time.Time) = cp.created
					*dest[5].(*time.Time) = cp.updated
					return nil
				})
			case strings.HasPrefix(strings.TrimSpace(sql), "INSERT INTO users"):
				email := args[1].(string)
				if _, ok := byEmail[email]; ok {
					return rowFunc(func(...any) error { return &pgconn.PgError{Code: "23505"} })
				}
				now := time.Now()
				byEmail[email] = &userRecord{
					id: args[0].(string), email: email, hash: args[2].(string), name: args[3].(string),
					created: now, updated: now,
				}
				return rowFunc(func(dest ...any) error {
					*dest[0].(*time.Time) = now
					*dest[1].(*time.Time) = now
					return nil
				})
			}
			panic("unexpected query: " + sql)
		},
		ExecFn: func(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			mu.Lock()
			defer mu.Unlock()
			for _, u := range byEmail {
				if u.id == args[2].(string) {
					u.name = args[0].(string)
					u.updated = args[1].(time.Time)
					return pgconn.NewCommandTag("UPDATE 1"), nil
				}
			}
			return pgconn.NewCommandTag("UPDATE 0"), nil
		},
	}
}

func TestRegisterLoginFlow(t *testing.T) {
	issuer, err := service.NewTokenIssuer("flow-secret", 0)
	require.NoError(t, err)
	svc := service.NewAccountService(usersTable(), service.NewHasher(nil), issuer, nil)
	log := logging.Discard()
	e := newEcho()

	creds := `{"email":"a@x.com","password":"p1"}`

	rec, err := doJSON(e, RegisterHandler(svc, log), http.MethodPost, creds, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, rec.Code)
	var reg map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	require.NotEmpty(t, reg["token"])
	require.Equal(t, "a@x.com", reg["email"])

	rec, err = doJSON(e, LoginHandler(svc, log), http.MethodPost, creds, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	var login map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.Equal(t, "a@x.com", login["email"])

	regClaims, err := issuer.Verify(reg["token"])
	require.NoError(t, err)
	loginClaims, err := issuer.Verify(login["token"])
	require.NoError(t, err)
	require.Equal(t, regClaims.User.ID, loginClaims.User.ID)

	rec, err = doJSON(e, RegisterHandler(svc, log), http.MethodPost, creds, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"Email id already exists"}`, rec.Body.String())

	rec, err = doJSON(e, LoginHandler(svc, log), http.MethodPost, `{"email":"a@x.com","password":"nope"}`, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, err = doJSON(e, UpdateHandler(svc, log), http.MethodPut, `{"email":"a@x.com","name":"Ann"}`, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, err = doJSON(e, LoginHandler(svc, log), http.MethodPost, creds, nil)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.Equal(t, "Ann", login["name"])

	rec, err = doJSON(e, UpdateHandler(svc, log), http.MethodPut, `{"email":"ghost@x.com","name":"G"}`, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterMultiByteLongPassword(t *testing.T) {
	issuer, err := service.NewTokenIssuer("flow-secret", 0)
	require.NoError(t, err)
	svc := service.NewAccountService(usersTable(), service.NewHasher(nil), issuer, nil)

	body := `{"email":"b@x.com","password":"` + strings.Repeat("é", 40) + `"}`
	rec, err := doJSON(newEcho(), RegisterHandler(svc, logging.Discard()), http.MethodPost, body, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"password must be at most 72 bytes"}`, rec.Body.String())
}
