package store

import (
	"time"

	"second-chance/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// accountRow fills the columns GetAccountByEmail and CreateAccount select.
type accountRow struct {
	a   model.Account
	err error
}

func (r accountRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	switch len(dest) {
	case 6:
		*dest[0].(*string) = r.a.ID
		*dest[1].(*string) = r.a.Email
		*dest[2].(*string) = r.a.PasswordHash
		*dest[3].(*string) = r.a.Name
		*dest[4].(*time.Time) = r.a.CreatedAt
		*dest[5].(*time.Time) = r.a.UpdatedAt
	case 2:
		*dest[0].(*time.Time) = r.a.CreatedAt
		*dest[1].(*time.Time) = r.a.UpdatedAt
	default:
		panic("accountRow.Scan: unexpected number of dest")
	}
	return nil
}

type itemRecord struct {
	id    int64
	added int64
	attrs string
}

type itemRow struct {
	rec itemRecord
	err error
}

func (r itemRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.rec.id
	*dest[1].(*int64) = r.rec.added
	*dest[2].(*[]byte) = []byte(r.rec.attrs)
	return nil
}

type itemRows struct {
	data    []itemRecord
	idx     int
	scanErr error
	err     error
	closed  bool
}

func (r *itemRows) Close()                                       { r.closed = true }
func (r *itemRows) Err() error                                   { return r.err }
func (r *itemRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *itemRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *itemRows) Next() bool                                   { return r.idx < len(r.data) }
func (r *itemRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	rec := r.data[r.idx]
	r.idx++
	return itemRow{rec: rec}.Scan(dest...)
}
func (r *itemRows) Values() ([]any, error) { return nil, nil }
func (r *itemRows) RawValues() [][]byte    { return nil }
func (r *itemRows) Conn() *pgx.Conn        { return nil }
