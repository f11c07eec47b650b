package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"second-chance/internal/database"
	"second-chance/internal/model"

	"github.com/jackc/pgx/v5"
)

// maxCreateAttempts bounds retries when two creates race for the same id.
const maxCreateAttempts = 5

// ItemFilter narrows ListItems. Zero fields match everything.
type ItemFilter struct {
	Name      string   // case-insensitive substring of the name attribute
	Category  string   // exact
	Condition string   // exact
	AgeYears  *float64 // age_years <= AgeYears
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*model.Item, error) {
	var (
		id    int64
		added int64
		raw   []byte
	)
	if err := row.Scan(&id, &added, &raw); err != nil {
		return nil, err
	}
	attrs := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &attrs); err != nil {
			return nil, fmt.Errorf("decode attributes: %w", err)
		}
	}
	return &model.Item{
		ID:         strconv.FormatInt(id, 10),
		DateAdded:  added,
		Attributes: attrs,
	}, nil
}

// parseItemID reports false for anything that cannot be a stored id. Ids
// match by their exact decimal form, so "01" and "+1" are not item 1.
func parseItemID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 || strconv.FormatInt(n, 10) != id {
		return 0, false
	}
	return n, true
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func (f ItemFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Name != "" {
		add(`attributes->>'name' ILIKE $%d`, likePattern(f.Name))
	}
	if f.Category != "" {
		add(`attributes->>'category' = $%d`, f.Category)
	}
	if f.Condition != "" {
		add(`attributes->>'condition' = $%d`, f.Condition)
	}
	if f.AgeYears != nil {
		add(`CASE WHEN jsonb_typeof(attributes->'age_years') = 'number'
		      THEN (attributes->>'age_years')::numeric <= $%d ELSE false END`, *f.AgeYears)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func ListItems(ctx context.Context, db database.DB, f ItemFilter) ([]model.Item, error) {
	where, args := f.where()
	rows, err := db.Query(ctx,
		`SELECT id, date_added, attributes FROM second_chance_items`+where+` ORDER BY id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("ListItems: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("ListItems: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListItems: %w", err)
	}
	return items, nil
}

// CreateItem allocates max(id)+1 and inserts in a single statement. A
// concurrent create taking the same id fails the primary key and is
// retried against the new max.
func CreateItem(ctx context.Context, db database.DB, dateAdded int64, attrs map[string]any) (*model.Item, error) {
	payload, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("CreateItem: %w", err)
	}
	for attempt := 1; ; attempt++ {
		row := db.QueryRow(ctx,
			`INSERT INTO second_chance_items (id, date_added, attributes)
			 SELECT COALESCE(MAX(id), 0) + 1, $1, $2::jsonb FROM second_chance_items
			 RETURNING id, date_added, attributes`,
			dateAdded,
			string(payload),
		)
		it, err := scanItem(row)
		if err == nil {
			return it, nil
		}
		if !isUniqueViolation(err) || attempt == maxCreateAttempts {
			return nil, fmt.Errorf("CreateItem: %w", err)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("CreateItem: %w", ctx.Err())
		}
	}
}

func GetItemByID(ctx context.Context, db database.DB, id string) (*model.Item, error) {
	n, ok := parseItemID(id)
	if !ok {
		return nil, fmt.Errorf("GetItemByID: %w", model.ErrNotFound)
	}
	row := db.QueryRow(ctx,
		`SELECT id, date_added, attributes FROM second_chance_items WHERE id = $1`,
		n,
	)
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("GetItemByID: %w", model.ErrNotFound)
		}
		return nil, fmt.Errorf("GetItemByID: %w", err)
	}
	return it, nil
}

// UpdateItem shallow-merges fields into the stored attributes.
func UpdateItem(ctx context.Context, db database.DB, id string, fields map[string]any) error {
	n, ok := parseItemID(id)
	if !ok {
		return fmt.Errorf("UpdateItem: %w", model.ErrNotFound)
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("UpdateItem: %w", err)
	}
	tag, err := db.Exec(ctx,
		`UPDATE second_chance_items SET attributes = attributes || $2::jsonb
		 WHERE id = $1`,
		n,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("UpdateItem: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("UpdateItem: %w", model.ErrNotFound)
	}
	return nil
}

func DeleteItem(ctx context.Context, db database.DB, id string) error {
	n, ok := parseItemID(id)
	if !ok {
		return fmt.Errorf("DeleteItem: %w", model.ErrNotFound)
	}
	tag, err := db.Exec(ctx, `DELETE FROM second_chance_items WHERE id = $1`, n)
	if err != nil {
		return fmt.Errorf("DeleteItem: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("DeleteItem: %w", model.ErrNotFound)
	}
	return nil
}
