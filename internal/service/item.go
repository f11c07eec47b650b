package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"second-chance/internal/cache"
	"second-chance/internal/database"
	"second-chance/internal/logging"
	"second-chance/internal/model"
	"second-chance/internal/store"

	"github.com/redis/go-redis/v9"
)

var (
	listItems   = store.ListItems
	createItem  = store.CreateItem
	getItemByID = store.GetItemByID
	updateItem  = store.UpdateItem
	deleteItem  = store.DeleteItem
)

// ItemRepository owns the second_chance_items collection. When a cache is
// configured, single-item reads go through it.
type ItemRepository struct {
	db       database.DB
	cache    cache.Cache
	cacheTTL time.Duration
	log      logging.Logger
}

// NewItemRepository accepts a nil cache.
func NewItemRepository(db database.DB, c cache.Cache, cacheTTL time.Duration, log logging.Logger) *ItemRepository {
	if log == nil {
		log = logging.Discard()
	}
	return &ItemRepository{db: db, cache: c, cacheTTL: cacheTTL, log: log.With("component", "items")}
}

// Cached entries are keyed by a per-item generation. Update and Delete bump
// the generation after the database write, so a reader that loaded the old
// row before the bump can only store it under a key nobody reads again.
func itemGenKey(id string) string { return "item:" + id + ":gen" }

func itemEntryKey(id string, gen int64) string {
	return "item:" + id + ":v" + strconv.FormatInt(gen, 10)
}

func (r *ItemRepository) List(ctx context.Context, filter store.ItemFilter) ([]model.Item, error) {
	items, err := listItems(ctx, r.db, filter)
	if err != nil {
		return nil, persistence("list items", err)
	}
	return items, nil
}

// Create stores fields as a new item. id and date_added are assigned here
// and any caller-supplied values for them are dropped. imageRef, when set,
// is stored under image unless the caller already named one.
func (r *ItemRepository) Create(ctx context.Context, fields map[string]any, imageRef string) (*model.Item, error) {
	attrs := model.StripReserved(fields)
	if imageRef != "" {
		if _, ok := attrs[model.ItemFieldImage]; !ok {
			attrs[model.ItemFieldImage] = imageRef
		}
	}
	it, err := createItem(ctx, r.db, timeNow().Unix(), attrs)
	if err != nil {
		return nil, persistence("create item", err)
	}
	r.log.Info(ctx, "item created", "item_id", it.ID)
	return it, nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id string) (*model.Item, error) {
	gen, useCache := r.generation(ctx, id)
	if useCache {
		if it, ok := r.cached(ctx, id, gen); ok {
			return it, nil
		}
	}
	it, err := getItemByID(ctx, r.db, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, persistence("get item", err)
	}
	if useCache {
		r.remember(ctx, it, gen)
	}
	return it, nil
}

// Update merges partial into the item's attributes. Fields not named in
// partial are left as they were.
func (r *ItemRepository) Update(ctx context.Context, id string, partial map[string]any) error {
	if err := updateItem(ctx, r.db, id, model.StripReserved(partial)); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		return persistence("update item", err)
	}
	r.forget(ctx, id)
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	if err := deleteItem(ctx, r.db, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		return persistence("delete item", err)
	}
	r.forget(ctx, id)
	return nil
}

// Cache failures are logged and fall through to the database.

// generation reports the item's current cache generation. false means the
// cache is off or unreachable and must not be used for this read.
func (r *ItemRepository) generation(ctx context.Context, id string) (int64, bool) {
	if r.cache == nil {
		return 0, false
	}
	gen, err := r.cache.Get(ctx, itemGenKey(id)).Int64()
	switch {
	case err == nil:
		return gen, true
	case errors.Is(err, redis.Nil):
		return 0, true
	default:
		r.log.Warn(ctx, "item cache generation read failed", "item_id", id, "error", err)
		return 0, false
	}
}

func (r *ItemRepository) cached(ctx context.Context, id string, gen int64) (*model.Item, bool) {
	raw, err := r.cache.Get(ctx, itemEntryKey(id, gen)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn(ctx, "item cache read failed", "item_id", id, "error", err)
		}
		return nil, false
	}
	var it model.Item
	if err := json.Unmarshal(raw, &it); err != nil {
		r.log.Warn(ctx, "item cache entry corrupt", "item_id", id, "error", err)
		return nil, false
	}
	return &it, true
}

func (r *ItemRepository) remember(ctx context.Context, it *model.Item, gen int64) {
	raw, err := json.Marshal(it)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, itemEntryKey(it.ID, gen), raw, r.cacheTTL).Err(); err != nil {
		r.log.Warn(ctx, "item cache write failed", "item_id", it.ID, "error", err)
	}
}

// forget retires every entry cached for id and drops the one that was current.
func (r *ItemRepository) forget(ctx context.Context, id string) {
	if r.cache == nil {
		return
	}
	gen, err := r.cache.Incr(ctx, itemGenKey(id)).Result()
	if err != nil {
		r.log.Warn(ctx, "item cache invalidate failed", "item_id", id, "error", err)
		return
	}
	if err := r.cache.Del(ctx, itemEntryKey(id, gen-1)).Err(); err != nil {
		r.log.Warn(ctx, "item cache delete failed", "item_id", id, "error", err)
	}
}
