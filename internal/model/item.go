package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Item field names owned by the repository. Callers cannot set them.
const (
	ItemFieldID        = "id"
	ItemFieldDateAdded = "date_added"
	ItemFieldImage     = "image"
)

// Item is a classified listing. Everything except ID and DateAdded is
// caller-defined and stored as-is.
type Item struct {
	ID         string
	DateAdded  int64
	Attributes map[string]any
}

// MarshalJSON renders the item as one flat object, id and date_added
// alongside the caller's attributes.
func (i Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.Attributes)+2)
	for k, v := range i.Attributes {
		out[k] = v
	}
	out[ItemFieldID] = i.ID
	out[ItemFieldDateAdded] = i.DateAdded
	return json.Marshal(out)
}

func (i *Item) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw[ItemFieldID].(type) {
	case string:
		i.ID = v
	case float64:
		i.ID = strconv.FormatInt(int64(v), 10)
	case nil:
		i.ID = ""
	default:
		return fmt.Errorf("item id: unexpected type %T", v)
	}
	if v, ok := raw[ItemFieldDateAdded].(float64); ok {
		i.DateAdded = int64(v)
	}
	i.Attributes = StripReserved(raw)
	return nil
}

// StripReserved returns a copy of fields without the repository-owned
// keys (and the legacy document key _id).
func StripReserved(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case ItemFieldID, ItemFieldDateAdded, "_id":
			continue
		}
		out[k] = v
	}
	return out
}
