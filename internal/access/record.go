package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Record is the minimal projection of a resource row the engine needs:
// identity, ownership, soft-delete state, and the raw columns delegation
// references resolve against.
type Record struct {
	Type            string
	ID              string
	CreatedByUserID string
	DeletedAt       *time.Time

	fields map[string]any
}

// StringField returns the named column as a string when present and non-empty.
func (r *Record) StringField(name string) (string, bool) {
	raw, ok := r.fields[name]
	if !ok || raw == nil {
		return "", false
	}
	value := asString(raw)
	if value == "" {
		return "", false
	}
	return value, true
}

// loadRecord fetches one row of the given table. An absent row yields
// (nil, nil); only datastore failures return an error. The table name always
// comes from the type registry, never from caller input.
func loadRecord(ctx context.Context, db *gorm.DB, table, id string) (*Record, error) {
	row := map[string]any{}
	err := db.WithContext(ctx).
		Table(table).
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("access: load %s row: %w", table, err)
	}

	rec := &Record{
		Type:   table,
		ID:     id,
		fields: row,
	}
	if creator, ok := rec.StringField("created_by_user_id"); ok {
		rec.CreatedByUserID = creator
	}
	if deleted, ok := row["deleted_at"]; ok {
		rec.DeletedAt = asTime(deleted)
	}

	return rec, nil
}

func asString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case *interface{}:
		// gorm's map scan hands back *interface{} for columns whose declared
		// type the driver does not recognize (uuid columns among them).
		if v == nil {
			return ""
		}
		return asString(*v)
	default:
		return ""
	}
}

func asTime(raw any) *time.Time {
	switch v := raw.(type) {
	case nil:
		return nil
	case time.Time:
		return &v
	case *time.Time:
		return v
	case *interface{}:
		if v == nil {
			return nil
		}
		return asTime(*v)
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, v); err == nil {
				return &t
			}
		}
		return nil
	default:
		return nil
	}
}
