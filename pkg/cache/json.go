package cache

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSON stores a value of type T in a JSON column. It is JSONB on PostgreSQL
// and JSON (text) on SQLite.
type JSON[T any] struct {
	Data T
}

// NewJSON wraps v for storage.
func NewJSON[T any](v T) JSON[T] {
	return JSON[T]{Data: v}
}

// Value implements driver.Valuer interface for database writes.
func (j JSON[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface for database reads.
func (j *JSON[T]) Scan(value any) error {
	var zero T
	j.Data = zero

	var bytes []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to unmarshal JSON value: unsupported type")
	}

	if len(bytes) == 0 {
		return nil
	}
	if err := json.Unmarshal(bytes, &j.Data); err != nil {
		return fmt.Errorf("invalid JSON in database: %w", err)
	}
	return nil
}

// GormDataType implements schema.GormDataTypeInterface.
func (JSON[T]) GormDataType() string {
	return "json"
}

// GormDBDataType implements migrator.GormDataTypeInterface.
func (JSON[T]) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "JSON"
}

// MarshalJSON implements json.Marshaler interface.
func (j JSON[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.Data)
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (j *JSON[T]) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &j.Data)
}
