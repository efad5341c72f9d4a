package cidstore

import "time"

// Entry is the single GORM model backing the CID store: one row per
// distinct content-addressed blob. The CID is the primary key, so
// inserting the same CID twice is a no-op rather than an error.
type Entry struct {
	CID       string    `gorm:"primaryKey;column:cid"`
	Data      []byte    `gorm:"column:data;not null"`
	SizeBytes int64     `gorm:"column:size_bytes;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index"`
}

// TableName pins the table name so it reads like the Python
// implementation's cid_data table rather than GORM's pluralized default.
func (Entry) TableName() string { return "cid_data" }

// AllModels returns the models AutoMigrate must create. Mirrors the
// teacher's one-function-lists-every-model convention even though this
// store has a single table.
func AllModels() []any {
	return []any{&Entry{}}
}
