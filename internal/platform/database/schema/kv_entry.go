package schema

// KVEntryTable represents the 'finboard.kv_entry' table
type KVEntryTable struct {
	Table     string
	Key       string
	Value     string
	ExpiresAt string
	UpdatedAt string
}

// KVEntry is the schema definition for finboard.kv_entry
var KVEntry = KVEntryTable{
	Table:     "finboard.kv_entry",
	Key:       "key",
	Value:     "value",
	ExpiresAt: "expires_at",
	UpdatedAt: "updated_at",
}

// SQLiteKVEntry is the same table inside the schema-less SQLite database
var SQLiteKVEntry = KVEntryTable{
	Table:     "kv_entry",
	Key:       "key",
	Value:     "value",
	ExpiresAt: "expires_at",
}

// Columns returns all standard column names
func (t KVEntryTable) Columns() []string {
	return []string{t.Key, t.Value, t.ExpiresAt}
}
