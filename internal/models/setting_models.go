package models

// Setting is a key/value pair for runtime configuration stored in the
// database (e.g. registered Telegram chat ids).
type Setting struct {
	Key   string `json:"key" db:"key"`
	Value string `json:"value" db:"value"`
}
