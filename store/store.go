package store

// Store is the storage collaborator: a flat string keyspace. Clear with an
// empty key wipes everything; with a key it removes that entry only.
type Store interface {
	Set(key, value string) error
	Get(key string) (string, bool)
	List() ([]string, error)
	Clear(key string) error
}
