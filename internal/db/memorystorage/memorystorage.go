package memorystorage

import (
	"github.com/patric-chuzhbe/smrs/internal/db/jsondb"
	"github.com/patric-chuzhbe/smrs/internal/models"
)

// MemoryStorage keeps cookies for the lifetime of the process only.
type MemoryStorage struct {
	*jsondb.JSONDB
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.CacheStruct{
				Cookies: map[string][]models.StoredCookie{},
			},
		},
	}, nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}
