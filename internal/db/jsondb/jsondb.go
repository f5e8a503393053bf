// Package jsondb keeps the client's cookies in a JSON file so a session
// survives between runs. Changes are held in memory and written on Close.
package jsondb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/patric-chuzhbe/smrs/internal/models"
)

type JSONDB struct {
	fileName string
	mu       sync.Mutex
	Cache    CacheStruct
}

// CacheStruct maps an origin (scheme://host) to the cookies it has set.
type CacheStruct struct {
	Cookies map[string][]models.StoredCookie
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(dbFile, `{
	"Cookies": {}
}`)
	if err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}

	return nil
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(cache)
}

// New opens fileName, initializing it when it does not exist yet or is empty.
func New(fileName string) (*JSONDB, error) {
	db := JSONDB{
		fileName: fileName,
		Cache:    CacheStruct{},
	}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("in internal/db/jsondb/jsondb.go/New(): error while `parseJSONFile()` calling: %w", err)
		}
		if err := initDBFile(fileName); err != nil {
			return nil, fmt.Errorf("in internal/db/jsondb/jsondb.go/New(): error while `initDBFile()` calling: %w", err)
		}
		if err := parseJSONFile(db.fileName, &db.Cache); err != nil {
			return nil, fmt.Errorf("in internal/db/jsondb/jsondb.go/New(): error while `parseJSONFile()` calling: %w", err)
		}
	}

	if db.Cache.Cookies == nil {
		db.Cache.Cookies = map[string][]models.StoredCookie{}
	}

	return &db, nil
}

// LoadCookies returns a copy of every stored cookie grouped by origin.
func (db *JSONDB) LoadCookies(ctx context.Context) (map[string][]models.StoredCookie, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make(map[string][]models.StoredCookie, len(db.Cache.Cookies))
	for origin, cookies := range db.Cache.Cookies {
		result[origin] = append([]models.StoredCookie{}, cookies...)
	}

	return result, nil
}

// SaveCookies replaces the cookies stored for origin. An empty list removes the origin.
func (db *JSONDB) SaveCookies(ctx context.Context, origin string, cookies []models.StoredCookie) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if len(cookies) == 0 {
		delete(db.Cache.Cookies, origin)
		return nil
	}
	db.Cache.Cookies[origin] = append([]models.StoredCookie{}, cookies...)

	return nil
}

func (db *JSONDB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return writeToJSONFile(db.fileName, db.Cache)
}
