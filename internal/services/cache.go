package services

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"returns-dashboard/internal/models"
	"returns-dashboard/internal/spreadsheet"
)

const cacheVersion = "v1"

var errCacheStale = errors.New("cache built with different read options")

type cachedRecords struct {
	Options   spreadsheet.ReadOptions
	Records   []models.TransactionRecord
	Report    spreadsheet.LoadReport
	CreatedAt time.Time
}

func cacheFilename(dir, inputPath string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(inputPath)
	return filepath.Join(dir, fmt.Sprintf("%s_%s.gob", name, cacheVersion))
}

func saveCache(dir, inputPath string, opts spreadsheet.ReadOptions, records []models.TransactionRecord, report spreadsheet.LoadReport) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	file, err := os.Create(cacheFilename(dir, inputPath))
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(cachedRecords{
		Options:   opts,
		Records:   records,
		Report:    report,
		CreatedAt: time.Now(),
	})
}

func loadCache(dir, inputPath string, opts spreadsheet.ReadOptions) (*cachedRecords, error) {
	file, err := os.Open(cacheFilename(dir, inputPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var data cachedRecords
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, err
	}
	if data.Options != opts {
		return nil, errCacheStale
	}
	return &data, nil
}
