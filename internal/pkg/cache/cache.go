// Package cache keeps a read-through copy of the day's time record and
// the branch geofence configuration in a local bbolt file, so the
// kiosk keeps rendering known state while the backend is unreachable.
// The backend remains the system of record; nothing here is
// authoritative.
package cache

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/cmlabs-hris/timeclock-agent/internal/domain/timeclock"
)

var (
	dayRecordsBucket = []byte("day_records")
	branchesBucket   = []byte("branches")
)

// Store is a local bbolt-backed cache.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the cache file and its buckets.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache at %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{dayRecordsBucket, branchesBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func dayKey(employeeNumber string, date time.Time) []byte {
	return []byte(employeeNumber + "|" + date.Format("2006-01-02"))
}

// PutDayRecord stores the record for its employee and date.
func (s *Store) PutDayRecord(rec timeclock.DailyTimeRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode day record: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(dayRecordsBucket).Put(dayKey(rec.EmployeeNumber, rec.Date), payload)
	})
}

// DayRecord returns the cached record for the employee and date, or
// nil when none is cached.
func (s *Store) DayRecord(employeeNumber string, date time.Time) (*timeclock.DailyTimeRecord, error) {
	var rec *timeclock.DailyTimeRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(dayRecordsBucket).Get(dayKey(employeeNumber, date))
		if raw == nil {
			return nil
		}
		rec = &timeclock.DailyTimeRecord{}
		return json.Unmarshal(raw, rec)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read cached day record: %w", err)
	}
	return rec, nil
}

// PutBranch stores the employee's branch configuration.
func (s *Store) PutBranch(employeeNumber string, branch timeclock.BranchLocation) error {
	payload, err := json.Marshal(branch)
	if err != nil {
		return fmt.Errorf("failed to encode branch: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(branchesBucket).Put([]byte(employeeNumber), payload)
	})
}

// Branch returns the cached branch configuration, or nil when none is
// cached.
func (s *Store) Branch(employeeNumber string) (*timeclock.BranchLocation, error) {
	var branch *timeclock.BranchLocation
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(branchesBucket).Get([]byte(employeeNumber))
		if raw == nil {
			return nil
		}
		branch = &timeclock.BranchLocation{}
		return json.Unmarshal(raw, branch)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read cached branch: %w", err)
	}
	return branch, nil
}
