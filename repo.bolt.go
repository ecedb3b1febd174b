package main

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

// CatalogKinds lists every kind stored by the catalog.
var CatalogKinds = []string{
	AuthorsResource,
	PublishersResource,
	CategoriesResource,
	BooksResource,
	BorrowingsResource,
}

type boltDocumentStorage struct {
	logger *zap.Logger
	client *bolt.DB
}

// GetBoltDBClient setup the database and one bucket per kind then provides a ready to use client.
func GetBoltDBClient(config *Config) (*bolt.DB, error) {
	db, err := bolt.Open(config.BoltDB.FilePath, 0o600, &bolt.Options{Timeout: config.BoltDB.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, kind := range CatalogKinds {
			if _, errB := tx.CreateBucketIfNotExists([]byte(kind)); errB != nil {
				return fmt.Errorf("failed to create %s bucket: %v", kind, errB)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up buckets: %v", err)
	}
	return db, nil
}

// NewBoltDocumentStorage provides an instance of bolt-based document storage.
func NewBoltDocumentStorage(logger *zap.Logger, client *bolt.DB) DocumentStorage {
	return &boltDocumentStorage{
		logger: logger,
		client: client,
	}
}

// itob returns an 8-byte big endian representation of v so that
// cursor order matches numeric order.
func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func (bs *boltDocumentStorage) bucket(tx *bolt.Tx, kind string) (*bolt.Bucket, error) {
	b := tx.Bucket([]byte(kind))
	if b == nil {
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
	return b, nil
}

// NextID returns the next sequence value of the kind bucket.
func (bs *boltDocumentStorage) NextID(_ context.Context, kind string) (int64, error) {
	var id uint64
	err := bs.client.Update(func(tx *bolt.Tx) error {
		b, err := bs.bucket(tx, kind)
		if err != nil {
			return err
		}
		id, err = b.NextSequence()
		return err
	})
	return int64(id), err
}

// Put inserts or replaces the document. A mirrored id greater than the
// bucket sequence moves the sequence forward.
func (bs *boltDocumentStorage) Put(_ context.Context, kind string, id int64, doc []byte) error {
	return bs.client.Update(func(tx *bolt.Tx) error {
		b, err := bs.bucket(tx, kind)
		if err != nil {
			return err
		}
		if uint64(id) > b.Sequence() {
			if err = b.SetSequence(uint64(id)); err != nil {
				return err
			}
		}
		return b.Put(itob(id), doc)
	})
}

func (bs *boltDocumentStorage) Get(_ context.Context, kind string, id int64) ([]byte, error) {
	var doc []byte
	err := bs.client.View(func(tx *bolt.Tx) error {
		b, err := bs.bucket(tx, kind)
		if err != nil {
			return err
		}
		result := b.Get(itob(id))
		if result == nil {
			return ErrRecordNotFound
		}
		// bolt values are only valid during the transaction.
		doc = append([]byte(nil), result...)
		return nil
	})
	return doc, err
}

func (bs *boltDocumentStorage) Delete(_ context.Context, kind string, id int64) error {
	return bs.client.Update(func(tx *bolt.Tx) error {
		b, err := bs.bucket(tx, kind)
		if err != nil {
			return err
		}
		if b.Get(itob(id)) == nil {
			return ErrRecordNotFound
		}
		return b.Delete(itob(id))
	})
}

// List walks the kind bucket with a cursor. Keys are big endian so the
// documents come out in ascending id order.
func (bs *boltDocumentStorage) List(_ context.Context, kind string) ([][]byte, error) {
	docs := [][]byte{}
	err := bs.client.View(func(tx *bolt.Tx) error {
		b, err := bs.bucket(tx, kind)
		if err != nil {
			return err
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			docs = append(docs, append([]byte(nil), v...))
		}
		return nil
	})
	return docs, err
}
