package model

// DBCursor walks the entries of a single bucket in key order. Stores use it
// to reload their in-memory indexes on startup.
type DBCursor interface {
	// First positions the cursor on the bucket's first entry and reports
	// whether there is one
	First() bool

	// Next advances the cursor and reports whether it is still on an entry
	Next() bool

	Key() (DBKey, error)
	Value() ([]byte, error)
	Close() error
}

// DBReader is the read side of the consensus database. Missing keys are
// reported with database.ErrNotFound.
type DBReader interface {
	Get(key DBKey) ([]byte, error)
	Has(key DBKey) (bool, error)
	Cursor(bucket DBBucket) (DBCursor, error)
}

// DBWriter can read and mutate the consensus database
type DBWriter interface {
	DBReader

	// Put overwrites any previous value of key
	Put(key DBKey, value []byte) error

	// Delete is a no-op for missing keys
	Delete(key DBKey) error
}

// DBTransaction groups the writes of one block insertion. Staged data is
// written into it, and it is committed only after the whole insertion
// succeeded.
type DBTransaction interface {
	DBWriter

	Commit() error
	Rollback() error

	// RollbackUnlessClosed is meant to be deferred right after Begin. It
	// does nothing once Commit or Rollback were called.
	RollbackUnlessClosed() error
}

// DBManager is the consensus view of the node database
type DBManager interface {
	DBWriter

	Begin() (DBTransaction, error)
}

// DBKey is a bucket together with a key suffix
type DBKey interface {
	Bytes() []byte
	Bucket() DBBucket
	Suffix() []byte
}

// DBBucket is a key prefix. Nested buckets extend their parent's path.
type DBBucket interface {
	Bucket(bucketBytes []byte) DBBucket
	Key(suffix []byte) DBKey
	Path() []byte
}
