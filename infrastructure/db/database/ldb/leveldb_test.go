package ldb

import (
	"os"
	"testing"

	"github.com/kaspanet/mergedag/infrastructure/db/database"
)

func prepareDatabaseForTest(t *testing.T, testName string) (ldb *LevelDB, teardownFunc func()) {
	path, err := os.MkdirTemp("", testName)
	if err != nil {
		t.Fatalf("%s: TempDir unexpectedly failed: %s", testName, err)
	}
	ldb, err = NewLevelDB(path, 8)
	if err != nil {
		t.Fatalf("%s: NewLevelDB unexpectedly failed: %s", testName, err)
	}
	teardownFunc = func() {
		err = ldb.Close()
		if err != nil {
			t.Fatalf("%s: Close unexpectedly failed: %s", testName, err)
		}
		_ = os.RemoveAll(path)
	}
	return ldb, teardownFunc
}

func TestLevelDBSanity(t *testing.T) {
	ldb, teardownFunc := prepareDatabaseForTest(t, "TestLevelDBSanity")
	defer teardownFunc()

	key := database.MakeBucket([]byte("bucket")).Key([]byte("key"))
	putData := []byte("Hello world!")
	err := ldb.Put(key, putData)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Put returned unexpected error: %s", err)
	}

	getData, err := ldb.Get(key)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Get returned unexpected error: %s", err)
	}
	if string(getData) != string(putData) {
		t.Fatalf("TestLevelDBSanity: get data and put data are not equal. Put: %s, got: %s",
			string(putData), string(getData))
	}

	err = ldb.Delete(key)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Delete returned unexpected error: %s", err)
	}
	_, err = ldb.Get(key)
	if !database.IsNotFoundError(err) {
		t.Fatalf("TestLevelDBSanity: Get after Delete returned %v, want ErrNotFound", err)
	}
}

func TestLevelDBTransactionSanity(t *testing.T) {
	ldb, teardownFunc := prepareDatabaseForTest(t, "TestLevelDBTransactionSanity")
	defer teardownFunc()

	key := database.MakeBucket([]byte("bucket")).Key([]byte("key"))
	putData := []byte("Hello world!")

	tx, err := ldb.Begin()
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Begin unexpectedly failed: %s", err)
	}
	err = tx.Put(key, putData)
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Put returned unexpected error: %s", err)
	}
	exists, err := ldb.Has(key)
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Has returned unexpected error: %s", err)
	}
	if exists {
		t.Fatalf("TestLevelDBTransactionSanity: uncommitted data is visible outside the transaction")
	}
	err = tx.Commit()
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Commit returned unexpected error: %s", err)
	}
	getData, err := ldb.Get(key)
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Get returned unexpected error: %s", err)
	}
	if string(getData) != string(putData) {
		t.Fatalf("TestLevelDBTransactionSanity: committed data mismatch. Want: %s, got: %s",
			string(putData), string(getData))
	}

	otherKey := database.MakeBucket([]byte("bucket")).Key([]byte("other"))
	tx, err = ldb.Begin()
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Begin unexpectedly failed: %s", err)
	}
	err = tx.Put(otherKey, putData)
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Put returned unexpected error: %s", err)
	}
	err = tx.Rollback()
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Rollback returned unexpected error: %s", err)
	}
	err = tx.RollbackUnlessClosed()
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: RollbackUnlessClosed returned unexpected error: %s", err)
	}
	exists, err = ldb.Has(otherKey)
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Has returned unexpected error: %s", err)
	}
	if exists {
		t.Fatalf("TestLevelDBTransactionSanity: rolled back data was written")
	}
}

func TestLevelDBCursor(t *testing.T) {
	ldb, teardownFunc := prepareDatabaseForTest(t, "TestLevelDBCursor")
	defer teardownFunc()

	bucket := database.MakeBucket([]byte("bucket"))
	otherBucket := database.MakeBucket([]byte("bucket2"))
	for _, suffix := range []string{"c", "a", "b"} {
		err := ldb.Put(bucket.Key([]byte(suffix)), []byte("value-"+suffix))
		if err != nil {
			t.Fatalf("TestLevelDBCursor: Put returned unexpected error: %s", err)
		}
	}
	err := ldb.Put(otherBucket.Key([]byte("z")), []byte("unrelated"))
	if err != nil {
		t.Fatalf("TestLevelDBCursor: Put returned unexpected error: %s", err)
	}

	cursor, err := ldb.Cursor(bucket)
	if err != nil {
		t.Fatalf("TestLevelDBCursor: Cursor returned unexpected error: %s", err)
	}
	defer cursor.Close()

	var suffixes []string
	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			t.Fatalf("TestLevelDBCursor: Key returned unexpected error: %s", err)
		}
		value, err := cursor.Value()
		if err != nil {
			t.Fatalf("TestLevelDBCursor: Value returned unexpected error: %s", err)
		}
		if string(value) != "value-"+string(key.Suffix()) {
			t.Fatalf("TestLevelDBCursor: unexpected value %s for key %s", value, key.Suffix())
		}
		suffixes = append(suffixes, string(key.Suffix()))
	}
	if len(suffixes) != 3 || suffixes[0] != "a" || suffixes[1] != "b" || suffixes[2] != "c" {
		t.Fatalf("TestLevelDBCursor: unexpected cursor order %v", suffixes)
	}
}
