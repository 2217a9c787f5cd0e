package ldb

import "github.com/syndtr/goleveldb/leveldb/opt"

// Options returns a leveldb opt.Options struct for opening a database.
// The cache and write buffer sizes are given in MiB.
func Options(cacheSizeMiB int) *opt.Options {
	// Default to 16 MiB if the cache size is not specified.
	if cacheSizeMiB <= 0 {
		cacheSizeMiB = 16
	}
	return &opt.Options{
		Compression:            opt.NoCompression,
		BlockCacheCapacity:     cacheSizeMiB * opt.MiB,
		WriteBuffer:            (cacheSizeMiB / 2) * opt.MiB,
		DisableSeeksCompaction: true,
	}
}
