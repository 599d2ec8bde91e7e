package utils

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
)

const blockSize = 32 * 1024

var bufferPool = sync.Pool{
	New: func() any {
		b := make([]byte, blockSize)
		return &b
	},
}

var digestPool = sync.Pool{
	New: func() any {
		return xxhash.New()
	},
}

// HashFile computes the xxhash64 of a whole file
func HashFile(fs afero.Fs, path string) (uint64, error) {
	file, err := fs.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()
	return hashReader(file)
}

func hashReader(r io.Reader) (uint64, error) {
	h := digestPool.Get().(*xxhash.Digest)
	h.Reset()
	defer digestPool.Put(h)

	bufPtr := bufferPool.Get().(*[]byte)
	defer bufferPool.Put(bufPtr)

	if _, err := io.CopyBuffer(h, r, *bufPtr); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// HashFileQuick hashes the size plus the first and last chunkSize bytes of a
// file. Files no larger than 2*chunkSize are hashed whole.
// Good enough to tell large files apart; equal quick hashes are not proof
// of equal content.
func HashFileQuick(fs afero.Fs, path string, chunkSize int64) (uint64, error) {
	file, err := fs.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return 0, err
	}
	size := info.Size()
	if size <= chunkSize*2 {
		return hashReader(file)
	}

	h := digestPool.Get().(*xxhash.Digest)
	h.Reset()
	defer digestPool.Put(h)

	var sizeBuf [8]byte
	binary.LittleEndian.PutUint64(sizeBuf[:], uint64(size))
	_, _ = h.Write(sizeBuf[:])

	chunk := make([]byte, chunkSize)
	if _, err := io.ReadFull(file, chunk); err != nil {
		return 0, fmt.Errorf("failed to read head of %s: %w", path, err)
	}
	_, _ = h.Write(chunk)

	if _, err := file.Seek(-chunkSize, io.SeekEnd); err != nil {
		return 0, err
	}
	if _, err := io.ReadFull(file, chunk); err != nil {
		return 0, fmt.Errorf("failed to read tail of %s: %w", path, err)
	}
	_, _ = h.Write(chunk)

	return h.Sum64(), nil
}
