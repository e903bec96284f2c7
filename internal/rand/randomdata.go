// Package rand produces random payloads for tests
package rand

import (
	"bytes"
	"math/rand"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// Bytes returns a random slice of bytes
func Bytes(n int) []byte {
	return randBytes(n)
}

// LetterString returns a random string picked in the [0-9]|[a-z] range
func LetterString(n int) string {
	return string(randLetterBytes(n))
}

// Tree writes a number of files with random content of the given size under some root directory.
//
// Files are spread over a few subdirectories. Their slash-separated paths, relative to root, are returned sorted.
func Tree(fs afero.Fs, root string, files, size int) ([]string, error) {
	res := make([]string, 0, files)
	for i := 0; i < files; i++ {
		rel := path.Join(LetterString(4), LetterString(8)+".bin")
		if i%3 == 0 {
			rel = LetterString(8) + ".txt"
		}
		pth := filepath.Join(root, filepath.FromSlash(rel))
		if err := fs.MkdirAll(filepath.Dir(pth), 0700); err != nil {
			return nil, err
		}
		if err := afero.WriteFile(fs, pth, Bytes(size), 0600); err != nil {
			return nil, err
		}
		res = append(res, rel)
	}
	sort.Strings(res)
	return res, nil
}

var (
	onceSource  sync.Once
	rgen        *rand.Rand
	onceLetters sync.Once
	randMutex   sync.Mutex
	letters     []byte
)

func seed() {
	rgen = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec
}

func randBytes(n int) []byte {
	onceSource.Do(seed)
	buf := make([]byte, n)
	randMutex.Lock()
	_, _ = rgen.Read(buf)
	randMutex.Unlock()
	return buf
}

func makeLetters() {
	// pads over 256 locations, so "a" is slightly more frequent than other signs
	letters = bytes.Repeat([]byte("abcdefghijklmnopqrstuvwxyz0123456789a"), 7)
}

func randLetterBytes(n int) []byte {
	onceLetters.Do(makeLetters)
	buf := randBytes(n)
	for i, b := range buf {
		buf[i] = letters[b]
	}
	return buf
}
