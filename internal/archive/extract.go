// SPDX-License-Identifier: AGPL-3.0-or-later

package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/bartekus/testman/internal/fixture"
	"github.com/bartekus/testman/internal/harnesserr"
)

// Open exposes data as a random-access zip archive.
func Open(data []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, harnesserr.Archive("open zip", err)
	}
	return zr, nil
}

// Extract writes every entry of data accepted by match into dir, named by the
// entry's basename. Two entries sharing a basename resolve last-write-wins.
//
// Invalid archives fail before anything is written. On any other error the
// contents of dir are unspecified and must be discarded by the caller.
func Extract(data []byte, match fixture.EntryMatcher, dir string) ([]fixture.Fixture, error) {
	zr, err := Open(data)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, harnesserr.IO("create "+dir, err)
	}

	written := make(map[string]bool)
	var fixtures []fixture.Fixture
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || !match.Match(zf.Name) {
			continue
		}
		dst := filepath.Join(dir, path.Base(zf.Name))
		if err := extractOne(zf, dst); err != nil {
			return nil, err
		}
		if !written[dst] {
			written[dst] = true
			fixtures = append(fixtures, fixture.New(dst))
		}
	}
	return fixtures, nil
}

func extractOne(zf *zip.File, dst string) (err error) {
	rc, err := zf.Open()
	if err != nil {
		return harnesserr.Archive("open entry "+zf.Name, err)
	}
	defer func() { _ = rc.Close() }()

	f, err := os.Create(dst)
	if err != nil {
		return harnesserr.IO("create "+dst, err)
	}
	defer func() {
		cerr := f.Close()
		if err == nil && cerr != nil {
			err = harnesserr.IO("close "+dst, cerr)
		}
	}()

	if _, err := io.Copy(f, rc); err != nil {
		// A corrupt entry surfaces as a read error from the decompressor.
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return harnesserr.IO("write "+dst, err)
		}
		return harnesserr.Archive("read entry "+zf.Name, err)
	}
	return nil
}
