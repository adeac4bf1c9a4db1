package hasher

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/agenthands/imgclass/internal/core/model"
)

// DefaultExtensions are the image types accepted when none are configured.
var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".gif"}

// Sum reads r to EOF and returns the hex MD5 of everything read.
func Sum(r io.Reader) (string, error) {
	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to hash content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Key derives the content key for an upload: digest of r followed by the
// lowercased extension of filename.
func Key(filename string, r io.Reader) (model.ContentKey, error) {
	sum, err := Sum(r)
	if err != nil {
		return "", err
	}
	return model.ContentKey(sum + Ext(filename)), nil
}

func KeyBytes(filename string, data []byte) (model.ContentKey, error) {
	return Key(filename, bytes.NewReader(data))
}

func Ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// Allowed reports whether filename carries one of the given extensions.
// An empty list means DefaultExtensions.
func Allowed(filename string, exts []string) bool {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	ext := Ext(filename)
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
