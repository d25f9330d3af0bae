package utils

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"io"
	"strings"
	"unicode"
)

// CompressString compresses the input string using gzip with BestCompression level.
// Returns base64 encoded string for safe storage in JSON/BoltDB.
func CompressString(input string) (string, error) {
	var buf bytes.Buffer
	gzipWriter, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return "", err
	}
	_, err = gzipWriter.Write([]byte(input))
	if err != nil {
		return "", err
	}
	if err := gzipWriter.Close(); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecompressString decompresses the input base64 encoded string using gzip and returns the original string.
func DecompressString(input string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(input)
	if err != nil {
		return "", err
	}
	buf := bytes.NewBuffer(data)
	gzipReader, err := gzip.NewReader(buf)
	if err != nil {
		return "", err
	}
	defer gzipReader.Close()
	result, err := io.ReadAll(gzipReader)
	if err != nil {
		return "", err
	}
	return string(result), nil
}

// collapseWhitespace folds runs of whitespace into single spaces and strips
// surrounding space.
func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
			}
			lastSpace = true
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// NormalizeTitle lowercases a title and collapses whitespace so the same song
// matches across sessions regardless of casing or padding differences. Used
// for cache and blacklist keys, never for provider-facing titles.
func NormalizeTitle(title string) string {
	return collapseWhitespace(strings.ToLower(title))
}

// StripVersionInfo removes parenthesized and bracketed segments (remix tags,
// TV-size markers) so provider searches see the plain title. Casing is kept:
// providers match display titles, not normalized keys.
func StripVersionInfo(s string) string {
	for {
		start := strings.IndexAny(s, "([")
		if start < 0 {
			break
		}
		var closer byte = ')'
		if s[start] == '[' {
			closer = ']'
		}
		end := strings.IndexByte(s[start:], closer)
		if end < 0 {
			break
		}
		s = s[:start] + " " + s[start+end+1:]
	}
	return collapseWhitespace(s)
}
