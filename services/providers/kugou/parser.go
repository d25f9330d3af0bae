package kugou

import (
	"encoding/base64"
	"strings"
)

const (
	// pureMusicText is the Chinese placeholder Kugou uses for instrumental tracks
	pureMusicText = "纯音乐，请欣赏"

	// instrumentalText is the replacement line for pure music
	instrumentalText = "[00:00.00][Instrumental Only]"
)

// decodeBase64Content decodes base64-encoded LRC content and strips the BOM.
func decodeBase64Content(encoded string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(string(decoded), "\ufeff"), nil
}

// normalizeLyrics replaces the pure-music placeholder and unescapes the HTML
// entities Kugou leaves in some payloads.
func normalizeLyrics(lrc string) string {
	lrc = strings.ReplaceAll(lrc, "&apos;", "'")
	if strings.Contains(lrc, pureMusicText) {
		return instrumentalText
	}
	return lrc
}
