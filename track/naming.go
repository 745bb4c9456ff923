// SPDX-License-Identifier: EPL-2.0

package track

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	unsafeChars   = regexp.MustCompile(`[^A-Za-z0-9 _.\-]`)
)

// Sanitize returns a filesystem-safe version of name: runs of
// whitespace collapse to a single underscore, every character outside
// [A-Za-z0-9 _.-] becomes an underscore, and leading/trailing
// whitespace and dots are trimmed. Returns "track" when nothing
// survives. Sanitize is idempotent.
func Sanitize(name string) string {
	s := strings.TrimSpace(name)
	s = whitespaceRun.ReplaceAllString(s, "_")
	s = unsafeChars.ReplaceAllString(s, "_")
	s = strings.Trim(s, " .")
	if s == "" {
		return "track"
	}
	return s
}

// MonoPath is the output path of a mono track: NN_Name.wav with the
// zero-padded output channel number.
func MonoPath(dir string, outputChannel int, name string) string {
	return filepath.Join(dir, fmt.Sprintf("%02d_%s.wav", outputChannel, Sanitize(name)))
}

// BusPath is the output path of a stereo bus track.
func BusPath(dir, fileName string) string {
	return filepath.Join(dir, Sanitize(fileName)+".wav")
}
