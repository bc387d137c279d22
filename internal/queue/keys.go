package queue

import "strings"

var (
	keyEscaper   = strings.NewReplacer("%", "%25", ".", "%2E")
	keyUnescaper = strings.NewReplacer("%2E", ".", "%25", "%")
)

// EscapeKey makes a path safe to use as one segment of a dotted job key.
// Distinct paths always escape to distinct keys.
func EscapeKey(path string) string {
	return keyEscaper.Replace(path)
}

// UnescapeKey reverses EscapeKey.
func UnescapeKey(key string) string {
	return keyUnescaper.Replace(key)
}

// JobKey identifies a (source, output) pair.
func JobKey(inputPath, outputPath string) string {
	return EscapeKey(inputPath) + "." + EscapeKey(outputPath)
}
