// Package srcfmt implements the one piece of the external-interface
// surface (spec.md §6) shared by both front-end source and backend
// constraint source: the `=====`-separated combined-source format,
// where each non-first chunk is headed by a `stem.ext` line.
package srcfmt

import "strings"

// Split divides a combined source into its entry chunk (the first,
// header-less chunk) and the remaining chunks keyed by the stem.ext
// on their header line.
func Split(src string) (entry string, chunks map[string]string) {
	parts := strings.Split(src, "\n=====\n")
	chunks = map[string]string{}
	if len(parts) == 0 {
		return "", chunks
	}
	entry = parts[0]
	for _, part := range parts[1:] {
		nl := strings.IndexByte(part, '\n')
		if nl < 0 {
			chunks[strings.TrimSpace(part)] = ""
			continue
		}
		stem := strings.TrimSpace(part[:nl])
		chunks[stem] = part[nl+1:]
	}
	return entry, chunks
}
