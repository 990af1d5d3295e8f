package utils

import "strings"

// invalidFilenameChars are replaced so a deck name can be used as a file name
// on every platform the packages are downloaded to.
const invalidFilenameChars = `\/:*?"<>|`

// SanitizeFilename replaces characters that are invalid in filenames with an
// underscore. "Parent::Child" becomes "Parent__Child".
func SanitizeFilename(filename string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidFilenameChars, r) {
			return '_'
		}
		return r
	}, filename)
}
