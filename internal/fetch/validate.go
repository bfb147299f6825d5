package fetch

import "strings"

// minDocumentBytes filters out the tiny error pages the origin serves
// for years or grades that were never published.
const minDocumentBytes = 500

// ValidateDocument rejects bodies that are too small to be a contest or
// that carry the origin's access-denied interstitial.
func ValidateDocument(url, body string) error {
	if len(body) < minDocumentBytes {
		return &DocumentError{URL: url, Reason: "body too small"}
	}
	if strings.Contains(body, "Access denied") {
		return &DocumentError{URL: url, Reason: "access denied page"}
	}
	return nil
}
