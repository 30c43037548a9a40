package util

import "github.com/gabriel-vasile/mimetype"

// DetectMIME sniffs the content type of the leading bytes of a payload.
func DetectMIME(head []byte) string {
	return mimetype.Detect(head).String()
}
