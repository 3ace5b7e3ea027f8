package domain

import "time"

// FileInfo is one entry from the file source's directory listing.
type FileInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedTime time.Time `json:"createdTime"`
}

// Content encodings reported by the file source. Callers must not infer the
// encoding from the file extension.
const (
	EncodingUTF8   = "utf8"
	EncodingBase64 = "base64"
)

// FileContent is the downloaded body of a listed file. Binary spreadsheets
// are delivered base64-encoded; everything else is plain text. Link is an
// externally accessible URL for the file, required by the pulse-oximeter
// conversion path.
type FileContent struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"` // EncodingUTF8 or EncodingBase64
	Link     string `json:"link,omitempty"`
}
