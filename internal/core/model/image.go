package model

// ContentKey is the digest of an upload's bytes plus its lowercased extension.
// It doubles as the dedup key and the stored filename.
type ContentKey string

func (k ContentKey) String() string {
	return string(k)
}

type UploadedImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

type StoredFile struct {
	Key     ContentKey `json:"key"`
	Path    string     `json:"path"`
	Size    int64      `json:"size"`
	Created bool       `json:"created"` // false when the key was already present
}
