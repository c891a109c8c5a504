package model

const (
	FileTypeAvatar = "avatar"
)

// File describes an uploaded object after it has been written to storage.
type File struct {
	Type        string
	OwnerID     string
	Key         string // storage key, relative to the upload root
	URL         string // public URL served by the API
	ContentType string
	Size        int64
}
