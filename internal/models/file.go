package models

// StoredFile is one blob under a transfer's "{code}/" namespace.
type StoredFile struct {
	Key  string `json:"key"`
	Name string `json:"name"` // key relative to the listed prefix
	Size int64  `json:"size"`
}

// DownloadFile is a listed blob paired with a short-lived signed URL.
type DownloadFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}
