// Package media turns a locally picked file into a durable public URL:
// read bytes, derive a timestamp key, classify the content type, upload
// without overwrite, resolve the public URL.
package media

import (
	"context"
	"fmt"
	"time"

	"github.com/pogibrader/noted/internal/backend"
	"github.com/pogibrader/noted/internal/filex"
	"github.com/pogibrader/noted/internal/logging"
)

// Kind is the user-declared attachment kind.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// UploadError covers read, transport and permission failures during upload.
// A note record must never be written after an UploadError.
type UploadError struct {
	Op  string
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload: %s: %v", e.Op, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// ContentInfo is the storage key extension and MIME type for an attachment.
type ContentInfo struct {
	Ext  string
	MIME string
}

// Classify maps a file path and kind to key extension and MIME type.
//
// The table reproduces the original client exactly and is deliberately a
// heuristic, not content sniffing:
//
//	kind=video            -> video/mp4, ext from path or "mp4"
//	kind=image, ext "png" -> image/png
//	kind=image, other/""  -> image/jpeg, ext from path or "jpg"
//
// A ".jpeg" file that is really something else is mis-tagged on purpose;
// compatibility with existing stored objects depends on this rule.
func Classify(path string, kind Kind) ContentInfo {
	ext := filex.Ext(path)
	if ext == "" {
		if kind == KindVideo {
			ext = "mp4"
		} else {
			ext = "jpg"
		}
	}

	mime := "image/jpeg"
	switch {
	case kind == KindVideo:
		mime = "video/mp4"
	case ext == "png":
		mime = "image/png"
	}
	return ContentInfo{Ext: ext, MIME: mime}
}

// Attachment is the durable result of a successful upload.
type Attachment struct {
	URL  string
	Kind Kind
}

// Uploader writes attachments into a bucket of an object store.
type Uploader struct {
	store  backend.ObjectStore
	bucket string
	log    logging.Logger

	// now is a seam for deterministic storage keys in tests.
	now func() time.Time
}

func NewUploader(store backend.ObjectStore, bucket string, log logging.Logger) *Uploader {
	return &Uploader{store: store, bucket: bucket, log: log, now: time.Now}
}

// Upload reads the picked file and stores it under a timestamp-derived key.
// Keys are unique per millisecond; an existing key is rejected by the store
// rather than overwritten.
func (u *Uploader) Upload(ctx context.Context, localPath string, kind Kind) (*Attachment, error) {
	data, err := filex.ReadLocalFile(localPath)
	if err != nil {
		return nil, &UploadError{Op: "read file", Err: err}
	}

	info := Classify(localPath, kind)
	key := fmt.Sprintf("uploads/%d.%s", u.now().UnixMilli(), info.Ext)

	if err := u.store.Upload(ctx, u.bucket, key, data, info.MIME); err != nil {
		return nil, &UploadError{Op: "store object", Err: err}
	}

	url := u.store.PublicURL(u.bucket, key)
	u.log.Debug(ctx, "media uploaded", "key", key, "mime", info.MIME, "bytes", len(data))

	return &Attachment{URL: url, Kind: kind}, nil
}
