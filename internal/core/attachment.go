package core

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileHandle is an opaque reference to the bytes of a selected file.
type FileHandle interface {
	Open() (io.ReadCloser, error)
}

// Attachment is the single file selected for a form.
type Attachment struct {
	Handle    FileHandle `json:"-"`
	Name      string     `json:"name"`
	MediaType string     `json:"mimeType"`
	Size      int64      `json:"size"`
}

// BytesHandle serves an in-memory file.
type BytesHandle []byte

// Open implements FileHandle.
func (b BytesHandle) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// PathHandle opens a file on disk each time it is read.
type PathHandle string

// Open implements FileHandle.
func (p PathHandle) Open() (io.ReadCloser, error) {
	return os.Open(string(p))
}

// AttachmentFromPath builds an attachment for a file on disk. The media type
// is derived from the extension.
func AttachmentFromPath(path string) (Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("stat attachment: %w", err)
	}
	if info.IsDir() {
		return Attachment{}, fmt.Errorf("stat attachment: %s is a directory", path)
	}
	name := filepath.Base(path)
	return Attachment{
		Handle:    PathHandle(path),
		Name:      name,
		MediaType: MediaTypeFor(name),
		Size:      info.Size(),
	}, nil
}

// AttachmentFromDataURL decodes a "data:<type>;base64,<body>" URL, or a bare
// base64 body, into an in-memory attachment. An explicit mediaType wins over
// the one in the URL.
func AttachmentFromDataURL(name, mediaType, dataURL string) (Attachment, error) {
	if mediaType == "" {
		mediaType = dataURLMediaType(dataURL)
	}
	if mediaType == "" {
		mediaType = MediaTypeFor(name)
	}
	raw, err := base64.StdEncoding.DecodeString(StripDataURI(dataURL))
	if err != nil {
		return Attachment{}, fmt.Errorf("decode data url: %w", err)
	}
	return Attachment{
		Handle:    BytesHandle(raw),
		Name:      name,
		MediaType: mediaType,
		Size:      int64(len(raw)),
	}, nil
}

// StripDataURI removes a "data:...," prefix, leaving only the encoded body.
// Input without such a prefix is returned unchanged.
func StripDataURI(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[i+1:]
	}
	return s
}

func dataURLMediaType(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return ""
	}
	meta := strings.TrimPrefix(s, "data:")
	if i := strings.IndexByte(meta, ','); i >= 0 {
		meta = meta[:i]
	}
	if i := strings.IndexByte(meta, ';'); i >= 0 {
		meta = meta[:i]
	}
	return meta
}

// documentTypes maps the accepted extensions to their media types.
var documentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// MediaTypeFor returns the media type for a file name, or
// application/octet-stream when the extension is not a known document type.
func MediaTypeFor(name string) string {
	if mt, ok := documentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return mt
	}
	return "application/octet-stream"
}

// AttachmentPolicy holds the selection constraints.
type AttachmentPolicy struct {
	MaxSize int64
}

// DefaultAttachmentPolicy returns the 10 MiB document policy.
func DefaultAttachmentPolicy() AttachmentPolicy {
	return AttachmentPolicy{MaxSize: MaxAttachmentSize}
}

// Check validates a selection. Size is checked first; a file is an accepted
// type when either its extension or its media type is a PDF, Word or Excel
// document.
func (p AttachmentPolicy) Check(a Attachment) error {
	maxSize := p.MaxSize
	if maxSize <= 0 {
		maxSize = MaxAttachmentSize
	}
	if a.Size > maxSize {
		return &ValidationError{Field: "file", Value: a.Name, Err: ErrAttachmentTooLarge}
	}
	if !isDocument(a) {
		return &ValidationError{Field: "file", Value: a.Name, Err: ErrAttachmentType}
	}
	return nil
}

func isDocument(a Attachment) bool {
	if _, ok := documentTypes[strings.ToLower(filepath.Ext(a.Name))]; ok {
		return true
	}
	mt := strings.ToLower(strings.TrimSpace(a.MediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	for _, known := range documentTypes {
		if mt == known {
			return true
		}
	}
	return false
}
