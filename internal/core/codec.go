package core

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
)

// EncodedAttachment is an attachment ready to embed in a JSON payload.
type EncodedAttachment struct {
	Name      string `json:"name"`
	MediaType string `json:"mimeType"`
	Data      string `json:"data"`
}

// Codec transcodes attachments to standard base64.
type Codec struct{}

// Encode reads the whole attachment and returns its base64 body without any
// data-URI prefix. Read failures wrap ErrAttachmentRead and are not retried.
func (Codec) Encode(ctx context.Context, a Attachment) (EncodedAttachment, error) {
	if err := ctx.Err(); err != nil {
		return EncodedAttachment{}, fmt.Errorf("%w: %v", ErrAttachmentRead, err)
	}
	if a.Handle == nil {
		return EncodedAttachment{}, fmt.Errorf("%w: %s: no file handle", ErrAttachmentRead, a.Name)
	}

	rc, err := a.Handle.Open()
	if err != nil {
		return EncodedAttachment{}, fmt.Errorf("%w: open %s: %v", ErrAttachmentRead, a.Name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return EncodedAttachment{}, fmt.Errorf("%w: read %s: %v", ErrAttachmentRead, a.Name, err)
	}

	return EncodedAttachment{
		Name:      a.Name,
		MediaType: a.MediaType,
		Data:      base64.StdEncoding.EncodeToString(raw),
	}, nil
}

// Decode returns the raw bytes of an encoded attachment.
func (Codec) Decode(e EncodedAttachment) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(StripDataURI(e.Data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", e.Name, err)
	}
	return raw, nil
}
