// Package photo turns inbound data-URI photos into uploadable blobs with
// deterministic, filesystem-safe names.
package photo

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrNoPayload is returned when a data URI has no base64 payload segment.
var ErrNoPayload = errors.New("data URI has no base64 payload")

const defaultMIMEType = "image/jpeg"

// Blob is a decoded photo ready for upload.
type Blob struct {
	Data     []byte
	MIMEType string
	Ext      string
}

// DecodeDataURI decodes a `data:<mime>;base64,<payload>` string. The MIME
// type defaults to image/jpeg when the prefix is missing or unrecognizable;
// the extension is derived from the MIME subtype with jpeg normalized to jpg.
// Payload well-formedness is not validated beyond base64 decoding.
func DecodeDataURI(uri string) (Blob, error) {
	parts := strings.SplitN(uri, ",", 2)
	if len(parts) < 2 {
		return Blob{}, ErrNoPayload
	}

	mimeType := defaultMIMEType
	head := parts[0]
	if strings.HasPrefix(head, "data:") {
		if i := strings.Index(head, ";"); i > len("data:") {
			mimeType = head[len("data:"):i]
		}
	}

	data, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return Blob{}, fmt.Errorf("decoding base64 payload: %w", err)
	}

	return Blob{Data: data, MIMEType: mimeType, Ext: extFromMIME(mimeType)}, nil
}

func extFromMIME(mimeType string) string {
	_, sub, ok := strings.Cut(mimeType, "/")
	if !ok || sub == "" {
		return "jpg"
	}
	if sub == "jpeg" {
		return "jpg"
	}
	return sub
}
