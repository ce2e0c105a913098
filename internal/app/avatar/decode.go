package avatar

import (
	"bytes"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

const svgContentType = "image/svg+xml"

var errEmptyImage = errors.New("avatar: empty image")

// Decode turns a stored avatar string into bytes and a content type. It accepts data
// URLs, bare base64 and raw markup such as an inline SVG document.
func Decode(image string) ([]byte, string, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return nil, "", errEmptyImage
	}

	if rest, ok := strings.CutPrefix(image, "data:"); ok {
		return decodeDataURL(rest)
	}

	if data, err := base64.StdEncoding.DecodeString(image); err == nil && len(data) > 0 {
		return data, sniff(data), nil
	}

	data := []byte(image)
	return data, sniff(data), nil
}

// decodeDataURL parses the part of a data URL after "data:".
func decodeDataURL(rest string) ([]byte, string, error) {
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", errors.New("avatar: malformed data URL")
	}

	isBase64 := strings.HasSuffix(meta, ";base64")
	mediaType := strings.TrimSuffix(meta, ";base64")
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}

	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", err
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, "", err
		}
		data = []byte(unescaped)
	}

	if len(data) == 0 {
		return nil, "", errEmptyImage
	}
	if mediaType == "" {
		mediaType = sniff(data)
	}
	return data, mediaType, nil
}

// sniff detects the content type, recognising SVG documents that the standard
// detection reports as plain text or XML.
func sniff(data []byte) string {
	detected := http.DetectContentType(data)
	if strings.HasPrefix(detected, "text/") && bytes.Contains(data, []byte("<svg")) {
		return svgContentType
	}
	return detected
}
