package storage

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/infradyn/docextract/constants"
	"github.com/infradyn/docextract/internal/common"
)

// Locator is an immutable reference to a document's byte content. Three shapes
// are accepted:
//
//   - store://bucket/key            explicit object-store reference
//   - https://bucket.s3.region.host/key   virtual-hosted object URL; the bucket is
//     read structurally from the hostname (the labels before "s3"), not by prefix
//   - any other http(s) URL         plain download (pre-signed links)
type Locator struct {
	Raw    string
	Bucket string
	Key    string

	// DownloadURL is set only for plain http(s) locators.
	DownloadURL string
}

const storeScheme = "store"

// ParseLocator parses a raw document reference into a Locator.
func ParseLocator(raw string) (Locator, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Locator{}, common.NewNotFound(fmt.Sprintf("invalid locator: %s", raw), err)
	}

	switch u.Scheme {
	case storeScheme:
		key := strings.TrimPrefix(u.Path, "/")
		if key == "" {
			return Locator{}, common.NewNotFound(fmt.Sprintf("locator has no object key: %s", raw), nil)
		}
		return Locator{Raw: raw, Bucket: u.Host, Key: key}, nil

	case "http", "https":
		if bucket, ok := bucketFromHost(u.Hostname()); ok {
			return Locator{Raw: raw, Bucket: bucket, Key: strings.TrimPrefix(u.Path, "/")}, nil
		}
		return Locator{Raw: raw, DownloadURL: raw}, nil
	}

	return Locator{}, common.NewNotFound(fmt.Sprintf("unsupported locator scheme: %s", raw), nil)
}

// bucketFromHost detects virtual-hosted object URLs: any hostname of the form
// <bucket>.s3.<region-and-service-domain>. The bucket may itself contain dots.
func bucketFromHost(host string) (string, bool) {
	labels := strings.Split(host, ".")
	for i := 1; i < len(labels)-1; i++ {
		if labels[i] == "s3" {
			return strings.Join(labels[:i], "."), true
		}
	}
	return "", false
}

// Filename returns the base name of the locator's path with any query string
// already stripped by parsing.
func (l Locator) Filename() string {
	if l.Key != "" {
		return path.Base(l.Key)
	}
	u, err := url.Parse(l.DownloadURL)
	if err != nil {
		return ""
	}
	return path.Base(u.Path)
}

// Ext returns the lowercased file extension including the dot (".pdf"), or ""
// when the path has none.
func (l Locator) Ext() string {
	return strings.ToLower(path.Ext(l.Filename()))
}

// Format maps the locator's extension to a document format; "" when unsupported.
func (l Locator) Format() constants.Format {
	return constants.MapExtToFormat(l.Ext())
}

// ObjectRef returns the bucket/key pair for object-store access. ok is false
// for plain download locators, which cannot be handed to the OCR service.
func (l Locator) ObjectRef() (bucket, key string, ok bool) {
	if l.Key == "" {
		return "", "", false
	}
	return l.Bucket, l.Key, true
}
