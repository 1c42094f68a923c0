package models

// These structs define the inbound document-arrival notification. The S3 event
// notification shape is the canonical one; a GCS object event is folded into it
// as a single record.

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// ErrInvalidNotification marks a notification that cannot yield a DocumentReference.
var ErrInvalidNotification = errors.New("invalid notification")

const (
	EventSourceS3  = "aws:s3"
	EventSourceGCS = "google.cloud.storage"
)

// StorageNotification is a batch of object-created records.
type StorageNotification struct {
	Records []NotificationRecord `json:"Records"`
}

type NotificationRecord struct {
	EventSource string   `json:"eventSource,omitempty"`
	S3          S3Entity `json:"s3"`
}

type S3Entity struct {
	Bucket S3Bucket `json:"bucket"`
	Object S3Object `json:"object"`
}

type S3Bucket struct {
	Name string `json:"name"`
}

type S3Object struct {
	Key string `json:"key"`
}

// GCSEvent is the payload of a GCS object-finalized CloudEvent.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// DecodeNotification parses either an S3-style notification or a GCS object event.
func DecodeNotification(data []byte) (StorageNotification, error) {
	var envelope struct {
		Records json.RawMessage `json:"Records"`
		GCSEvent
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return StorageNotification{}, fmt.Errorf("%w: %v", ErrInvalidNotification, err)
	}

	if len(envelope.Records) > 0 && string(envelope.Records) != "null" {
		var n StorageNotification
		if err := json.Unmarshal(data, &n); err != nil {
			return StorageNotification{}, fmt.Errorf("%w: %v", ErrInvalidNotification, err)
		}
		return n, nil
	}
	if envelope.Bucket != "" || envelope.Name != "" {
		return FromGCSEvent(envelope.GCSEvent), nil
	}
	return StorageNotification{}, fmt.Errorf("%w: payload has neither Records nor bucket/name", ErrInvalidNotification)
}

// FromGCSEvent wraps a GCS object event as a one-record notification.
func FromGCSEvent(e GCSEvent) StorageNotification {
	return StorageNotification{Records: []NotificationRecord{{
		EventSource: EventSourceGCS,
		S3: S3Entity{
			Bucket: S3Bucket{Name: e.Bucket},
			Object: S3Object{Key: e.Name},
		},
	}}}
}

// Reference returns the document named by record i.
// S3 keys arrive URL-encoded and are decoded here; GCS names are used verbatim.
func (n StorageNotification) Reference(i int) (DocumentReference, error) {
	if i < 0 || i >= len(n.Records) {
		return DocumentReference{}, fmt.Errorf("%w: no record at index %d (have %d)", ErrInvalidNotification, i, len(n.Records))
	}
	r := n.Records[i]
	if r.S3.Bucket.Name == "" {
		return DocumentReference{}, fmt.Errorf("%w: record %d has no bucket name", ErrInvalidNotification, i)
	}
	key := r.S3.Object.Key
	if r.EventSource != EventSourceGCS {
		decoded, err := url.QueryUnescape(key)
		if err != nil {
			return DocumentReference{}, fmt.Errorf("%w: record %d key %q: %v", ErrInvalidNotification, i, key, err)
		}
		key = decoded
	}
	if key == "" {
		return DocumentReference{}, fmt.Errorf("%w: record %d has no object key", ErrInvalidNotification, i)
	}
	return DocumentReference{Bucket: r.S3.Bucket.Name, Key: key}, nil
}
