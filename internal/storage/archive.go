package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fnaconcept/site/internal/domain"
)

// MaxInquirySize bounds an archived inquiry document (64KB).
const MaxInquirySize = 64 << 10

// Archive stores inquiries as JSON documents.
type Archive struct {
	store Storage
}

// NewArchive returns an Archive backed by store.
func NewArchive(store Storage) *Archive {
	return &Archive{store: store}
}

// Save writes the inquiry under InquiryKey and returns the key.
func (a *Archive) Save(ctx context.Context, inq *domain.Inquiry) (string, error) {
	key := InquiryKey(inq.ReceivedAt, inq.ID)

	data, err := json.MarshalIndent(inq, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode inquiry: %w", err)
	}

	err = a.store.Put(ctx, key, bytes.NewReader(data), PutOptions{
		ContentType: "application/json",
		MaxSize:     MaxInquirySize,
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// Load reads the inquiry stored at key.
func (a *Archive) Load(ctx context.Context, key string) (*domain.Inquiry, error) {
	rc, _, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var inq domain.Inquiry
	if err := json.NewDecoder(rc).Decode(&inq); err != nil {
		return nil, fmt.Errorf("decode inquiry %s: %w", key, err)
	}
	return &inq, nil
}

// ListDay returns the keys of the inquiries received on the UTC day of t.
func (a *Archive) ListDay(ctx context.Context, t time.Time) ([]string, error) {
	objects, err := a.store.List(ctx, InquiryDayPrefix(t))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// Purge deletes the inquiries received before the UTC day of before and
// returns their keys. With dryRun nothing is deleted. Keys that do not follow
// the InquiryKey layout are left alone.
func (a *Archive) Purge(ctx context.Context, before time.Time, dryRun bool) ([]string, error) {
	cutoff := InquiryDayPrefix(before)

	objects, err := a.store.List(ctx, InquiryPrefix)
	if err != nil {
		return nil, err
	}

	var purged []string
	for _, obj := range objects {
		day, ok := inquiryDay(obj.Key)
		if !ok || day >= cutoff {
			continue
		}
		if !dryRun {
			if err := a.store.Delete(ctx, obj.Key); err != nil {
				return purged, err
			}
		}
		purged = append(purged, obj.Key)
	}
	return purged, nil
}

// inquiryDay returns the day prefix of an InquiryKey, such as
// "inquiries/2026/10/19/". Prefixes of this layout sort chronologically.
func inquiryDay(key string) (string, bool) {
	const dayLen = len("2006/01/02/")
	if !strings.HasPrefix(key, InquiryPrefix) || len(key) <= len(InquiryPrefix)+dayLen {
		return "", false
	}
	prefix := key[:len(InquiryPrefix)+dayLen]
	if _, err := time.Parse("2006/01/02/", prefix[len(InquiryPrefix):]); err != nil {
		return "", false
	}
	return prefix, true
}
