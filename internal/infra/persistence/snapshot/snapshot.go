// Package snapshot encodes the dataset document for the persistence adapters,
// either whole or split into one JSON payload per top-level key.
package snapshot

import (
	"encoding/json"
	"fmt"

	"residency/pkg/domain"
)

// Bucket names match the top-level keys of the snapshot document.
const (
	BucketSettings      = "settings"
	BucketUsers         = "users"
	BucketHouseholds    = "households"
	BucketResidents     = "residents"
	BucketNotifications = "notifications"
	BucketActivityLogs  = "activity_logs"
)

// Buckets lists every bucket in document order.
var Buckets = []string{
	BucketSettings,
	BucketUsers,
	BucketHouseholds,
	BucketResidents,
	BucketNotifications,
	BucketActivityLogs,
}

// Bucket is one encoded top-level key.
type Bucket struct {
	Name    string
	Payload []byte
}

func targets(ds *domain.Dataset) map[string]any {
	return map[string]any{
		BucketSettings:      &ds.Settings,
		BucketUsers:         &ds.Users,
		BucketHouseholds:    &ds.Households,
		BucketResidents:     &ds.Residents,
		BucketNotifications: &ds.Notifications,
		BucketActivityLogs:  &ds.ActivityLogs,
	}
}

// Split encodes each top-level key separately.
func Split(ds domain.Dataset) ([]Bucket, error) {
	src := targets(&ds)
	out := make([]Bucket, 0, len(Buckets))
	for _, name := range Buckets {
		payload, err := json.Marshal(src[name])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		out = append(out, Bucket{Name: name, Payload: payload})
	}
	return out, nil
}

// Join decodes buckets back into a dataset. Unknown buckets are ignored and
// missing ones stay empty. No buckets at all yields domain.ErrNoDataset.
func Join(buckets []Bucket) (domain.Dataset, error) {
	if len(buckets) == 0 {
		return domain.Dataset{}, domain.ErrNoDataset
	}
	var ds domain.Dataset
	dst := targets(&ds)
	for _, b := range buckets {
		target, ok := dst[b.Name]
		if !ok || len(b.Payload) == 0 {
			continue
		}
		if err := json.Unmarshal(b.Payload, target); err != nil {
			return domain.Dataset{}, fmt.Errorf("decode %s: %w", b.Name, err)
		}
	}
	return ds, nil
}

// Marshal encodes the whole document with two-space indentation.
func Marshal(ds domain.Dataset) ([]byte, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode dataset: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a whole document. An empty payload yields
// domain.ErrNoDataset.
func Unmarshal(data []byte) (domain.Dataset, error) {
	if len(data) == 0 {
		return domain.Dataset{}, domain.ErrNoDataset
	}
	var ds domain.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return domain.Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	return ds, nil
}
