package cache

// Keyer derives cache keys.
type Keyer interface {
	// SnapshotKey is the key of the index snapshot for a layout.
	SnapshotKey(layoutHash string, opts SnapshotKeyOpts) string
}

// SnapshotKeyOpts holds the index options a snapshot depends on.
type SnapshotKeyOpts struct {
	// BucketSize is the requested bucket size; 0 means derived.
	BucketSize float64 `json:"bucket_size"`
}

// DefaultKeyer produces "snapshot:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SnapshotKey hashes the layout hash together with the index options.
func (DefaultKeyer) SnapshotKey(layoutHash string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", layoutHash, opts)
}
