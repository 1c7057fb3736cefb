// Package storage persists runs as small file bundles: metadata.json with the
// configuration summary and metrics, records.csv with the per tick history
// and detections.csv with the raw detection history.
package storage
