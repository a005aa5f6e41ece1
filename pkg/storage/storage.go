// Package storage keeps user-uploaded objects such as avatars.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scriptaffiliator/pkg/supabase"
)

// Storage stores objects under slash-separated keys and exposes them by URL.
type Storage interface {
	Put(key, contentType string, data []byte) (publicURL string, err error)
	Delete(key string) error
	// KeyFromURL reverses a public URL produced by Put.
	KeyFromURL(publicURL string) (string, bool)
}

// DiskPrefix is the route the disk store is served under.
const DiskPrefix = "/storage/"

// Disk writes objects below a directory served statically at DiskPrefix.
type Disk struct {
	dir string
}

func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Disk{dir: dir}, nil
}

func (d *Disk) Dir() string { return d.dir }

func (d *Disk) Put(key, _ string, data []byte) (string, error) {
	p, err := d.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", err
	}
	return DiskPrefix + key, nil
}

func (d *Disk) Delete(key string) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (d *Disk) KeyFromURL(publicURL string) (string, bool) {
	i := strings.Index(publicURL, DiskPrefix)
	if i < 0 {
		return "", false
	}
	key := publicURL[i+len(DiskPrefix):]
	return key, key != ""
}

// path keeps keys inside the storage directory.
func (d *Disk) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(d.dir, clean), nil
}

// Bucket stores objects in a public Supabase storage bucket.
type Bucket struct {
	client *supabase.Client
	bucket string
}

func NewBucket(client *supabase.Client, bucket string) *Bucket {
	return &Bucket{client: client, bucket: bucket}
}

func (b *Bucket) Put(key, contentType string, data []byte) (string, error) {
	if err := b.client.Upload(b.bucket, key, contentType, data); err != nil {
		return "", err
	}
	return b.client.PublicURL(b.bucket, key), nil
}

func (b *Bucket) Delete(key string) error {
	return b.client.Remove(b.bucket, key)
}

func (b *Bucket) KeyFromURL(publicURL string) (string, bool) {
	marker := "/storage/v1/object/public/" + b.bucket + "/"
	i := strings.Index(publicURL, marker)
	if i < 0 {
		return "", false
	}
	key := publicURL[i+len(marker):]
	return key, key != ""
}
