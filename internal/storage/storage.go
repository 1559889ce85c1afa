package storage

import "context"

// CoverResolver maps a cover-image object name from the fixed pool to a URL
// the frontend can load.
type CoverResolver interface {
	Resolve(ctx context.Context, objectName string) (string, error)
}

// StaticCovers serves covers from the application's own static assets.
type StaticCovers struct {
	Prefix string // e.g. "/covers/"
}

func (s StaticCovers) Resolve(_ context.Context, objectName string) (string, error) {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "/covers/"
	}
	return prefix + objectName, nil
}
