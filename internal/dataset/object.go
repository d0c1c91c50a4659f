package dataset

import (
	"context"
	"io"
	"path"

	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/andresuchdata/skusim/internal/storage"
)

// ObjectSource reads the three input CSVs from S3-compatible object storage.
type ObjectSource struct {
	client      storage.ObjectStorage
	forecastKey string
	errorsKey   string
	leadTimeKey string
}

// NewObjectSource creates a source reading prefix/<file> for each input.
func NewObjectSource(client storage.ObjectStorage, prefix, forecastFile, errorsFile, leadTimeFile string) *ObjectSource {
	return &ObjectSource{
		client:      client,
		forecastKey: path.Join(prefix, forecastFile),
		errorsKey:   path.Join(prefix, errorsFile),
		leadTimeKey: path.Join(prefix, leadTimeFile),
	}
}

func (s *ObjectSource) Name() string {
	return "object:" + s.forecastKey
}

func (s *ObjectSource) Load(ctx context.Context) (domain.HistoricalInput, error) {
	return loadColumns(ctx, s.openKey(s.forecastKey), s.openKey(s.errorsKey), s.openKey(s.leadTimeKey))
}

func (s *ObjectSource) openKey(key string) opener {
	return func(ctx context.Context) (io.ReadCloser, error) {
		return s.client.GetObject(ctx, key)
	}
}
