package statement

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rivalapexmediation/reconciler/core/storage"
	"github.com/rivalapexmediation/reconciler/feature/recon/models"

	"github.com/minio/minio-go/v7"
)

// FetchReportCSV downloads one report object from the statement archive.
func FetchReportCSV(ctx context.Context, archive storage.Client, bucket, object string) (string, error) {
	obj, err := archive.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to fetch report %s: %w", object, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return "", fmt.Errorf("failed to read report %s: %w", object, err)
	}
	return string(data), nil
}

// ScanReports lists CSV objects under a prefix in the statement archive
// and filters out ones already recorded as loaded for the network. Object
// keys double as load ids, so a scan after a partial run picks up exactly
// the reports that still need ingesting.
func (s *Service) ScanReports(ctx context.Context, archive storage.Client, bucket, network, prefix string) ([]string, error) {
	exists, err := archive.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check archive bucket %s: %w", bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("archive bucket %s does not exist", bucket)
	}

	var keys []string
	for obj := range archive.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list archive objects: %w", obj.Err)
		}
		if !strings.HasSuffix(obj.Key, ".csv") {
			continue
		}
		keys = append(keys, obj.Key)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	var loadedIDs []string
	err = s.db.WithContext(ctx).Model(&models.StatementLoad{}).
		Where("network = ? AND load_id IN ?", network, keys).
		Pluck("load_id", &loadedIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check loaded reports: %w", err)
	}

	loaded := make(map[string]bool, len(loadedIDs))
	for _, id := range loadedIDs {
		loaded[id] = true
	}

	var pending []string
	for _, key := range keys {
		if !loaded[key] {
			pending = append(pending, key)
		}
	}
	return pending, nil
}
