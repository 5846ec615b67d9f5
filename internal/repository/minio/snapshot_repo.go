package minio

import (
	"bytes"
	"context"

	"github.com/DRSN-tech/dropship-sync/internal/cfg"
	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// SnapshotRepo архивирует сырые листинги поставщиков в MinIO.
type SnapshotRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewSnapshotRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *SnapshotRepo {
	return &SnapshotRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Put загружает снимок и возвращает ключ объекта.
func (s *SnapshotRepo) Put(ctx context.Context, snapshot *domain.Snapshot) (string, error) {
	reader := bytes.NewReader(snapshot.Bytes)

	info, err := s.mc.PutObject(ctx, s.cfg.BucketName, snapshot.ObjectKey, reader, int64(len(snapshot.Bytes)), minio.PutObjectOptions{
		ContentType: snapshot.ContentType,
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}
