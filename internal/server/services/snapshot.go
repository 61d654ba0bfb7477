package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/notesync/internal/common"
	"github.com/dmitrijs2005/notesync/internal/logging"
	sc "github.com/dmitrijs2005/notesync/internal/server/config"
	"github.com/dmitrijs2005/notesync/internal/server/models"
	"github.com/dmitrijs2005/notesync/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const snapshotURLExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Snapshot is the document written to object storage.
type Snapshot struct {
	TakenAt int64          `json:"takenAt"`
	Notes   []*models.Note `json:"notes"`
}

// SnapshotResult locates a stored snapshot.
type SnapshotResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// SnapshotService exports every note, tombstones included, to an
// S3-compatible bucket.
type SnapshotService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
	now         func() time.Time
}

func NewSnapshotService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config, logger logging.Logger) *SnapshotService {
	return &SnapshotService{
		db:          db,
		repomanager: repomanager,
		config:      config,
		logger:      logger.With("module", "snapshots"),
		now:         time.Now,
	}
}

// GetRandomSnapshotKey returns a date-partitioned, collision-free object key.
func GetRandomSnapshotKey(d time.Time) string {
	return fmt.Sprintf("snapshots/%d/%d/%d/%v.json", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *SnapshotService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		// MinIO and most self-hosted backends only serve path-style URLs.
		o.UsePathStyle = true
	}), nil
}

// Take uploads a snapshot and returns its key with a presigned GET URL.
// It returns common.ErrSnapshotsDisabled when no bucket is configured.
func (s *SnapshotService) Take(ctx context.Context) (*SnapshotResult, error) {
	if !s.config.SnapshotsEnabled() {
		return nil, common.ErrSnapshotsDisabled
	}

	all, err := s.repomanager.Notes(s.db).SelectAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}

	takenAt := s.now()
	body, err := json.Marshal(Snapshot{TakenAt: takenAt.UnixMilli(), Notes: all})
	if err != nil {
		return nil, fmt.Errorf("error encoding snapshot: %w", err)
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating s3 client: %w", err)
	}

	bucket := s.config.S3Bucket
	key := GetRandomSnapshotKey(takenAt.UTC())

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("error uploading snapshot: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(snapshotURLExpiry))
	if err != nil {
		return nil, fmt.Errorf("error presigning snapshot url: %w", err)
	}

	s.logger.Info(ctx, "snapshot stored", "key", key, "notes", len(all))

	return &SnapshotResult{Key: key, URL: req.URL}, nil
}
