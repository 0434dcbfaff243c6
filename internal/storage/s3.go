package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"query-desk/internal/domain"
)

// ObjectPutter is the subset of the S3 client used by the archiver.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver writes deleted queries to Amazon S3 (or compatible APIs) as JSON objects.
type S3Archiver struct {
	client    ObjectPutter
	bucket    string
	keyPrefix string
	now       func() time.Time
}

func NewS3Archiver(client ObjectPutter, bucket, keyPrefix string) *S3Archiver {
	return &S3Archiver{
		client:    client,
		bucket:    bucket,
		keyPrefix: strings.Trim(keyPrefix, "/"),
		now:       time.Now,
	}
}

func (a *S3Archiver) Archive(ctx context.Context, msg domain.QueryMessage) (string, error) {
	if a.bucket == "" {
		return "", fmt.Errorf("storage bucket is required")
	}

	deletedAt := a.now().UTC()
	body, err := json.Marshal(ArchivedQuery{
		ID:        msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Message:   msg.Message,
		CreatedAt: msg.CreatedAt,
		DeletedAt: deletedAt,
	})
	if err != nil {
		return "", fmt.Errorf("encode archived query: %w", err)
	}

	key := a.objectKey(msg.ID, deletedAt)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		ACL:         types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	return fmt.Sprintf("s3://%s/%s", a.bucket, key), nil
}

// objectKey lays archived queries out by deletion day: <prefix>/2024/06/01/query-5-<unix>.json
func (a *S3Archiver) objectKey(id int64, deletedAt time.Time) string {
	name := fmt.Sprintf("%s/query-%d-%d.json", deletedAt.Format("2006/01/02"), id, deletedAt.Unix())
	if a.keyPrefix == "" {
		return name
	}
	return a.keyPrefix + "/" + name
}

var _ Archiver = (*S3Archiver)(nil)
