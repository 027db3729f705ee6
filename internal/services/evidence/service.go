package evidence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/model"
)

// Service writes point-in-time evidence snapshots to object storage when a
// server is flagged. Snapshots outlive the retention sweep, which only covers
// the database rows.
type Service struct {
	client *minio.Client
	bucket string
	now    func() time.Time

	ensureOnce sync.Once
	ensureErr  error
}

type snapshot struct {
	ServerID   string            `json:"server_id"`
	CapturedAt time.Time         `json:"captured_at"`
	Players    []model.Player    `json:"players"`
	Chat       []model.ChatEntry `json:"chat"`
}

func NewService(client *minio.Client, bucket string) *Service {
	return &Service{
		client: client,
		bucket: strings.TrimSpace(bucket),
		now:    time.Now,
	}
}

func (s *Service) ensureBucket(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	if s.bucket == "" {
		return fmt.Errorf("s3 bucket is empty")
	}

	s.ensureOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.ensureErr = err
			return
		}
		if exists {
			return
		}
		s.ensureErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	})

	if s.ensureErr != nil {
		return fmt.Errorf("ensure s3 bucket %q: %w", s.bucket, s.ensureErr)
	}

	return nil
}

// Capture stores the current roster and chat window as one JSON object and
// returns its key.
func (s *Service) Capture(ctx context.Context, serverID string, players []model.Player, chat []model.ChatEntry) (string, error) {
	if serverID == "" {
		return "", fmt.Errorf("server id is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	capturedAt := s.now().UTC()
	body, err := json.Marshal(snapshot{
		ServerID:   serverID,
		CapturedAt: capturedAt,
		Players:    players,
		Chat:       chat,
	})
	if err != nil {
		return "", fmt.Errorf("encode evidence snapshot: %w", err)
	}

	key := fmt.Sprintf("snapshots/%s/%s.json", serverID, capturedAt.Format("20060102T150405Z"))
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("put evidence snapshot: %w", err)
	}

	return key, nil
}
