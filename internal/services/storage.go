package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"campusfeed/internal/config"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const MaxUploadSize = 20 << 20

// bucket -> 允许的 MIME 类型前缀
var bucketRules = map[string][]string{
	"pdfs":   {"application/pdf"},
	"notes":  {"application/pdf"},
	"images": {"image/"},
}

// Storage persists an object and returns its public URL.
type Storage interface {
	Put(ctx context.Context, bucket, name, contentType string, data []byte) (string, error)
}

// UploadResult 上传结果
type UploadResult struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

// NewStorage picks the driver named in the config.
func NewStorage(cfg *config.Config) Storage {
	if cfg.StorageDriver == "remote" {
		return NewRemoteStorage(cfg.StorageRemote, cfg.StorageKey)
	}
	return NewLocalStorage(cfg.StorageDir, cfg.StoragePublic)
}

// Upload validates the file against the bucket rules and stores it as <bucket>/<uuid><ext>.
func Upload(ctx context.Context, store Storage, bucket string, r io.Reader) (*UploadResult, error) {
	allowed, ok := bucketRules[bucket]
	if !ok {
		return nil, InvalidInput("Unknown bucket.")
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, InvalidInput("File is empty.")
	}
	if len(data) > MaxUploadSize {
		return nil, InvalidInput("File is larger than 20 MB.")
	}

	mt := mimetype.Detect(data)
	contentType := mt.String()
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if !mimeAllowed(contentType, allowed) {
		return nil, InvalidInput(fmt.Sprintf("Files of type %s are not allowed here.", contentType))
	}

	name := uuid.NewString() + mt.Extension()
	url, err := store.Put(ctx, bucket, name, contentType, data)
	if err != nil {
		return nil, err
	}
	return &UploadResult{Path: bucket + "/" + name, URL: url, ContentType: contentType, Size: len(data)}, nil
}

func mimeAllowed(contentType string, allowed []string) bool {
	for _, prefix := range allowed {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}

// LocalStorage 写入本地目录，由 /files 静态路由提供访问
type LocalStorage struct {
	dir       string
	publicURL string
}

func NewLocalStorage(dir, publicURL string) *LocalStorage {
	return &LocalStorage{dir: dir, publicURL: strings.TrimSuffix(publicURL, "/")}
}

func (s *LocalStorage) Dir() string {
	return s.dir
}

func (s *LocalStorage) Put(_ context.Context, bucket, name, _ string, data []byte) (string, error) {
	folder := filepath.Join(s.dir, bucket)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("create bucket dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(folder, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	return s.publicURL + "/" + bucket + "/" + name, nil
}

// RemoteStorage 通过 HTTP 对象存储 API 上传
type RemoteStorage struct {
	client  *http.Client
	baseURL string
	key     string
}

func NewRemoteStorage(baseURL, key string) *RemoteStorage {
	return &RemoteStorage{
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		key:     key,
	}
}

func (s *RemoteStorage) Put(ctx context.Context, bucket, name, contentType string, data []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/object/%s/%s", s.baseURL, bucket, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if s.key != "" {
		req.Header.Set("Authorization", "Bearer "+s.key)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: upload: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: storage status %d", ErrUpstream, resp.StatusCode)
	}

	return fmt.Sprintf("%s/object/public/%s/%s", s.baseURL, bucket, name), nil
}
