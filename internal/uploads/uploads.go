package uploads

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PresignAPI is the subset of the S3 presign client used by Handler.
type PresignAPI interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// UploadAPI is the subset of the S3 client used for direct uploads.
type UploadAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds the Cloudflare R2 settings. R2 speaks the S3 API with an
// account-scoped endpoint and the literal region "auto".
type Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicURL       string
	PresignTTL      time.Duration
}

// Configured reports whether every required credential is present.
func (c Config) Configured() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" &&
		c.Bucket != "" && c.PublicURL != ""
}

// NewClient builds an S3 client pointed at the R2 endpoint.
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	}), nil
}

// Handler serves portfolio photo uploads: presigned PUT URLs for direct
// browser uploads and a multipart fallback proxied through the server.
type Handler struct {
	presigner PresignAPI
	client    UploadAPI
	bucket    string
	publicURL string
	ttl       time.Duration
	logger    *zap.Logger
}

func NewHandler(presigner PresignAPI, client UploadAPI, cfg Config, logger *zap.Logger) *Handler {
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Handler{
		presigner: presigner,
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		ttl:       ttl,
		logger:    logger,
	}
}

type presignRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

type presignResponse struct {
	Success      bool   `json:"success"`
	PresignedURL string `json:"presignedUrl"`
	PublicURL    string `json:"publicUrl"`
	FileName     string `json:"fileName"`
}

// Presign handles POST /api/presign: it returns a short-lived PUT URL so
// the browser uploads straight to the bucket.
func (h *Handler) Presign(w http.ResponseWriter, r *http.Request) {
	var req presignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.FileName == "" || req.ContentType == "" {
		http.Error(w, "fileName and contentType are required", http.StatusBadRequest)
		return
	}
	if !strings.HasPrefix(req.ContentType, "image/") {
		http.Error(w, "only images are allowed", http.StatusBadRequest)
		return
	}

	presigned, err := h.presigner.PresignPutObject(r.Context(), &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(req.FileName),
		ContentType: aws.String(req.ContentType),
	}, s3.WithPresignExpires(h.ttl))
	if err != nil {
		h.logger.Error("failed to presign upload", zap.Error(err), zap.String("file", req.FileName))
		http.Error(w, "failed to presign upload", http.StatusInternalServerError)
		return
	}

	writeJSON(w, presignResponse{
		Success:      true,
		PresignedURL: presigned.URL,
		PublicURL:    h.publicURL + "/" + req.FileName,
		FileName:     req.FileName,
	})
}

type uploadResponse struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	FileName string `json:"fileName"`
}

const maxUploadBytes = 32 << 20

// Upload handles POST /api/upload: a multipart form upload proxied through
// the server for clients that cannot use presigned URLs.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		http.Error(w, "only images are allowed", http.StatusBadRequest)
		return
	}

	key := objectKey(header.Filename)
	_, err = h.client.PutObject(r.Context(), &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		h.logger.Error("failed to upload object", zap.Error(err), zap.String("key", key))
		http.Error(w, "failed to upload file", http.StatusInternalServerError)
		return
	}

	h.logger.Info("uploaded photo", zap.String("key", key), zap.Int64("size", header.Size))

	writeJSON(w, uploadResponse{
		Success:  true,
		URL:      h.publicURL + "/" + key,
		FileName: key,
	})
}

func objectKey(filename string) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("photos/%d-%s.%s", time.Now().UnixMilli(), uuid.NewString(), ext)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
