package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/postlinehq/postline/configs"
)

// MediaResolver turns the media references stored on a post into URLs the
// platform APIs can fetch. Bare R2 object keys are presigned; absolute
// http(s) URLs pass through untouched.
type MediaResolver interface {
	ResolveURLs(ctx context.Context, mediaURLs []string) ([]string, error)
}

const presignExpiry = 1 * time.Hour

type r2MediaResolver struct {
	config cfg.Config
}

func NewR2MediaResolver(config cfg.Config) MediaResolver {
	return &r2MediaResolver{config: config}
}

func (r *r2MediaResolver) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.config.R2.AccessKey, r.config.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.R2.AccountID))
	})
	return s3.NewPresignClient(client), nil
}

func (r *r2MediaResolver) ResolveURLs(ctx context.Context, mediaURLs []string) ([]string, error) {
	if len(mediaURLs) == 0 {
		return nil, nil
	}

	var presigner *s3.PresignClient
	resolved := make([]string, 0, len(mediaURLs))
	for _, m := range mediaURLs {
		if strings.HasPrefix(m, "http://") || strings.HasPrefix(m, "https://") {
			resolved = append(resolved, m)
			continue
		}

		if presigner == nil {
			p, err := r.presignClient(ctx)
			if err != nil {
				return nil, err
			}
			presigner = p
		}

		req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(r.config.R2.BucketName),
			Key:    aws.String(m),
		}, s3.WithPresignExpires(presignExpiry))
		if err != nil {
			slog.Info(err.Error())
			return nil, fmt.Errorf("presigning media key %s: %w", m, err)
		}
		resolved = append(resolved, req.URL)
	}
	return resolved, nil
}
