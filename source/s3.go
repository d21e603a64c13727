package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures the S3 client. Unset fields fall back to the default
// AWS configuration chain.
type S3Options struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// S3Reader fetches objects addressed as s3://bucket/key
type S3Reader struct {
	opts S3Options
}

// NewS3Reader creates an S3Reader. The client is built per read so that
// credentials are resolved at query time.
func NewS3Reader(opts S3Options) *S3Reader {
	return &S3Reader{opts: opts}
}

// Read fetches the object and decompresses it by the key's extension
func (r *S3Reader) Read(ctx context.Context, url string) ([]byte, error) {
	bucket, key, err := parseS3URL(url)
	if err != nil {
		return nil, readError(url, err)
	}

	client, err := newS3Client(ctx, r.opts)
	if err != nil {
		return nil, readError(url, err)
	}

	resp, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, readError(url, fmt.Errorf("failed to get S3 object: %w", err))
	}
	defer resp.Body.Close()

	data, err := readAll(ctx, resp.Body, key)
	if err != nil {
		return nil, readError(url, err)
	}
	return data, nil
}

// parseS3URL parses s3://bucket/key into bucket and key parts
func parseS3URL(url string) (bucket, key string, err error) {
	if !strings.HasPrefix(strings.ToLower(url), "s3://") {
		return "", "", fmt.Errorf("invalid S3 URL: %s", url)
	}
	bucket, key, ok := strings.Cut(url[len("s3://"):], "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 URL: %s", url)
	}
	return bucket, key, nil
}

// newS3Client creates an S3 client with the given configuration
func newS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")
		loadOpts = append(loadOpts, config.WithCredentialsProvider(creds))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			// S3-compatible services
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsCfg, clientOpts...), nil
}
