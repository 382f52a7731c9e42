// Package publish uploads synthesized templates to an S3 staging bucket so
// they can be referenced by TemplateURL.
package publish

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	wetwire "github.com/lex00/wetwire-workspace-go"
	"github.com/lex00/wetwire-workspace-go/internal/config"
	"github.com/lex00/wetwire-workspace-go/internal/logging"
	"github.com/lex00/wetwire-workspace-go/internal/template"
)

// DefaultRegion is used when neither the configuration nor the SDK chain
// names a region.
const DefaultRegion = "us-east-1"

// Classified publish failures.
var (
	ErrAccessDenied = errors.New("access denied")
	ErrBucketTaken  = errors.New("bucket name is owned by another account")
	ErrNoBucket     = errors.New("bucket does not exist")
)

// S3Client is the subset of the S3 API that Publisher uses.
type S3Client interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// STSClient resolves the caller account for the default bucket name.
type STSClient interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Publisher uploads templates.
type Publisher struct {
	S3       S3Client
	STS      STSClient
	Region   string
	Endpoint string
	Log      zerolog.Logger
}

// Result describes an uploaded template.
type Result struct {
	Bucket  string `json:"bucket"`
	Key     string `json:"key"`
	URL     string `json:"url"`
	SHA256  string `json:"sha256"`
	Created bool   `json:"created,omitempty"`
}

// New builds a Publisher from the SDK default chain. A configured endpoint
// switches S3 to path-style addressing, for S3-compatible stores; such
// stores get placeholder credentials unless AWS_ACCESS_KEY_ID is set.
func New(ctx context.Context, cfg config.PublishConfig, logger zerolog.Logger) (*Publisher, error) {
	sdkLogger := &logging.SDKLogger{Log: &logger}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithLogger(sdkLogger),
		awsconfig.WithClientLogMode(aws.LogRetries),
	}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Endpoint != "" && os.Getenv("AWS_ACCESS_KEY_ID") == "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("test", "test", "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	if awsCfg.Region == "" {
		awsCfg.Region = DefaultRegion
	}

	s3c := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	stsc := sts.NewFromConfig(awsCfg, func(o *sts.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Publisher{
		S3:       s3c,
		STS:      stsc,
		Region:   awsCfg.Region,
		Endpoint: cfg.Endpoint,
		Log:      logger,
	}, nil
}

// DefaultBucket names the per-account, per-region staging bucket.
func DefaultBucket(account, region string) string {
	return fmt.Sprintf("wetwire-workspace-%s-%s", account, region)
}

// Key returns the content-addressed object key for a template body.
func Key(prefix, stackName string, body []byte) (key, digest string) {
	sum := sha256.Sum256(body)
	digest = hex.EncodeToString(sum[:])
	return path.Join(prefix, stackName, digest+".json"), digest
}

// URL returns the address of an object, as CloudFormation expects in TemplateURL.
func (p *Publisher) URL(bucket, key string) string {
	if p.Endpoint != "" {
		return strings.TrimSuffix(p.Endpoint, "/") + "/" + bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, p.Region, key)
}

// Publish uploads t under cfg.Prefix. An empty cfg.Bucket resolves to
// DefaultBucket for the caller's account, which is created when missing.
func (p *Publisher) Publish(ctx context.Context, stackName string, t *wetwire.Template, cfg config.PublishConfig) (*Result, error) {
	body, err := template.ToJSON(t)
	if err != nil {
		return nil, fmt.Errorf("serializing template: %w", err)
	}

	bucket := cfg.Bucket
	if bucket == "" {
		if bucket, err = p.defaultBucket(ctx); err != nil {
			return nil, err
		}
	}

	created, err := p.ensureBucket(ctx, bucket)
	if err != nil {
		return nil, err
	}

	key, digest := Key(cfg.Prefix, stackName, body)
	_, err = p.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("uploading s3://%s/%s: %w", bucket, key, Classify(err))
	}

	p.Log.Info().Str("bucket", bucket).Str("key", key).Msg("published template")
	return &Result{
		Bucket:  bucket,
		Key:     key,
		URL:     p.URL(bucket, key),
		SHA256:  digest,
		Created: created,
	}, nil
}

func (p *Publisher) defaultBucket(ctx context.Context) (string, error) {
	caller, err := p.STS.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("resolving caller account: %w", Classify(err))
	}
	return DefaultBucket(aws.ToString(caller.Account), p.Region), nil
}

// ensureBucket creates bucket when it does not exist yet.
func (p *Publisher) ensureBucket(ctx context.Context, bucket string) (bool, error) {
	_, err := p.S3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return false, nil
	}
	if err := Classify(err); !errors.Is(err, ErrNoBucket) {
		return false, fmt.Errorf("checking bucket %s: %w", bucket, err)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	// us-east-1 rejects an explicit location constraint.
	if p.Region != DefaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(p.Region),
		}
	}

	p.Log.Info().Str("bucket", bucket).Str("region", p.Region).Msg("creating staging bucket")
	_, err = p.S3.CreateBucket(ctx, input)
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "BucketAlreadyOwnedByYou" {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("creating bucket %s: %w", bucket, Classify(err))
	}
	return true, nil
}

// Classify maps S3 and STS API error codes onto the package's sentinel
// errors. Unknown errors are returned unchanged.
func Classify(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.ErrorCode() {
	case "NotFound", "NoSuchBucket":
		return fmt.Errorf("%w: %s", ErrNoBucket, apiErr.ErrorMessage())
	case "AccessDenied", "Forbidden", "AccessDeniedException", "InvalidClientTokenId", "ExpiredToken":
		return fmt.Errorf("%w: %s", ErrAccessDenied, apiErr.ErrorCode())
	case "BucketAlreadyExists":
		return ErrBucketTaken
	default:
		return err
	}
}
