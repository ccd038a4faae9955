// Package storage describes where SafeStream keeps a video and its watermarked proxies
// when the default SafeStream storage is not wanted.
package storage

import (
	"fmt"
	"maps"

	"github.com/minio/minio-go/v7/pkg/s3utils"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

type Type string

const (
	TypeAWSS3 Type = "AWS_S3"
)

const (
	PropertyBucket    = "bucket"
	PropertyRegion    = "region"
	PropertyAccessKey = "accessKey"
	PropertySecretKey = "secretKey"
)

// Configuration selects a storage adapter and carries its connection properties.
type Configuration struct {
	Type       Type           `json:"type" yaml:"type"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// VideoConfiguration overrides the storage of a single video.
type VideoConfiguration struct {
	StorageConfiguration *Configuration `json:"storageConfiguration,omitempty" yaml:"storageConfiguration,omitempty"`
}

// NewS3 returns a configuration storing videos in the given S3 bucket.
func NewS3(bucket, region, accessKey, secretKey string) Configuration {
	return Configuration{
		Type: TypeAWSS3,
		Properties: map[string]any{
			PropertyBucket:    bucket,
			PropertyRegion:    region,
			PropertyAccessKey: accessKey,
			PropertySecretKey: secretKey,
		},
	}
}

// NewVideoConfiguration wraps c so it can be attached to a video.
func NewVideoConfiguration(c Configuration) *VideoConfiguration {
	return &VideoConfiguration{StorageConfiguration: &c}
}

// WithProperty returns a copy of c with the property k set to v.
func (c Configuration) WithProperty(k string, v any) Configuration {
	properties := make(map[string]any, len(c.Properties)+1)
	maps.Copy(properties, c.Properties)
	properties[k] = v
	c.Properties = properties
	return c
}

func (c Configuration) Property(k string) string {
	v, ok := c.Properties[k]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (c Configuration) Validate() error {
	switch c.Type {
	case TypeAWSS3:
		return c.validateS3()
	case "":
		return fmt.Errorf("storage type is required")
	default:
		return fmt.Errorf("unsupported storage type %q", c.Type)
	}
}

func (c Configuration) validateS3() error {
	var errs []error
	if err := s3utils.CheckValidBucketNameStrict(c.Property(PropertyBucket)); err != nil {
		errs = append(errs, fmt.Errorf("invalid s3 %s: %w", PropertyBucket, err))
	}
	for _, required := range []string{PropertyRegion, PropertyAccessKey, PropertySecretKey} {
		if c.Property(required) == "" {
			errs = append(errs, fmt.Errorf("s3 %s is required", required))
		}
	}
	return utilerrors.NewAggregate(errs)
}

// Validate checks the attached storage configuration, if any.
func (v *VideoConfiguration) Validate() error {
	if v == nil || v.StorageConfiguration == nil {
		return nil
	}
	return v.StorageConfiguration.Validate()
}
