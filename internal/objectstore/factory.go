package objectstore

import (
	"context"
	"fmt"
	"net/url"

	"cloud.google.com/go/storage"
	"github.com/Azure/azure-storage-blob-go/azblob"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
)

// PluginConfig names one storage plugin's backend type and the properties
// it needs to construct a client, matching config.StoragePlugin's shape
// (kept as a separate type so this package doesn't import internal/config).
type PluginConfig struct {
	Type       string
	Properties map[string]string
}

// NewStore builds the Store backend cfg names, the way warren's
// VolumeManager dispatches a volume's Driver field to the matching
// VolumeDriver constructor — here dispatching a storage plugin's Type to
// the matching backend constructor instead.
func NewStore(ctx context.Context, cfg PluginConfig) (Store, error) {
	prefix := cfg.Properties["prefix"]
	switch cfg.Type {
	case "LOCAL":
		root := cfg.Properties["rootPath"]
		if root == "" {
			return nil, fmt.Errorf("objectstore: LOCAL plugin requires a rootPath property")
		}
		return NewLocalStore(root)

	case "S3":
		bucket := cfg.Properties["bucket"]
		if bucket == "" {
			return nil, fmt.Errorf("objectstore: S3 plugin requires a bucket property")
		}
		sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.Properties["region"])})
		if err != nil {
			return nil, fmt.Errorf("objectstore: building S3 session: %w", err)
		}
		return NewS3Store(sess, bucket, prefix), nil

	case "GCS":
		bucket := cfg.Properties["bucket"]
		if bucket == "" {
			return nil, fmt.Errorf("objectstore: GCS plugin requires a bucket property")
		}
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("objectstore: building GCS client: %w", err)
		}
		return NewGCSStore(client, bucket, prefix), nil

	case "AZURE":
		account := cfg.Properties["accountName"]
		key := cfg.Properties["accountKey"]
		container := cfg.Properties["container"]
		if account == "" || key == "" || container == "" {
			return nil, fmt.Errorf("objectstore: AZURE plugin requires accountName, accountKey and container properties")
		}
		cred, err := azblob.NewSharedKeyCredential(account, key)
		if err != nil {
			return nil, fmt.Errorf("objectstore: building Azure credential: %w", err)
		}
		pipeline := azblob.NewPipeline(cred, azblob.PipelineOptions{})
		u, err := url.Parse(fmt.Sprintf("https://%s.blob.core.windows.net/%s", account, container))
		if err != nil {
			return nil, fmt.Errorf("objectstore: building Azure container URL: %w", err)
		}
		return NewAzureBlobStore(azblob.NewContainerURL(*u, pipeline), prefix), nil

	default:
		return nil, fmt.Errorf("objectstore: unknown storage plugin type %q", cfg.Type)
	}
}
