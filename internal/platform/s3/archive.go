package s3

import (
	"context"
	"fmt"
	"path"

	"github.com/mkotas/ekscaler/internal/addons"
)

// ArchivePlan uploads a deploy plan's policy document and rendered
// manifests under <prefix>/<cluster>/<timestamp>/. The bucket is
// created on first use. Returns the object keys that were written.
func (c *Client) ArchivePlan(ctx context.Context, bucket, prefix, cluster string, plan *addons.Plan) ([]string, error) {
	exists, err := c.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := c.CreateBucket(ctx, bucket); err != nil {
			return nil, err
		}
	}

	policyJSON, err := plan.Policy.JSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode policy document: %w", err)
	}

	manifestsYAML, err := addons.RenderManifests(plan.Manifests)
	if err != nil {
		return nil, fmt.Errorf("failed to render manifests: %w", err)
	}

	base := path.Join(prefix, cluster, c.now().UTC().Format("20060102-150405"))
	objects := []struct {
		key  string
		data []byte
	}{
		{path.Join(base, "policy.json"), policyJSON},
		{path.Join(base, "manifests.yaml"), manifestsYAML},
	}

	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		if err := c.PutObject(ctx, bucket, obj.key, obj.data); err != nil {
			return nil, err
		}
		keys = append(keys, obj.key)
	}

	return keys, nil
}
