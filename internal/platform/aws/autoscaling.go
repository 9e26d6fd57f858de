package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling/types"
	"go.uber.org/zap"

	"github.com/mkotas/ekscaler/internal/addons"
)

// ApplyTags upserts the discovery tags on their autoscaling groups in one
// batch. CreateOrUpdateTags is an idempotent upsert, so re-applying the
// same commands is safe.
func (c *Client) ApplyTags(ctx context.Context, commands []addons.TagCommand) error {
	if len(commands) == 0 {
		return nil
	}

	tags := make([]types.Tag, 0, len(commands))
	for _, cmd := range commands {
		tags = append(tags, types.Tag{
			ResourceId:        aws.String(cmd.Group),
			ResourceType:      aws.String("auto-scaling-group"),
			Key:               aws.String(cmd.Key),
			Value:             aws.String(cmd.Value),
			PropagateAtLaunch: aws.Bool(cmd.PropagateAtLaunch),
		})
	}

	_, err := c.asg.CreateOrUpdateTags(ctx, &autoscaling.CreateOrUpdateTagsInput{Tags: tags})
	if err != nil {
		return fmt.Errorf("failed to apply autoscaling group tags: %w", err)
	}

	c.logger.Info("applied discovery tags", zap.Int("count", len(tags)))
	return nil
}
