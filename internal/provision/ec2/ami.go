package ec2

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/someshbvrm/labsession/internal/log"
)

// canonicalOwnerID is the AWS account publishing official Ubuntu images.
const canonicalOwnerID = "099720109477"

var ErrNoAMI = fmt.Errorf("no matching machine image found")

// resolveAMI returns the configured AMI, or the most recent Ubuntu 22.04 LTS
// image in the region when none is pinned.
func (d *Driver) resolveAMI(ctx context.Context) (string, error) {
	if d.cfg.AMI != "" {
		return d.cfg.AMI, nil
	}

	result, err := d.client.DescribeImages(ctx, &ec2.DescribeImagesInput{
		Owners: []string{canonicalOwnerID},
		Filters: []types.Filter{
			{
				Name:   aws.String("name"),
				Values: []string{"ubuntu/images/hvm-ssd/ubuntu-jammy-22.04-amd64-server-*"},
			},
			{
				Name:   aws.String("virtualization-type"),
				Values: []string{"hvm"},
			},
			{
				Name:   aws.String("state"),
				Values: []string{"available"},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(result.Images) == 0 {
		return "", ErrNoAMI
	}

	images := result.Images
	sort.Slice(images, func(a, b int) bool {
		return aws.ToString(images[a].CreationDate) > aws.ToString(images[b].CreationDate)
	})

	ami := aws.ToString(images[0].ImageId)
	log.Info(ctx, "resolved AMI", "id", ami, "name", aws.ToString(images[0].Name))
	return ami, nil
}
