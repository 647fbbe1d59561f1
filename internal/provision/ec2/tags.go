package ec2

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// managedByValue marks resources this tool created, so an out-of-band
// teardown can find them by tag.
const managedByKey, managedByValue = "ManagedBy", "labsession"

func managedTags(name string) []types.Tag {
	return []types.Tag{
		{Key: aws.String("Name"), Value: aws.String(name)},
		{Key: aws.String(managedByKey), Value: aws.String(managedByValue)},
	}
}

func tagSpec(rt types.ResourceType, tags []types.Tag) []types.TagSpecification {
	return []types.TagSpecification{{
		ResourceType: rt,
		Tags:         tags,
	}}
}
