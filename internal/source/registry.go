package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
)

// DescribeTypeAPI is the part of the CloudFormation client the registry
// source uses.
type DescribeTypeAPI interface {
	DescribeType(ctx context.Context, params *cloudformation.DescribeTypeInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeTypeOutput, error)
}

// RegistrySource fetches resource schemas from the CloudFormation registry.
type RegistrySource struct {
	Client DescribeTypeAPI
	Types  []string
}

// NewRegistryClient creates a CloudFormation client from the default AWS
// configuration. An empty region keeps the profile's region.
func NewRegistryClient(ctx context.Context, region string) (*cloudformation.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return cloudformation.NewFromConfig(cfg), nil
}

// Schemas describes each configured type, in order.
func (s *RegistrySource) Schemas(ctx context.Context) ([]Schema, error) {
	out := make([]Schema, 0, len(s.Types))
	for _, typeName := range s.Types {
		resp, err := s.Client.DescribeType(ctx, &cloudformation.DescribeTypeInput{
			Type:     types.RegistryTypeResource,
			TypeName: aws.String(typeName),
		})
		if err != nil {
			return nil, describeError(typeName, err)
		}
		body := aws.ToString(resp.Schema)
		if body == "" {
			return nil, fmt.Errorf("describe %s: registry returned no schema", typeName)
		}
		out = append(out, Schema{
			TypeName: typeName,
			Origin:   "registry:" + typeName,
			Data:     []byte(body),
		})
	}
	return out, nil
}

func describeError(typeName string, err error) error {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		if ae.ErrorCode() == "TypeNotFoundException" {
			return fmt.Errorf("describe %s: type is not registered in this region: %w", typeName, err)
		}
		return fmt.Errorf("describe %s: %s: %s: %w", typeName, ae.ErrorCode(), ae.ErrorMessage(), err)
	}
	return fmt.Errorf("describe %s: %w", typeName, err)
}
