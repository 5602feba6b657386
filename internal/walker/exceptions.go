package walker

// LegacyAttributes lists, per resource type, writable properties that are
// also returned by Fn::GetAtt under the same name. readOnlyProperties cannot
// express these, so they are marked as attributes after classification
// without becoming read-only.
var LegacyAttributes = map[string][]string{
	"AWS::EC2::SecurityGroup":      {"VpcId"},
	"AWS::EC2::Subnet":             {"AvailabilityZone", "CidrBlock", "VpcId"},
	"AWS::EC2::VPC":                {"CidrBlock"},
	"AWS::ECS::Cluster":            {"ClusterName"},
	"AWS::Kinesis::Stream":         {"Name"},
	"AWS::Route53::HostedZone":     {"Name"},
	"AWS::SNS::Topic":              {"TopicName"},
	"AWS::SQS::Queue":              {"QueueName"},
	"AWS::StepFunctions::Activity": {"Name"},
}
