package rules

import (
	"fmt"
	"strings"

	"github.com/iacshield/iacshield/internal/document"
	"github.com/iacshield/iacshield/internal/findings"
)

// NewAWS builds the AWS rule-set.
func NewAWS() *Set {
	return &Set{
		provider: "aws",
		rules: []Rule{
			{
				ID:            "aws_s3_public_bucket",
				Name:          "S3 Bucket Public Access",
				Category:      "storage",
				Severity:      findings.SeverityHigh,
				Description:   "S3 bucket allows public read or write access",
				FixSuggestion: "Set bucket ACL to private and use bucket policies for controlled access",
				References: []string{
					"https://docs.aws.amazon.com/AmazonS3/latest/userguide/access-control-block-public-access.html",
				},
				Evaluate: checkS3PublicBucket,
			},
			{
				ID:            "aws_security_group_open",
				Name:          "Security Group Open to World",
				Category:      "network",
				Severity:      findings.SeverityCritical,
				Description:   "Security group allows inbound traffic from 0.0.0.0/0",
				FixSuggestion: "Restrict CIDR blocks to specific IP ranges",
				References: []string{
					"https://docs.aws.amazon.com/vpc/latest/userguide/VPC_SecurityGroups.html",
				},
				Evaluate: checkSecurityGroupOpen,
			},
			{
				ID:            "aws_rds_public_access",
				Name:          "RDS Instance Public Access",
				Category:      "database",
				Severity:      findings.SeverityHigh,
				Description:   "RDS instance is publicly accessible",
				FixSuggestion: "Set publicly_accessible to false",
				References: []string{
					"https://docs.aws.amazon.com/AmazonRDS/latest/UserGuide/Overview.RDSSecurityGroups.html",
				},
				Evaluate: checkRDSPublicAccess,
			},
			{
				ID:            "aws_iam_wildcard_policy",
				Name:          "IAM Policy with Wildcard Actions",
				Category:      "identity",
				Severity:      findings.SeverityMedium,
				Description:   "IAM policy contains wildcard (*) actions",
				FixSuggestion: "Use specific actions instead of wildcards",
				References: []string{
					"https://docs.aws.amazon.com/IAM/latest/UserGuide/best-practices.html",
				},
				Evaluate: checkIAMWildcardPolicy,
			},
		},
	}
}

func checkS3PublicBucket(doc document.Document) []Violation {
	var violations []Violation

	eachResource(doc, []string{"aws_s3_bucket"}, func(resourceType, name string, cfg map[string]any) {
		if isS3BucketPublic(cfg) {
			violations = append(violations, Violation{
				Message:  fmt.Sprintf("S3 bucket %s allows public access", name),
				Resource: address(resourceType, name),
				Line:     document.Line(cfg),
			})
		}
	})

	eachResource(doc, []string{"aws_s3_bucket_acl"}, func(resourceType, name string, cfg map[string]any) {
		acl := document.GetString(cfg, "acl", "")
		if acl == "public-read" || acl == "public-read-write" {
			violations = append(violations, Violation{
				Message:  fmt.Sprintf("S3 bucket ACL %s is public", name),
				Resource: address(resourceType, name),
				Line:     document.Line(cfg),
			})
		}
	})

	return violations
}

// isS3BucketPublic covers the two ways a bucket config opens itself up: a
// public canned ACL, or an explicitly present public_access_block with at
// least one guard flag disabled. The four flags default to true when absent,
// so an empty block stays compliant.
func isS3BucketPublic(cfg map[string]any) bool {
	acl := document.GetString(cfg, "acl", "")
	if acl == "public-read" || acl == "public-read-write" {
		return true
	}

	block, ok := cfg["public_access_block"].(map[string]any)
	if !ok {
		return false
	}

	guards := []string{
		"block_public_acls",
		"block_public_policy",
		"ignore_public_acls",
		"restrict_public_buckets",
	}
	for _, guard := range guards {
		if !document.GetBool(block, guard, true) {
			return true
		}
	}
	return false
}

func checkSecurityGroupOpen(doc document.Document) []Violation {
	var violations []Violation

	eachResource(doc, []string{"aws_security_group"}, func(resourceType, name string, cfg map[string]any) {
		for _, v := range document.GetSeq(cfg, "ingress") {
			rule, ok := v.(map[string]any)
			if !ok {
				continue
			}
			if document.ContainsString(document.GetSeq(rule, "cidr_blocks"), "0.0.0.0/0") {
				violations = append(violations, Violation{
					Message:  fmt.Sprintf("Security group %s allows inbound traffic from anywhere", name),
					Resource: address(resourceType, name),
					Line:     document.Line(cfg),
				})
			}
		}
	})

	return violations
}

func checkRDSPublicAccess(doc document.Document) []Violation {
	var violations []Violation

	eachResource(doc, []string{"aws_db_instance"}, func(resourceType, name string, cfg map[string]any) {
		if document.GetBool(cfg, "publicly_accessible", false) {
			violations = append(violations, Violation{
				Message:  fmt.Sprintf("RDS instance %s is publicly accessible", name),
				Resource: address(resourceType, name),
				Line:     document.Line(cfg),
			})
		}
	})

	return violations
}

// checkIAMWildcardPolicy flags any policy body containing a quoted wildcard.
// The test is deliberately coarse (not JSON-structure-aware): a wildcard
// resource ARN trips it just like a wildcard action.
func checkIAMWildcardPolicy(doc document.Document) []Violation {
	var violations []Violation

	eachResource(doc, []string{"aws_iam_policy", "aws_iam_role_policy"}, func(resourceType, name string, cfg map[string]any) {
		policy, ok := cfg["policy"].(string)
		if ok && strings.Contains(policy, `"*"`) {
			violations = append(violations, Violation{
				Message:  fmt.Sprintf("IAM policy %s contains wildcard actions", name),
				Resource: address(resourceType, name),
				Line:     document.Line(cfg),
			})
		}
	})

	return violations
}
