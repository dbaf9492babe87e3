package remediation

import (
	"os"
	"strings"
)

// replacementPair is one literal substitution: every occurrence of old
// becomes new.
type replacementPair struct {
	old string
	new string
}

// applyReplacements rewrites the file with the pairs applied in order. The
// write only happens when something actually changed, which keeps repeated
// runs byte-identical.
func applyReplacements(filePath string, pairs []replacementPair, applied string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}

	content := string(data)
	fixed := content
	for _, p := range pairs {
		fixed = strings.ReplaceAll(fixed, p.old, p.new)
	}

	if fixed == content {
		return noChanges, nil
	}
	if err := os.WriteFile(filePath, []byte(fixed), 0644); err != nil {
		return "", err
	}
	return applied, nil
}

// fixS3PublicBucket flips public canned ACLs to private, covering both the
// Terraform and CloudFormation spellings.
func fixS3PublicBucket(filePath string) (string, error) {
	return applyReplacements(filePath, []replacementPair{
		{`acl = "public-read"`, `acl = "private"`},
		{`acl = "public-read-write"`, `acl = "private"`},
		{`"PublicRead"`, `"Private"`},
		{`"PublicReadWrite"`, `"Private"`},
	}, "Removed public ACL from S3 bucket")
}

// fixSecurityGroupOpen narrows world-open CIDR blocks to RFC 1918 space.
func fixSecurityGroupOpen(filePath string) (string, error) {
	return applyReplacements(filePath, []replacementPair{
		{`cidr_blocks = ["0.0.0.0/0"]`, `cidr_blocks = ["10.0.0.0/8"]`},
		{`"0.0.0.0/0"`, `"10.0.0.0/8"`},
	}, "Restricted security group CIDR blocks")
}

// fixAzureStoragePublic disables anonymous blob access, covering both the
// Terraform and ARM template spellings.
func fixAzureStoragePublic(filePath string) (string, error) {
	return applyReplacements(filePath, []replacementPair{
		{`allow_blob_public_access = true`, `allow_blob_public_access = false`},
		{`"publicAccess": "blob"`, `"publicAccess": "none"`},
		{`"publicAccess": "container"`, `"publicAccess": "none"`},
	}, "Disabled public access on Azure storage")
}

// fixGCPComputePublicIP comments out access_config blocks. The scan is
// line-based: a line holding both "access_config" and an opening brace
// starts the block, and the first subsequent line with a closing brace ends
// it (no nested-brace awareness).
func fixGCPComputePublicIP(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	content := string(data)

	if !strings.Contains(content, "access_config") || !strings.Contains(content, "nat_ip") {
		return noChanges, nil
	}

	lines := strings.Split(content, "\n")
	fixed := make([]string, 0, len(lines))
	inBlock := false
	changed := false

	for _, line := range lines {
		commented := strings.HasPrefix(strings.TrimSpace(line), "#")
		switch {
		case !inBlock && !commented && strings.Contains(line, "access_config") && strings.Contains(line, "{"):
			inBlock = true
			changed = true
			fixed = append(fixed, "  # "+line+" # Removed public IP for security")
		case inBlock && strings.Contains(line, "}"):
			inBlock = false
			fixed = append(fixed, "  # "+line)
		case inBlock:
			fixed = append(fixed, "  # "+line)
		default:
			fixed = append(fixed, line)
		}
	}

	if !changed {
		return noChanges, nil
	}
	if err := os.WriteFile(filePath, []byte(strings.Join(fixed, "\n")), 0644); err != nil {
		return "", err
	}
	return "Removed public IP from GCP compute instance", nil
}
