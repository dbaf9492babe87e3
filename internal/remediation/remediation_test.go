package remediation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iacshield/iacshield/internal/findings"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCanAutoFix(t *testing.T) {
	e := NewEngine(nil, "")

	fixable := []string{
		"aws_s3_public_bucket",
		"aws_security_group_open",
		"azure_storage_public",
		"gcp_compute_public_ip",
	}
	for _, id := range fixable {
		assert.True(t, e.CanAutoFix(findings.Finding{RuleID: id}), id)
	}

	assert.False(t, e.CanAutoFix(findings.Finding{RuleID: "aws_rds_public_access"}))
	assert.False(t, e.CanAutoFix(findings.Finding{RuleID: ""}))
}

func TestApplyFixUnknownRule(t *testing.T) {
	e := NewEngine(nil, "")
	res := e.ApplyFix(findings.Finding{RuleID: "aws_rds_public_access", File: "x.tf"}, false)

	assert.False(t, res.Success)
	assert.Equal(t, "no auto-fix available for rule: aws_rds_public_access", res.Error)
}

func TestApplyFixS3PublicBucket(t *testing.T) {
	path := writeTempFile(t, "bucket.tf", `resource "aws_s3_bucket" "b" {
  acl = "public-read"
}
`)

	e := NewEngine(nil, "")
	res := e.ApplyFix(findings.Finding{RuleID: "aws_s3_public_bucket", File: path}, false)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Removed public ACL from S3 bucket", res.FixApplied)
	assert.Empty(t, res.BackupPath)
	assert.False(t, res.Timestamp.IsZero())
	assert.Contains(t, readFile(t, path), `acl = "private"`)
}

func TestApplyFixIsIdempotent(t *testing.T) {
	content := `resource "aws_s3_bucket" "b" {
  acl = "private"
}
`
	path := writeTempFile(t, "bucket.tf", content)

	e := NewEngine(nil, "")
	res := e.ApplyFix(findings.Finding{RuleID: "aws_s3_public_bucket", File: path}, false)

	require.True(t, res.Success)
	assert.Equal(t, "No changes needed", res.FixApplied)
	assert.Equal(t, content, readFile(t, path), "an already-fixed file must stay byte-identical")
}

func TestApplyFixSecurityGroupWithBackup(t *testing.T) {
	content := `resource "aws_security_group" "open" {
  ingress {
    cidr_blocks = ["0.0.0.0/0"]
  }
}
`
	path := writeTempFile(t, "sg.tf", content)

	e := NewEngine(nil, ".backup")
	res := e.ApplyFix(findings.Finding{RuleID: "aws_security_group_open", File: path}, true)

	require.True(t, res.Success, res.Error)
	require.NotEmpty(t, res.BackupPath)

	// Backup preserves the original bytes; the backup name keeps the
	// extension so editors still recognize the file type.
	assert.Equal(t, content, readFile(t, res.BackupPath))
	assert.Contains(t, filepath.Base(res.BackupPath), "sg.backup_")
	assert.Equal(t, ".tf", filepath.Ext(res.BackupPath))

	fixed := readFile(t, path)
	assert.Contains(t, fixed, `cidr_blocks = ["10.0.0.0/8"]`)
	assert.NotContains(t, fixed, "0.0.0.0/0")
}

func TestApplyFixFailureAfterBackupKeepsBackup(t *testing.T) {
	content := `resource "aws_security_group" "open" {
  ingress {
    cidr_blocks = ["0.0.0.0/0"]
  }
}
`
	path := writeTempFile(t, "sg.tf", content)

	e := NewEngine(nil, "")
	e.fixes["aws_security_group_open"] = func(string) (string, error) {
		return "", errors.New("fix exploded")
	}

	res := e.ApplyFix(findings.Finding{RuleID: "aws_security_group_open", File: path}, true)

	assert.False(t, res.Success)
	assert.Equal(t, "fix exploded", res.Error)
	assert.Empty(t, res.FixApplied)

	// The backup was taken before the fix ran, so it must survive the
	// failure and hold the pre-fix bytes.
	require.NotEmpty(t, res.BackupPath)
	assert.Equal(t, content, readFile(t, res.BackupPath))
	assert.Equal(t, content, readFile(t, path))
}

func TestApplyFixBackupFailureLeavesNoResultApplied(t *testing.T) {
	e := NewEngine(nil, "")
	missing := filepath.Join(t.TempDir(), "gone.tf")
	res := e.ApplyFix(findings.Finding{RuleID: "aws_security_group_open", File: missing}, true)

	assert.False(t, res.Success)
	assert.True(t, strings.HasPrefix(res.Error, "backup failed:"), res.Error)
	assert.Empty(t, res.FixApplied)
}

func TestApplyFixAzureStorage(t *testing.T) {
	path := writeTempFile(t, "storage.tf", `resource "azurerm_storage_account" "sa" {
  allow_blob_public_access = true
}
`)

	e := NewEngine(nil, "")
	res := e.ApplyFix(findings.Finding{RuleID: "azure_storage_public", File: path}, false)

	require.True(t, res.Success, res.Error)
	assert.Contains(t, readFile(t, path), "allow_blob_public_access = false")
}

func TestApplyFixAzureStorageARMSpelling(t *testing.T) {
	path := writeTempFile(t, "storage.json", `{"properties": {"publicAccess": "blob"}}`)

	e := NewEngine(nil, "")
	res := e.ApplyFix(findings.Finding{RuleID: "azure_storage_public", File: path}, false)

	require.True(t, res.Success, res.Error)
	assert.Contains(t, readFile(t, path), `"publicAccess": "none"`)
}

func TestApplyFixGCPComputeCommentsOutBlock(t *testing.T) {
	path := writeTempFile(t, "vm.tf", `resource "google_compute_instance" "vm" {
  network_interface {
    network = "default"
    access_config {
      nat_ip = "1.2.3.4"
    }
  }
}
`)

	e := NewEngine(nil, "")
	res := e.ApplyFix(findings.Finding{RuleID: "gcp_compute_public_ip", File: path}, false)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Removed public IP from GCP compute instance", res.FixApplied)

	fixed := readFile(t, path)
	assert.Contains(t, fixed, "# Removed public IP for security")
	assert.Contains(t, fixed, `network = "default"`)
	for _, line := range strings.Split(fixed, "\n") {
		if strings.Contains(line, "nat_ip") {
			assert.True(t, strings.HasPrefix(strings.TrimSpace(line), "#"), "nat_ip line must be commented: %q", line)
		}
	}

	// Re-running sees the already-commented block and changes nothing.
	res = e.ApplyFix(findings.Finding{RuleID: "gcp_compute_public_ip", File: path}, false)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "No changes needed", res.FixApplied)
	assert.Equal(t, fixed, readFile(t, path))
}

func TestApplyFixGCPComputeWithoutNatIPUntouched(t *testing.T) {
	content := `resource "google_compute_instance" "vm" {
  network_interface {
    access_config {
    }
  }
}
`
	path := writeTempFile(t, "vm.tf", content)

	e := NewEngine(nil, "")
	res := e.ApplyFix(findings.Finding{RuleID: "gcp_compute_public_ip", File: path}, false)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "No changes needed", res.FixApplied)
	assert.Equal(t, content, readFile(t, path))
}

func TestBackupSuffixDefault(t *testing.T) {
	path := writeTempFile(t, "main.tf", `acl = "public-read"`)

	e := NewEngine(nil, "")
	res := e.ApplyFix(findings.Finding{RuleID: "aws_s3_public_bucket", File: path}, true)

	require.True(t, res.Success, res.Error)
	assert.Contains(t, filepath.Base(res.BackupPath), "main.backup_")
}
