package rules

import (
	"fmt"
	"strings"

	"github.com/iacshield/iacshield/internal/document"
	"github.com/iacshield/iacshield/internal/findings"
)

// NewAzure builds the Azure rule-set.
func NewAzure() *Set {
	return &Set{
		provider: "azure",
		rules: []Rule{
			{
				ID:            "azure_storage_public",
				Name:          "Azure Storage Public Access",
				Category:      "storage",
				Severity:      findings.SeverityHigh,
				Description:   "Storage account allows public blob access",
				FixSuggestion: "Set allow_blob_public_access to false",
				References: []string{
					"https://docs.microsoft.com/en-us/azure/storage/blobs/anonymous-read-access-prevent",
				},
				Evaluate: checkAzureStoragePublic,
			},
			{
				ID:            "azure_nsg_open",
				Name:          "Network Security Group Open Rules",
				Category:      "network",
				Severity:      findings.SeverityCritical,
				Description:   "NSG rule allows inbound traffic from any source",
				FixSuggestion: "Restrict source address prefixes to specific ranges",
				References: []string{
					"https://docs.microsoft.com/en-us/azure/virtual-network/network-security-groups-overview",
				},
				Evaluate: checkAzureNSGOpen,
			},
			{
				ID:            "azure_sql_public",
				Name:          "Azure SQL Public Access",
				Category:      "database",
				Severity:      findings.SeverityHigh,
				Description:   "Azure SQL server allows connections from any Azure service",
				FixSuggestion: "Configure specific firewall rules instead of allowing all Azure services",
				References: []string{
					"https://docs.microsoft.com/en-us/azure/azure-sql/database/firewall-configure",
				},
				Evaluate: checkAzureSQLPublic,
			},
			{
				ID:            "azure_vm_no_encryption",
				Name:          "Virtual Machine Disk Encryption",
				Category:      "compute",
				Severity:      findings.SeverityMedium,
				Description:   "Virtual machine does not have disk encryption enabled",
				FixSuggestion: "Enable Azure Disk Encryption for VM disks",
				References: []string{
					"https://docs.microsoft.com/en-us/azure/virtual-machines/disk-encryption-overview",
				},
				Evaluate: checkAzureVMDiskEncryption,
			},
		},
	}
}

// checkAzureStoragePublic flags storage accounts whose blob endpoint permits
// anonymous access. Note the inverted default: absence of the setting is
// treated as public, unlike most other rules.
func checkAzureStoragePublic(doc document.Document) []Violation {
	var violations []Violation

	eachResource(doc, []string{"azurerm_storage_account"}, func(resourceType, name string, cfg map[string]any) {
		if document.GetBool(cfg, "allow_blob_public_access", true) {
			violations = append(violations, Violation{
				Message:  fmt.Sprintf("Storage account %s allows public blob access", name),
				Resource: address(resourceType, name),
				Line:     document.Line(cfg),
			})
		}
	})

	// ARM templates keep their native array shape.
	for _, v := range document.GetSeq(doc, "resources") {
		res, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if document.GetString(res, "type", "") != "Microsoft.Storage/storageAccounts" {
			continue
		}
		properties := document.GetMap(res, "properties")
		if document.GetBool(properties, "allowBlobPublicAccess", true) {
			name := document.GetString(res, "name", "unknown")
			violations = append(violations, Violation{
				Message:  fmt.Sprintf("Storage account %s allows public blob access", name),
				Resource: name,
				Line:     1,
			})
		}
	}

	return violations
}

func checkAzureNSGOpen(doc document.Document) []Violation {
	var violations []Violation

	openPrefixes := map[string]bool{"*": true, "0.0.0.0/0": true, "Internet": true}

	eachResource(doc, []string{"azurerm_network_security_rule"}, func(resourceType, name string, cfg map[string]any) {
		prefix := document.GetString(cfg, "source_address_prefix", "")
		access := document.GetString(cfg, "access", "")
		if openPrefixes[prefix] && strings.EqualFold(access, "allow") {
			violations = append(violations, Violation{
				Message:  fmt.Sprintf("NSG rule %s allows traffic from any source", name),
				Resource: address(resourceType, name),
				Line:     document.Line(cfg),
			})
		}
	})

	return violations
}

// checkAzureSQLPublic flags firewall rules spanning 0.0.0.0-0.0.0.0 (the
// "allow all Azure services" marker) or 0.0.0.0-255.255.255.255.
func checkAzureSQLPublic(doc document.Document) []Violation {
	var violations []Violation

	eachResource(doc, []string{"azurerm_sql_firewall_rule"}, func(resourceType, name string, cfg map[string]any) {
		startIP := document.GetString(cfg, "start_ip_address", "")
		endIP := document.GetString(cfg, "end_ip_address", "")

		if startIP == "0.0.0.0" && (endIP == "0.0.0.0" || endIP == "255.255.255.255") {
			violations = append(violations, Violation{
				Message:  fmt.Sprintf("SQL firewall rule %s is too permissive", name),
				Resource: address(resourceType, name),
				Line:     document.Line(cfg),
			})
		}
	})

	return violations
}

func checkAzureVMDiskEncryption(doc document.Document) []Violation {
	var violations []Violation

	vmTypes := []string{"azurerm_linux_virtual_machine", "azurerm_windows_virtual_machine"}
	eachResource(doc, vmTypes, func(resourceType, name string, cfg map[string]any) {
		osDisk := document.GetMap(cfg, "os_disk")
		encryption := document.GetMap(osDisk, "encryption_settings")

		if len(encryption) == 0 || !document.GetBool(encryption, "enabled", false) {
			violations = append(violations, Violation{
				Message:  fmt.Sprintf("VM %s does not have disk encryption enabled", name),
				Resource: address(resourceType, name),
				Line:     document.Line(cfg),
			})
		}
	})

	return violations
}
