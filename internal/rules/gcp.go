package rules

import (
	"fmt"

	"github.com/iacshield/iacshield/internal/document"
	"github.com/iacshield/iacshield/internal/findings"
)

// NewGCP builds the GCP rule-set.
func NewGCP() *Set {
	return &Set{
		provider: "gcp",
		rules: []Rule{
			{
				ID:            "gcp_compute_public_ip",
				Name:          "Compute Instance Public IP",
				Category:      "compute",
				Severity:      findings.SeverityMedium,
				Description:   "Compute instance has a public IP address",
				FixSuggestion: "Remove public IP and use Cloud NAT or bastion host for internet access",
				References: []string{
					"https://cloud.google.com/compute/docs/ip-addresses/external-ip-addresses",
				},
				Evaluate: checkGCPComputePublicIP,
			},
			{
				ID:            "gcp_firewall_open",
				Name:          "Firewall Rule Open to Internet",
				Category:      "network",
				Severity:      findings.SeverityCritical,
				Description:   "Firewall rule allows traffic from 0.0.0.0/0",
				FixSuggestion: "Restrict source ranges to specific IP addresses or ranges",
				References: []string{
					"https://cloud.google.com/vpc/docs/firewalls",
				},
				Evaluate: checkGCPFirewallOpen,
			},
			{
				ID:            "gcp_storage_public",
				Name:          "Cloud Storage Public Access",
				Category:      "storage",
				Severity:      findings.SeverityHigh,
				Description:   "Cloud Storage bucket allows public access",
				FixSuggestion: "Remove allUsers and allAuthenticatedUsers from bucket IAM",
				References: []string{
					"https://cloud.google.com/storage/docs/access-control/making-data-public",
				},
				Evaluate: checkGCPStoragePublic,
			},
			{
				ID:            "gcp_sql_public_ip",
				Name:          "Cloud SQL Public IP",
				Category:      "database",
				Severity:      findings.SeverityHigh,
				Description:   "Cloud SQL instance has a public IP address",
				FixSuggestion: "Use private IP and remove public IP configuration",
				References: []string{
					"https://cloud.google.com/sql/docs/mysql/private-ip",
				},
				Evaluate: checkGCPSQLPublicIP,
			},
		},
	}
}

// checkGCPComputePublicIP flags instances where any network interface holds
// an access_config entry; presence alone means a public IP. One violation
// per instance, so scanning stops at the first matching interface.
func checkGCPComputePublicIP(doc document.Document) []Violation {
	var violations []Violation

	eachResource(doc, []string{"google_compute_instance"}, func(resourceType, name string, cfg map[string]any) {
		for _, v := range document.GetSeq(cfg, "network_interface") {
			iface, ok := v.(map[string]any)
			if !ok {
				continue
			}
			if len(document.GetSeq(iface, "access_config")) > 0 {
				violations = append(violations, Violation{
					Message:  fmt.Sprintf("Compute instance %s has a public IP", name),
					Resource: address(resourceType, name),
					Line:     document.Line(cfg),
				})
				break
			}
		}
	})

	return violations
}

func checkGCPFirewallOpen(doc document.Document) []Violation {
	var violations []Violation

	eachResource(doc, []string{"google_compute_firewall"}, func(resourceType, name string, cfg map[string]any) {
		direction := document.GetString(cfg, "direction", "INGRESS")
		if direction != "INGRESS" {
			return
		}
		if !document.ContainsString(document.GetSeq(cfg, "source_ranges"), "0.0.0.0/0") {
			return
		}
		// A deny-only firewall open to the world is not a violation.
		if len(document.GetSeq(cfg, "allow")) == 0 {
			return
		}
		violations = append(violations, Violation{
			Message:  fmt.Sprintf("Firewall rule %s allows ingress from anywhere", name),
			Resource: address(resourceType, name),
			Line:     document.Line(cfg),
		})
	})

	return violations
}

func checkGCPStoragePublic(doc document.Document) []Violation {
	var violations []Violation

	eachResource(doc, []string{"google_storage_bucket_iam_member"}, func(resourceType, name string, cfg map[string]any) {
		member := document.GetString(cfg, "member", "")
		if member == "allUsers" || member == "allAuthenticatedUsers" {
			violations = append(violations, Violation{
				Message:  fmt.Sprintf("Storage bucket IAM %s grants public access", name),
				Resource: address(resourceType, name),
				Line:     document.Line(cfg),
			})
		}
	})

	return violations
}

// checkGCPSQLPublicIP flags instances whose ip_configuration leaves
// ipv4_enabled on. Cloud SQL enables the public IP by default, so absence of
// the setting is a violation.
func checkGCPSQLPublicIP(doc document.Document) []Violation {
	var violations []Violation

	eachResource(doc, []string{"google_sql_database_instance"}, func(resourceType, name string, cfg map[string]any) {
		settings := document.GetMap(cfg, "settings")
		ipConfiguration := document.GetMap(settings, "ip_configuration")

		if document.GetBool(ipConfiguration, "ipv4_enabled", true) {
			violations = append(violations, Violation{
				Message:  fmt.Sprintf("Cloud SQL instance %s has public IP enabled", name),
				Resource: address(resourceType, name),
				Line:     document.Line(cfg),
			})
		}
	})

	return violations
}
