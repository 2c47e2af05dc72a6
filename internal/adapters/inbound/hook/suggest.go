package hook

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// credentialType describes one connectivity metadata file kind and what
// to tell the agent once it appears on disk.
type credentialType struct {
	label       string
	suffix      *regexp.Regexp
	script      string // automation script, empty when deployment is enough
	usage       string
	description string
	nextSteps   []string
}

var credentialTypes = []credentialType{
	{
		label:       "Named Credential",
		suffix:      regexp.MustCompile(`(?i)^(.+)\.namedCredential-meta\.xml$`),
		script:      "configure-named-credential.sh",
		usage:       "./scripts/configure-named-credential.sh <org-alias>",
		description: "Set API key securely via ConnectApi (Enhanced Named Credentials)",
		nextSteps: []string{
			"Deploy metadata: sf project deploy start --metadata NamedCredential:<name>",
			"Run script to configure API key securely",
			"Test connection in Setup → Named Credentials",
		},
	},
	{
		label:       "External Credential",
		suffix:      regexp.MustCompile(`(?i)^(.+)\.externalCredential-meta\.xml$`),
		script:      "configure-named-credential.sh",
		usage:       "./scripts/configure-named-credential.sh <org-alias>",
		description: "Configure External Credential with ConnectApi",
		nextSteps: []string{
			"Deploy External Credential first",
			"Deploy associated Named Credential",
			"Run script to set authentication parameters",
		},
	},
	{
		label:       "CSP Trusted Site",
		suffix:      regexp.MustCompile(`(?i)^(.+)\.cspTrustedSite-meta\.xml$`),
		description: "CSP Trusted Site created for endpoint security",
		nextSteps: []string{
			"Deploy: sf project deploy start --metadata CspTrustedSite:<name>",
			"Verify in Setup → CSP Trusted Sites",
		},
	},
	{
		label:       "Remote Site Setting",
		suffix:      regexp.MustCompile(`(?i)^(.+)\.(?:remoteSiteSetting|remoteSite)-meta\.xml$`),
		description: "Remote Site Setting created (legacy endpoint security)",
		nextSteps: []string{
			"Deploy: sf project deploy start --metadata RemoteSiteSetting:<name>",
			"Consider migrating to CSP Trusted Sites for modern approach",
		},
	},
	{
		label:       "External Service",
		suffix:      regexp.MustCompile(`(?i)^(.+)\.externalServiceRegistration-meta\.xml$`),
		description: "External Service registration created",
		nextSteps: []string{
			"Ensure Named Credential is configured first",
			"Deploy: sf project deploy start --metadata ExternalServiceRegistration:<name>",
			"Apex classes will be auto-generated from OpenAPI spec",
		},
	},
}

var (
	authProtocolRe = regexp.MustCompile(`<authProtocol>([^<]+)</authProtocol>`)
	endpointRe     = regexp.MustCompile(`<(?:endpoint|url)>([^<]+)</(?:endpoint|url)>`)
)

var authProtocolLabels = map[string]string{
	"OAuth":       "OAuth 2.0",
	"Jwt":         "JWT Bearer",
	"Custom":      "Custom (API Key)",
	"Certificate": "Certificate",
}

// Suggest builds the setup guidance for a connectivity metadata file.
// Content analysis is best-effort: an unreadable file still yields the
// per-type next steps.
func Suggest(path string) string {
	base := filepath.Base(path)
	for _, ct := range credentialTypes {
		m := ct.suffix.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		return ct.message(m[1], path)
	}
	// DetectKind and this table cover the same suffixes; a mismatch
	// means the table lost an entry.
	return fmt.Sprintf("Credential metadata detected: %s. Deploy it with sf project deploy start.", base)
}

func (ct credentialType) message(name, path string) string {
	rule := strings.Repeat("═", 60)
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n🔐 CREDENTIAL CONFIGURATION DETECTED\n%s\n\n", rule, rule)
	fmt.Fprintf(&b, "📄 File Type: %s\n", ct.label)
	fmt.Fprintf(&b, "📛 Name: %s\n", name)

	auth, endpoint := inspectContent(path)
	if auth != "" {
		fmt.Fprintf(&b, "🔑 Auth Protocol: %s\n", auth)
	}
	if endpoint != "" {
		fmt.Fprintf(&b, "🌐 Endpoint: %s\n", endpoint)
	}
	b.WriteString("\n")

	if ct.script != "" {
		fmt.Fprintf(&b, "🚀 AUTOMATION SCRIPT AVAILABLE\n")
		fmt.Fprintf(&b, "   Script: %s\n", ct.script)
		fmt.Fprintf(&b, "   Purpose: %s\n", ct.description)
		fmt.Fprintf(&b, "   💡 Offer to run: %s\n\n", ct.usage)
	}

	fmt.Fprintf(&b, "📋 NEXT STEPS:\n%s\n", strings.Repeat("─", 60))
	for i, step := range ct.nextSteps {
		fmt.Fprintf(&b, "   %d. %s\n", i+1, step)
	}

	if auth == authProtocolLabels["OAuth"] {
		b.WriteString("\n⚠️  OAuth detected: Consider using /sf-connected-apps to\n")
		b.WriteString("    create the Connected App for this credential.\n")
	}

	fmt.Fprintf(&b, "\n%s", rule)
	return b.String()
}

// inspectContent pulls the auth protocol and endpoint out of the
// metadata XML. Plain substring extraction is enough here; the file was
// written moments ago by the agent and follows the metadata schema.
func inspectContent(path string) (auth, endpoint string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", ""
	}
	content := string(data)
	if m := authProtocolRe.FindStringSubmatch(content); m != nil {
		auth = authProtocolLabels[m[1]]
		if auth == "" {
			auth = m[1]
		}
	}
	if m := endpointRe.FindStringSubmatch(content); m != nil {
		endpoint = m[1]
	}
	return auth, endpoint
}
