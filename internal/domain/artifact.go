package domain

import (
	"os"
	"path/filepath"
	"strings"
)

// ArtifactKind classifies a file for validation dispatch.
type ArtifactKind string

const (
	KindApex       ArtifactKind = "apex"           // .cls, .trigger
	KindAnonApex   ArtifactKind = "anonymous-apex" // .apex scratch scripts
	KindFlow       ArtifactKind = "flow"           // .flow-meta.xml
	KindSOQL       ArtifactKind = "soql"           // .soql
	KindSkill      ArtifactKind = "skill"          // SKILL.md
	KindCredential ArtifactKind = "credential"     // connectivity metadata
	KindUnknown    ArtifactKind = "unknown"
)

// credentialSuffixes are the metadata file suffixes that describe org
// connectivity and trigger setup suggestions instead of scoring.
var credentialSuffixes = []string{
	".namedCredential-meta.xml",
	".externalCredential-meta.xml",
	".cspTrustedSite-meta.xml",
	".remoteSite-meta.xml",
	".remoteSiteSetting-meta.xml",
	".externalServiceRegistration-meta.xml",
}

// DetectKind classifies a path by suffix. Unknown kinds are skipped by the
// hook, never rejected.
func DetectKind(path string) ArtifactKind {
	base := filepath.Base(path)
	for _, suffix := range credentialSuffixes {
		if strings.HasSuffix(base, suffix) {
			return KindCredential
		}
	}
	switch {
	case strings.HasSuffix(base, ".flow-meta.xml"):
		return KindFlow
	case strings.HasSuffix(base, ".cls"), strings.HasSuffix(base, ".trigger"):
		return KindApex
	case strings.HasSuffix(base, ".apex"):
		return KindAnonApex
	case strings.HasSuffix(base, ".soql"):
		return KindSOQL
	case strings.EqualFold(base, "SKILL.md"):
		return KindSkill
	default:
		return KindUnknown
	}
}

// Artifact is one source file loaded for validation. Content is re-read on
// every invocation; hooks are one-shot processes and never cache.
type Artifact struct {
	Path    string
	Kind    ArtifactKind
	Content string
	Lines   []string
}

// LoadArtifact reads a file and splits it into lines. The caller decides
// what to do with a read error; validators turn it into an Unreadable
// report rather than failing.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewArtifact(path, string(data)), nil
}

// NewArtifact builds an artifact from in-memory content.
func NewArtifact(path, content string) *Artifact {
	return &Artifact{
		Path:    path,
		Kind:    DetectKind(path),
		Content: content,
		Lines:   strings.Split(content, "\n"),
	}
}
