package skills

// Transformed is a bundle rewritten for one packaging target. File maps
// are keyed by slash-separated relative paths. Extra holds files the
// target lays out itself, such as MDC rules, keyed relative to the
// install root.
type Transformed struct {
	SkillMD   string
	Scripts   map[string]string
	Templates map[string]string
	Docs      map[string]string
	Examples  map[string]string
	Extra     map[string]string
}
