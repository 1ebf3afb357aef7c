package memory

import "strings"

// Tag prefixes understood by the memory backend.
const (
	PrefixAgent      = "agent:"
	PrefixProject    = "project:"
	PrefixTask       = "task:"
	PrefixType       = "type:"
	PrefixTech       = "tech:"
	PrefixComponent  = "component:"
	PrefixFeature    = "feature:"
	PrefixError      = "error:"
	PrefixPattern    = "pattern:"
	PrefixDependency = "dep:"
)

// NormalizeTag lowercases and trims a tag and joins words with dashes.
func NormalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(tag)
}

// Tag builds a prefixed, normalised tag.
func Tag(prefix, value string) string {
	return prefix + NormalizeTag(value)
}

// TagOptions are the inputs to StandardTags.
type TagOptions struct {
	Agent   string
	Task    string
	Type    Type
	Project string
	Tech    []string
	Extra   []string
}

// StandardTags builds the tag set stored with every memory, in the order
// agent, task, type, project, tech, extra, without duplicates.
func StandardTags(opts TagOptions) []string {
	var tags []string
	seen := map[string]bool{}
	add := func(tag string) {
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	if opts.Agent != "" {
		add(Tag(PrefixAgent, opts.Agent))
	}
	if opts.Task != "" {
		add(Tag(PrefixTask, opts.Task))
	}
	if opts.Type != "" {
		add(Tag(PrefixType, string(opts.Type)))
	}
	if opts.Project != "" {
		add(Tag(PrefixProject, opts.Project))
	}
	for _, tech := range opts.Tech {
		add(Tag(PrefixTech, tech))
	}
	for _, extra := range opts.Extra {
		add(NormalizeTag(extra))
	}
	return tags
}

var techPatterns = []struct {
	tech     string
	keywords []string
}{
	{"typescript", []string{"typescript", ".ts", "tsc"}},
	{"javascript", []string{"javascript", ".js", "node"}},
	{"python", []string{"python", ".py", "pip"}},
	{"react", []string{"react", "jsx", "tsx", "usestate", "useeffect"}},
	{"docker", []string{"docker", "dockerfile", "container"}},
	{"postgres", []string{"postgres", "postgresql", "psql"}},
	{"supabase", []string{"supabase", "@supabase"}},
	{"qdrant", []string{"qdrant", "vector", "embedding"}},
}

// ExtractTech detects technologies mentioned in content.
func ExtractTech(content string) []string {
	lower := strings.ToLower(content)
	var found []string
	for _, p := range techPatterns {
		for _, kw := range p.keywords {
			if strings.Contains(lower, kw) {
				found = append(found, p.tech)
				break
			}
		}
	}
	return found
}

var extTech = map[string]string{
	"ts":  "typescript",
	"tsx": "typescript",
	"js":  "javascript",
	"jsx": "javascript",
	"py":  "python",
}

// TechForFile returns the technology implied by a file extension, or "".
func TechForFile(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return ""
	}
	return extTech[strings.ToLower(path[i+1:])]
}
