package sphere

// Item is one technology entry shown on the sphere.
type Item struct {
	ID   string `json:"id" toml:"id" yaml:"id"`
	Icon string `json:"icon" toml:"icon" yaml:"icon"` // glyph reference, e.g. an icon font class
	Name string `json:"name" toml:"name" yaml:"name"`
}

// DefaultItems returns the reference technology stack.
func DefaultItems() []Item {
	return []Item{
		{ID: "python", Icon: "fab fa-python", Name: "Python"},
		{ID: "javascript", Icon: "fab fa-js", Name: "JavaScript"},
		{ID: "react", Icon: "fab fa-react", Name: "React"},
		{ID: "nodejs", Icon: "fab fa-node-js", Name: "Node.js"},
		{ID: "java", Icon: "fab fa-java", Name: "Java"},
		{ID: "git", Icon: "fab fa-git-alt", Name: "Git"},
		{ID: "docker", Icon: "fab fa-docker", Name: "Docker"},
		{ID: "aws", Icon: "fab fa-aws", Name: "AWS"},
		{ID: "vue", Icon: "fab fa-vuejs", Name: "Vue.js"},
		{ID: "angular", Icon: "fab fa-angular", Name: "Angular"},
	}
}
