package cache

// Keyer derives cache keys.
type Keyer interface {
	// FrameKey is the key for a simulated frame, identified by the hash of
	// everything that determines it (config, items, seed, gesture, ticks, size).
	FrameKey(sceneHash string) string

	// ArtifactKey is the key for one rendered output of a frame.
	ArtifactKey(frameHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change artifact bytes.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Scale      float64 `json:"scale,omitempty"`
	Background string  `json:"background,omitempty"`
	Labels     bool    `json:"labels"`
}

// keyVersion is bumped whenever the encoding of cached values changes.
const keyVersion = "v1"

// DefaultKeyer produces unscoped, versioned keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// FrameKey implements [Keyer].
func (DefaultKeyer) FrameKey(sceneHash string) string {
	return "frame:" + keyVersion + ":" + sceneHash
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(frameHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+keyVersion, frameHash, opts)
}
