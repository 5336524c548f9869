package buildinfo

// Set at build time via -ldflags "-X ...".
var (
	Version = "dev"
	Commit  = "none"
	BuiltAt = "unknown"
)
