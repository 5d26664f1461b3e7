package config

// Artifact file extensions.
const (
	// BundleFileExt marks serialized AST unit bundles.
	BundleFileExt = ".kiteb"
	// ExportFileExt marks module export files.
	ExportFileExt = ".kitex"
)

// Configuration file names, in lookup order.
const (
	ConfigFileName    = "kite.yaml"
	ConfigFileNameAlt = "kite.yml"
)

// Analysis defaults, used when kite.yaml omits the knob.
const (
	// DefaultDepthBound caps transitive generic instantiation chains.
	DefaultDepthBound = 64
	// DefaultMaxDiagnostics caps diagnostics reported per unit.
	DefaultMaxDiagnostics = 100
)

// Color modes for diagnostic rendering.
const (
	ColorAuto = "auto"
	ColorOn   = "on"
	ColorOff  = "off"
)
