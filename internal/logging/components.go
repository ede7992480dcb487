package logging

// Component constants for structured logging, attached as the "component"
// attribute.
const (
	ComponentStartup   = "startup"
	ComponentConfig    = "config"
	ComponentProcessor = "processor"
	ComponentExtractor = "extractor"
	ComponentWorker    = "worker"
	ComponentMetrics   = "metrics"
	ComponentIO        = "io"
)
