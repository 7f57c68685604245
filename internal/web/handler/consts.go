package handler

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RootPath is the root path of a route group.
	RootPath = "/"

	// ErrNilDepsFatalLogMsg is used when a handler is initialized with a
	// nil dependency.
	ErrNilDepsFatalLogMsg = "app, cfg or flow is nil"
)
