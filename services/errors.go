package services

import "errors"

// Classified pipeline errors. Handlers map these to sanitized messages;
// upstream error text never reaches the client.
var (
	// ErrExternalService marks a transport-level failure of the imagery
	// catalog or land-cover raster service. Fatal to the request.
	ErrExternalService = errors.New("external analysis service unavailable")

	// ErrRenderFailed marks a chart construction failure. Isolated per
	// chart: the pipeline substitutes a placeholder and continues.
	ErrRenderFailed = errors.New("chart rendering failed")
)
