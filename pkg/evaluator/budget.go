package evaluator

// Limits bounds the resources one execution may consume. Zero fields use
// the defaults.
type Limits struct {
	// MaxCallDepth caps nested user function calls.
	MaxCallDepth int
	// MaxIterations caps the total number of loop iterations; 0 means
	// unlimited.
	MaxIterations int64
}

const defaultMaxCallDepth = 2000

// usage tracks consumption against Limits during one execution.
type usage struct {
	depth      int
	iterations int64
}
