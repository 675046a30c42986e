package gpu

import "fmt"

// Debug enables verbose logging of buffer allocation, shader compilation
// and dispatch.
var Debug = false

// Log prints one debug line. Callers guard with the Debug flag.
func Log(format string, args ...any) {
	fmt.Printf("[gpu] "+format+"\n", args...)
}
