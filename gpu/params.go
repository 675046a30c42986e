package gpu

// Device-side topology. The device kernels are hard-coded to one hidden
// layer: 2 -> HiddenSize (ReLU) -> 1 (Sigmoid).
const (
	InputSize  = 2
	HiddenSize = 32
	OutputSize = 1
)

// Flat parameter arena layout. Parameters occupy four contiguous ranges in
// a fixed order; the update kernel resolves an invocation's range by
// sequentially subtracting each range's size. The per-sample gradient
// arena uses the same layout with stride ParameterCount, so a parameter's
// flat index is also its offset inside every sample's gradient slice.
const (
	weight1Size = HiddenSize * InputSize
	bias1Size   = HiddenSize
	weight2Size = OutputSize * HiddenSize
	bias2Size   = OutputSize

	weight1Offset = 0
	bias1Offset   = weight1Offset + weight1Size
	weight2Offset = bias1Offset + bias1Size
	bias2Offset   = weight2Offset + weight2Size

	// ParameterCount is the total number of trainable parameters.
	ParameterCount = weight1Size + bias1Size + weight2Size + bias2Size
)

// ParameterRange identifies which parameter array a flat index falls in.
type ParameterRange int

const (
	RangeWeight1 ParameterRange = iota
	RangeBias1
	RangeWeight2
	RangeBias2
	RangeNone // invocation index beyond the last valid range: no work
)

// ResolveParameter maps a flat parameter index to its range and the offset
// within that range, mirroring the subtraction chain the update kernel
// performs. Every index in [0, ParameterCount) resolves to exactly one
// parameter; anything past the end resolves to RangeNone.
func ResolveParameter(idx int) (ParameterRange, int) {
	if idx < 0 {
		return RangeNone, 0
	}
	if idx < weight1Size {
		return RangeWeight1, idx
	}
	idx -= weight1Size
	if idx < bias1Size {
		return RangeBias1, idx
	}
	idx -= bias1Size
	if idx < weight2Size {
		return RangeWeight2, idx
	}
	idx -= weight2Size
	if idx < bias2Size {
		return RangeBias2, idx
	}
	return RangeNone, 0
}
