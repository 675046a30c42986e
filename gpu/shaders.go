package gpu

import "fmt"

// The training step is three sequential stages, each one WGSL kernel:
//
//	forward  - one invocation per sample, writes hidden pre-activations
//	           and the sigmoid output into that sample's slice
//	gradient - one invocation per sample, writes the sample's full
//	           gradient vector into its private arena slice
//	update   - one invocation per parameter, reduces the arena across
//	           samples and applies the descent step
//
// No invocation reads memory written by a sibling in the same stage, so
// the kernels need no atomics. The barrier between stages comes from pass
// ordering inside a single command submission.

// forwardShader computes the full 2-layer chain for one sample.
func forwardShader() string {
	return fmt.Sprintf(`
		@group(0) @binding(0) var<storage, read> points : array<f32>;
		@group(0) @binding(1) var<storage, read> w1 : array<f32>;
		@group(0) @binding(2) var<storage, read> b1 : array<f32>;
		@group(0) @binding(3) var<storage, read> w2 : array<f32>;
		@group(0) @binding(4) var<storage, read> b2 : array<f32>;
		@group(0) @binding(5) var<storage, read_write> hidden_pre : array<f32>;
		@group(0) @binding(6) var<storage, read_write> output : array<f32>;

		@compute @workgroup_size(64)
		fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
			let sample = gid.x;
			if (sample >= arrayLength(&output)) {
				return;
			}
			let h = %du;

			let px = points[sample * 2u];
			let py = points[sample * 2u + 1u];

			var out_sum: f32 = b2[0];
			for (var j: u32 = 0u; j < h; j++) {
				let pre = b1[j] + w1[j * 2u] * px + w1[j * 2u + 1u] * py;
				hidden_pre[sample * h + j] = pre;
				out_sum += w2[j] * max(pre, 0.0);
			}

			output[sample] = 1.0 / (1.0 + exp(-out_sum));
		}
	`, HiddenSize)
}

// gradientShader computes one sample's gradient for every parameter and
// writes it to the sample's slice of the flat arena. The output delta uses
// the Sigmoid+BCE closed form p - y directly.
func gradientShader() string {
	return fmt.Sprintf(`
		@group(0) @binding(0) var<storage, read> points : array<f32>;
		@group(0) @binding(1) var<storage, read> targets : array<f32>;
		@group(0) @binding(2) var<storage, read> w2 : array<f32>;
		@group(0) @binding(3) var<storage, read> hidden_pre : array<f32>;
		@group(0) @binding(4) var<storage, read> output : array<f32>;
		@group(0) @binding(5) var<storage, read_write> grads : array<f32>;

		@compute @workgroup_size(64)
		fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
			let sample = gid.x;
			if (sample >= arrayLength(&output)) {
				return;
			}
			let h = %du;
			let base = sample * %du; // this sample's arena slice

			let px = points[sample * 2u];
			let py = points[sample * 2u + 1u];

			// dL/dz_out for sigmoid + binary cross-entropy
			let delta_out = output[sample] - targets[sample];

			for (var j: u32 = 0u; j < h; j++) {
				let pre = hidden_pre[sample * h + j];

				// output layer: dW2[j] = delta_out * hidden[j]
				grads[base + %du + j] = delta_out * max(pre, 0.0);

				// hidden layer: delta_h = delta_out * w2[j] * relu'(pre)
				var delta_h: f32 = 0.0;
				if (pre > 0.0) {
					delta_h = delta_out * w2[j];
				}
				grads[base + j * 2u] = delta_h * px;
				grads[base + j * 2u + 1u] = delta_h * py;
				grads[base + %du + j] = delta_h;
			}

			grads[base + %du] = delta_out; // output bias
		}
	`, HiddenSize, ParameterCount, weight2Offset, bias1Offset, bias2Offset)
}

// updateShader reduces one parameter's contribution across all samples,
// normalizes by the batch size and applies the descent step in place.
// Parameter ranges resolve by sequential subtraction in the fixed order
// w1, b1, w2, b2.
func updateShader() string {
	return fmt.Sprintf(`
		@group(0) @binding(0) var<storage, read> grads : array<f32>;
		@group(0) @binding(1) var<storage, read_write> w1 : array<f32>;
		@group(0) @binding(2) var<storage, read_write> b1 : array<f32>;
		@group(0) @binding(3) var<storage, read_write> w2 : array<f32>;
		@group(0) @binding(4) var<storage, read_write> b2 : array<f32>;
		@group(0) @binding(5) var<uniform> lr : f32;

		@compute @workgroup_size(64)
		fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
			let p = gid.x;
			let param_count = %du;
			if (p >= param_count) {
				return;
			}

			let batch = arrayLength(&grads) / param_count;
			var sum: f32 = 0.0;
			for (var s: u32 = 0u; s < batch; s++) {
				sum += grads[s * param_count + p];
			}
			let step = lr * sum / f32(batch);

			var idx = p;
			if (idx < %du) {
				w1[idx] -= step;
				return;
			}
			idx -= %du;
			if (idx < %du) {
				b1[idx] -= step;
				return;
			}
			idx -= %du;
			if (idx < %du) {
				w2[idx] -= step;
				return;
			}
			idx -= %du;
			b2[idx] -= step;
		}
	`, ParameterCount,
		weight1Size, weight1Size,
		bias1Size, bias1Size,
		weight2Size, weight2Size)
}
