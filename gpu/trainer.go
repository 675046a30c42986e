package gpu

import (
	"fmt"

	"github.com/openfluke/webgpu/wgpu"
)

// TrainerSpec carries the packed dataset and initial parameters for a
// device training run. Weights are row-major, row = unit, matching the
// host layer layout.
type TrainerSpec struct {
	Points  []float32 // [batch*2] x,y pairs
	Targets []float32 // [batch] labels as 0/1
	W1      []float32 // [HiddenSize * InputSize]
	B1      []float32 // [HiddenSize]
	W2      []float32 // [OutputSize * HiddenSize]
	B2      []float32 // [OutputSize]

	LearningRate float32
}

// Trainer owns the device-side training pipeline for the fixed
// 2 -> HiddenSize -> 1 topology. One Step is a single command submission
// containing the forward, gradient and update stages in order; the caller
// drives the epoch loop and reads outputs back only when it needs metrics.
type Trainer struct {
	BatchSize    int
	LearningRate float32

	ctx *Context

	pointBuf     *wgpu.Buffer // [batch*2]
	targetBuf    *wgpu.Buffer // [batch]
	w1Buf        *wgpu.Buffer
	b1Buf        *wgpu.Buffer
	w2Buf        *wgpu.Buffer
	b2Buf        *wgpu.Buffer
	hiddenPreBuf *wgpu.Buffer // [batch*HiddenSize] pre-activation cache
	outputBuf    *wgpu.Buffer // [batch]
	gradBuf      *wgpu.Buffer // [batch*ParameterCount] per-sample arena
	lrBuf        *wgpu.Buffer // uniform f32

	forwardPipeline  *wgpu.ComputePipeline
	gradientPipeline *wgpu.ComputePipeline
	updatePipeline   *wgpu.ComputePipeline

	forwardLayout *wgpu.BindGroupLayout // kept for transient predict binds

	forwardBind  *wgpu.BindGroup
	gradientBind *wgpu.BindGroup
	updateBind   *wgpu.BindGroup

	sampleGroups uint32 // workgroups covering one invocation per sample
	paramGroups  uint32 // workgroups covering one invocation per parameter
}

// NewTrainer allocates buffers and compiles the three stage pipelines.
// Returns an error if no compatible device is available; the caller may
// fall back to the host backend.
func NewTrainer(spec TrainerSpec) (*Trainer, error) {
	batch := len(spec.Targets)
	if batch < 1 {
		return nil, fmt.Errorf("gpu: empty dataset")
	}
	if len(spec.Points) != batch*InputSize {
		return nil, fmt.Errorf("gpu: points length %d does not match %d samples", len(spec.Points), batch)
	}
	if len(spec.W1) != weight1Size || len(spec.B1) != bias1Size ||
		len(spec.W2) != weight2Size || len(spec.B2) != bias2Size {
		return nil, fmt.Errorf("gpu: parameter shapes do not match the fixed 2-%d-1 topology", HiddenSize)
	}

	c, err := GetContext()
	if err != nil {
		return nil, fmt.Errorf("gpu unavailable: %w", err)
	}

	t := &Trainer{
		BatchSize:    batch,
		LearningRate: spec.LearningRate,
		ctx:          c,
	}
	if err := t.allocateBuffers(spec); err != nil {
		t.Cleanup()
		return nil, err
	}
	if err := t.compile(); err != nil {
		t.Cleanup()
		return nil, err
	}
	if err := t.createBindGroups(); err != nil {
		t.Cleanup()
		return nil, err
	}

	t.sampleGroups = uint32((batch + 63) / 64)
	t.paramGroups = uint32((ParameterCount + 63) / 64)
	return t, nil
}

func (t *Trainer) allocateBuffers(spec TrainerSpec) error {
	if Debug {
		Log("allocating trainer buffers (batch %d, %d params)", t.BatchSize, ParameterCount)
	}

	storage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc

	var err error
	if t.pointBuf, err = NewFloatBuffer("Points", spec.Points, storage); err != nil {
		return err
	}
	if t.targetBuf, err = NewFloatBuffer("Targets", spec.Targets, storage); err != nil {
		return err
	}
	if t.w1Buf, err = NewFloatBuffer("W1", spec.W1, storage); err != nil {
		return err
	}
	if t.b1Buf, err = NewFloatBuffer("B1", spec.B1, storage); err != nil {
		return err
	}
	if t.w2Buf, err = NewFloatBuffer("W2", spec.W2, storage); err != nil {
		return err
	}
	if t.b2Buf, err = NewFloatBuffer("B2", spec.B2, storage); err != nil {
		return err
	}
	if t.hiddenPreBuf, err = NewEmptyBuffer("HiddenPre", t.BatchSize*HiddenSize, storage); err != nil {
		return err
	}
	if t.outputBuf, err = NewEmptyBuffer("Output", t.BatchSize, storage); err != nil {
		return err
	}
	if t.gradBuf, err = NewEmptyBuffer("GradArena", t.BatchSize*ParameterCount, storage); err != nil {
		return err
	}
	t.lrBuf, err = NewFloatBuffer("LearningRate", []float32{spec.LearningRate},
		wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	return err
}

func (t *Trainer) compile() error {
	// Forward gets an explicit layout so Predict can bind transient grid
	// buffers against the same pipeline.
	var err error
	t.forwardLayout, err = t.ctx.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Forward_BGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}},
			{Binding: 1, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}},
			{Binding: 3, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}},
			{Binding: 4, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}},
			{Binding: 5, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage}},
			{Binding: 6, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create forward bgl: %v", err)
	}

	pipelineLayout, err := t.ctx.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Forward_Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{t.forwardLayout},
	})
	if err != nil {
		return fmt.Errorf("create forward pipeline layout: %v", err)
	}

	t.forwardPipeline, err = t.makePipeline("Forward", forwardShader(), pipelineLayout)
	if err != nil {
		return err
	}
	if t.gradientPipeline, err = t.makePipeline("Gradient", gradientShader(), nil); err != nil {
		return err
	}
	t.updatePipeline, err = t.makePipeline("Update", updateShader(), nil)
	return err
}

func (t *Trainer) makePipeline(label, code string, layout *wgpu.PipelineLayout) (*wgpu.ComputePipeline, error) {
	if Debug {
		Log("compiling %s stage", label)
	}
	module, err := t.ctx.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label + "_Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
	if err != nil {
		return nil, fmt.Errorf("%s shader compile: %v", label, err)
	}
	defer module.Release()

	pipeline, err := t.ctx.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  label + "_Pipe",
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s pipeline create: %v", label, err)
	}
	return pipeline, nil
}

func (t *Trainer) createBindGroups() error {
	var err error
	t.forwardBind, err = t.ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Forward_Bind",
		Layout: t.forwardLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: t.pointBuf, Size: t.pointBuf.GetSize()},
			{Binding: 1, Buffer: t.w1Buf, Size: t.w1Buf.GetSize()},
			{Binding: 2, Buffer: t.b1Buf, Size: t.b1Buf.GetSize()},
			{Binding: 3, Buffer: t.w2Buf, Size: t.w2Buf.GetSize()},
			{Binding: 4, Buffer: t.b2Buf, Size: t.b2Buf.GetSize()},
			{Binding: 5, Buffer: t.hiddenPreBuf, Size: t.hiddenPreBuf.GetSize()},
			{Binding: 6, Buffer: t.outputBuf, Size: t.outputBuf.GetSize()},
		},
	})
	if err != nil {
		return fmt.Errorf("forward bind group: %v", err)
	}

	t.gradientBind, err = t.ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Gradient_Bind",
		Layout: t.gradientPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: t.pointBuf, Size: t.pointBuf.GetSize()},
			{Binding: 1, Buffer: t.targetBuf, Size: t.targetBuf.GetSize()},
			{Binding: 2, Buffer: t.w2Buf, Size: t.w2Buf.GetSize()},
			{Binding: 3, Buffer: t.hiddenPreBuf, Size: t.hiddenPreBuf.GetSize()},
			{Binding: 4, Buffer: t.outputBuf, Size: t.outputBuf.GetSize()},
			{Binding: 5, Buffer: t.gradBuf, Size: t.gradBuf.GetSize()},
		},
	})
	if err != nil {
		return fmt.Errorf("gradient bind group: %v", err)
	}

	t.updateBind, err = t.ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Update_Bind",
		Layout: t.updatePipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: t.gradBuf, Size: t.gradBuf.GetSize()},
			{Binding: 1, Buffer: t.w1Buf, Size: t.w1Buf.GetSize()},
			{Binding: 2, Buffer: t.b1Buf, Size: t.b1Buf.GetSize()},
			{Binding: 3, Buffer: t.w2Buf, Size: t.w2Buf.GetSize()},
			{Binding: 4, Buffer: t.b2Buf, Size: t.b2Buf.GetSize()},
			{Binding: 5, Buffer: t.lrBuf, Size: t.lrBuf.GetSize()},
		},
	})
	if err != nil {
		return fmt.Errorf("update bind group: %v", err)
	}
	return nil
}

// Step submits one epoch: forward, gradient and update as three compute
// passes in a single command buffer. Pass ordering is the barrier between
// stages; within a stage invocations write only their own slices. Step
// does not block on completion.
func (t *Trainer) Step() error {
	enc, err := t.ctx.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %v", err)
	}

	dispatch := func(p *wgpu.ComputePipeline, bind *wgpu.BindGroup, groups uint32) {
		pass := enc.BeginComputePass(nil)
		pass.SetPipeline(p)
		pass.SetBindGroup(0, bind, nil)
		pass.DispatchWorkgroups(groups, 1, 1)
		pass.End()
	}

	dispatch(t.forwardPipeline, t.forwardBind, t.sampleGroups)   // per sample
	dispatch(t.gradientPipeline, t.gradientBind, t.sampleGroups) // per sample
	dispatch(t.updatePipeline, t.updateBind, t.paramGroups)      // per parameter

	cmd, err := enc.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish command: %v", err)
	}
	t.ctx.Queue.Submit(cmd)
	return nil
}

// Outputs reads back the per-sample predictions written by the most recent
// forward stage, blocking until device work completes. Call only when
// metrics are needed; this is the expensive synchronization.
func (t *Trainer) Outputs() ([]float32, error) {
	return ReadBuffer(t.outputBuf, t.BatchSize)
}

// SetLearningRate updates the uniform consumed by the update stage.
func (t *Trainer) SetLearningRate(lr float32) {
	t.LearningRate = lr
	t.ctx.Queue.WriteBuffer(t.lrBuf, 0, wgpu.ToBytes([]float32{lr}))
}

// DownloadParameters reads the current weights and biases back to host
// memory, in the same row-major layout the TrainerSpec supplied them.
func (t *Trainer) DownloadParameters() (w1, b1, w2, b2 []float32, err error) {
	if w1, err = ReadBuffer(t.w1Buf, weight1Size); err != nil {
		return
	}
	if b1, err = ReadBuffer(t.b1Buf, bias1Size); err != nil {
		return
	}
	if w2, err = ReadBuffer(t.w2Buf, weight2Size); err != nil {
		return
	}
	b2, err = ReadBuffer(t.b2Buf, bias2Size)
	return
}

// DownloadGradients reads the whole per-sample gradient arena:
// batch slices of ParameterCount values each, laid out per the flat
// parameter order. Sample s's gradient for parameter p sits at
// s*ParameterCount+p.
func (t *Trainer) DownloadGradients() ([]float32, error) {
	return ReadBuffer(t.gradBuf, t.BatchSize*ParameterCount)
}

// Predict evaluates the current parameters over arbitrary packed
// coordinates [x0,y0, x1,y1, ...] using the forward pipeline with
// transient buffers. Used for decision-boundary grids.
func (t *Trainer) Predict(coords []float32) ([]float32, error) {
	n := len(coords) / InputSize
	if n == 0 {
		return nil, nil
	}

	storage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc
	pointBuf, err := NewFloatBuffer("PredictPoints", coords, storage)
	if err != nil {
		return nil, err
	}
	defer pointBuf.Destroy()
	hiddenBuf, err := NewEmptyBuffer("PredictHidden", n*HiddenSize, storage)
	if err != nil {
		return nil, err
	}
	defer hiddenBuf.Destroy()
	outBuf, err := NewEmptyBuffer("PredictOutput", n, storage)
	if err != nil {
		return nil, err
	}
	defer outBuf.Destroy()

	bind, err := t.ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Predict_Bind",
		Layout: t.forwardLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: pointBuf, Size: pointBuf.GetSize()},
			{Binding: 1, Buffer: t.w1Buf, Size: t.w1Buf.GetSize()},
			{Binding: 2, Buffer: t.b1Buf, Size: t.b1Buf.GetSize()},
			{Binding: 3, Buffer: t.w2Buf, Size: t.w2Buf.GetSize()},
			{Binding: 4, Buffer: t.b2Buf, Size: t.b2Buf.GetSize()},
			{Binding: 5, Buffer: hiddenBuf, Size: hiddenBuf.GetSize()},
			{Binding: 6, Buffer: outBuf, Size: outBuf.GetSize()},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("predict bind group: %v", err)
	}
	defer bind.Release()

	enc, err := t.ctx.Device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, err
	}
	pass := enc.BeginComputePass(nil)
	pass.SetPipeline(t.forwardPipeline)
	pass.SetBindGroup(0, bind, nil)
	pass.DispatchWorkgroups(uint32((n+63)/64), 1, 1)
	pass.End()

	cmd, err := enc.Finish(nil)
	if err != nil {
		return nil, err
	}
	t.ctx.Queue.Submit(cmd)

	return ReadBuffer(outBuf, n)
}

// Cleanup releases all device resources owned by the trainer.
func (t *Trainer) Cleanup() {
	for _, b := range []*wgpu.Buffer{
		t.pointBuf, t.targetBuf, t.w1Buf, t.b1Buf, t.w2Buf, t.b2Buf,
		t.hiddenPreBuf, t.outputBuf, t.gradBuf, t.lrBuf,
	} {
		if b != nil {
			b.Destroy()
		}
	}
	for _, p := range []*wgpu.ComputePipeline{
		t.forwardPipeline, t.gradientPipeline, t.updatePipeline,
	} {
		if p != nil {
			p.Release()
		}
	}
	for _, bg := range []*wgpu.BindGroup{t.forwardBind, t.gradientBind, t.updateBind} {
		if bg != nil {
			bg.Release()
		}
	}
}
