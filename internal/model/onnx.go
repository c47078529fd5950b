package model

import (
	"context"
	"fmt"
	"os"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig locates an ONNX classifier and the runtime library that runs it.
type ONNXConfig struct {
	ModelPath         string
	SharedLibraryPath string
	// InputName and OutputName select model I/O; empty means the first one.
	InputName      string
	OutputName     string
	IntraOpThreads int
	ImageSize      int
}

// ONNXBackend runs an NHWC image classifier through onnxruntime. Each Run
// allocates its own tensors, so one session serves concurrent callers.
type ONNXBackend struct {
	session     *ort.DynamicAdvancedSession
	inputShape  []int64
	outputWidth int
}

// OpenONNX initializes the onnxruntime environment and creates a session.
// Every failure is reported as ErrConfiguration.
func OpenONNX(cfg ONNXConfig) (*ONNXBackend, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: model artifact: %v", ErrConfiguration, err)
	}

	if cfg.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.SharedLibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("%w: failed to initialize ONNX environment: %v", ErrConfiguration, err)
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read model I/O: %v", ErrConfiguration, err)
	}
	in, err := pickIO(inputs, cfg.InputName, "input")
	if err != nil {
		return nil, err
	}
	out, err := pickIO(outputs, cfg.OutputName, "output")
	if err != nil {
		return nil, err
	}

	inputShape, err := imageInputShape(in.Dimensions, cfg.ImageSize)
	if err != nil {
		return nil, err
	}
	outputWidth, err := classWidth(out)
	if err != nil {
		return nil, err
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create session options: %v", ErrConfiguration, err)
	}
	defer opts.Destroy()
	if cfg.IntraOpThreads > 0 {
		if err := opts.SetIntraOpNumThreads(cfg.IntraOpThreads); err != nil {
			return nil, fmt.Errorf("%w: failed to set intra-op threads: %v", ErrConfiguration, err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{in.Name}, []string{out.Name}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create ONNX session: %v", ErrConfiguration, err)
	}

	return &ONNXBackend{
		session:     session,
		inputShape:  inputShape,
		outputWidth: outputWidth,
	}, nil
}

func (b *ONNXBackend) InputShape() []int64 { return append([]int64(nil), b.inputShape...) }

func (b *ONNXBackend) OutputWidth() int { return b.outputWidth }

func (b *ONNXBackend) Run(ctx context.Context, input []float32) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(b.inputShape...), input)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	// A nil output is allocated by the session with the model's output shape.
	outputs := []ort.ArbitraryTensor{nil}
	if err := b.session.Run([]ort.ArbitraryTensor{inputTensor}, outputs); err != nil {
		return nil, err
	}
	defer outputs[0].Destroy()

	outputTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output type %T", outputs[0])
	}
	data := outputTensor.GetData()
	if len(data) < b.outputWidth {
		return nil, fmt.Errorf("output has %d values, want %d", len(data), b.outputWidth)
	}
	scores := make([]float32, b.outputWidth)
	copy(scores, data)
	return scores, nil
}

func (b *ONNXBackend) Close() error {
	if b.session != nil {
		if err := b.session.Destroy(); err != nil {
			return err
		}
	}
	return ort.DestroyEnvironment()
}

func pickIO(infos []ort.InputOutputInfo, name, kind string) (ort.InputOutputInfo, error) {
	if len(infos) == 0 {
		return ort.InputOutputInfo{}, fmt.Errorf("%w: model has no %s", ErrConfiguration, kind)
	}
	if name == "" {
		return infos[0], nil
	}
	for _, info := range infos {
		if info.Name == name {
			return info, nil
		}
	}
	return ort.InputOutputInfo{}, fmt.Errorf("%w: model has no %s named %q", ErrConfiguration, kind, name)
}

// imageInputShape checks that dims describe a (batch, size, size, 3) input
// and pins the batch dimension to 1. Dynamic (negative) dims are accepted.
func imageInputShape(dims ort.Shape, size int) ([]int64, error) {
	if len(dims) != 4 {
		return nil, fmt.Errorf("%w: expected a 4-d NHWC input, got %v", ErrConfiguration, dims)
	}
	want := []int64{int64(size), int64(size), 3}
	for i, d := range dims[1:] {
		if d > 0 && d != want[i] {
			return nil, fmt.Errorf("%w: model input %v does not accept (1, %d, %d, 3)", ErrConfiguration, dims, size, size)
		}
	}
	if dims[0] != 1 && dims[0] > 0 {
		return nil, fmt.Errorf("%w: model batch dimension is %d, want 1", ErrConfiguration, dims[0])
	}
	return []int64{1, int64(size), int64(size), 3}, nil
}

// classWidth is the size of the output's last dimension, which must be fixed.
func classWidth(out ort.InputOutputInfo) (int, error) {
	dims := out.Dimensions
	if len(dims) == 0 || dims[len(dims)-1] <= 0 {
		return 0, fmt.Errorf("%w: output %q has no fixed class dimension: %v", ErrConfiguration, out.Name, dims)
	}
	return int(dims[len(dims)-1]), nil
}
