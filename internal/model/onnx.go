package model

import (
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

type ONNXOptions struct {
	ModelPath  string
	LibPath    string
	InputName  string
	OutputName string
	Layout     Layout
	ImageSize  int
}

// onnxClassifier runs an ONNX session bound to preallocated tensors. The
// bound tensors are shared, so Run is serialised.
type onnxClassifier struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// NewONNXLoader returns a Loader that opens opts.ModelPath with onnxruntime.
func NewONNXLoader(opts ONNXOptions) Loader {
	return func() (Classifier, error) {
		return newONNXClassifier(opts)
	}
}

func newONNXClassifier(opts ONNXOptions) (*onnxClassifier, error) {
	if _, err := os.Stat(opts.ModelPath); err != nil {
		return nil, fmt.Errorf("model file not available: %w", err)
	}

	if opts.LibPath != "" {
		ort.SetSharedLibraryPath(opts.LibPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	outputShape, err := outputShapeOf(opts.ModelPath, opts.OutputName)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, err
	}
	inputShape := ort.NewShape(opts.Layout.Shape(opts.ImageSize, opts.ImageSize)...)

	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(opts.ModelPath,
		[]string{opts.InputName}, []string{opts.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &onnxClassifier{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

// outputShapeOf reads the declared shape of the named output, pinning a
// dynamic batch axis to one.
func outputShapeOf(modelPath, outputName string) (ort.Shape, error) {
	_, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect model outputs: %w", err)
	}
	for _, info := range outputs {
		if info.Name != outputName {
			continue
		}
		shape := make(ort.Shape, len(info.Dimensions))
		for i, dim := range info.Dimensions {
			if dim < 1 {
				dim = 1
			}
			shape[i] = dim
		}
		return shape, nil
	}
	return nil, fmt.Errorf("model has no output named %q", outputName)
}

func (c *onnxClassifier) Infer(t Tensor) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	input := c.inputTensor.GetData()
	if len(t.Data) != len(input) {
		return nil, fmt.Errorf("expected %d input values, got %d", len(input), len(t.Data))
	}
	copy(input, t.Data)

	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := c.outputTensor.GetData()
	probs := make([]float32, len(out))
	copy(probs, out)
	return probs, nil
}

func (c *onnxClassifier) Close() error {
	var errs []error
	if c.session != nil {
		errs = append(errs, c.session.Destroy())
	}
	if c.inputTensor != nil {
		errs = append(errs, c.inputTensor.Destroy())
	}
	if c.outputTensor != nil {
		errs = append(errs, c.outputTensor.Destroy())
	}
	errs = append(errs, ort.DestroyEnvironment())
	return errors.Join(errs...)
}
