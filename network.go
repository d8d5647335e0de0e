package hesmodel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A TensorType represent the role of the data a tensor stores.
type TensorType int

// TensorType constants
const (
	Weight TensorType = iota
	Bias
	PreActivation
	Activation
)

// A Tensor is a named block of elements that lives in a worker's memory. We
// do not carry the data since the costs are data independent.
type Tensor struct {
	ID       string
	Size     int
	Category TensorType
}

// IsParameter tells whether the tensor is trained, and thus has a gradient
// of the same size.
func (t Tensor) IsParameter() bool {
	return t.Category == Weight || t.Category == Bias
}

// A Layer is a fully connected layer of the trained network.
type Layer struct {
	Name    string
	Inputs  int
	Outputs int
}

// Tensors returns the weight, bias, pre-activation and activation tensors
// that the layer keeps alive during training.
func (l Layer) Tensors() []Tensor {
	return []Tensor{
		{ID: "W_" + l.Name, Size: l.Inputs * l.Outputs, Category: Weight},
		{ID: "b_" + l.Name, Size: l.Outputs, Category: Bias},
		{ID: "z_" + l.Name, Size: l.Outputs, Category: PreActivation},
		{ID: "a_" + l.Name, Size: l.Outputs, Category: Activation},
	}
}

// A Network is the stack of layers the workers train. Element counts are
// used as the memory unit; the word size cancels out once normalized.
type Network []Layer

// DefaultNetwork returns the 784-300-10 MNIST classifier the runtime costs
// were measured on.
func DefaultNetwork() Network {
	return Network{
		{Name: "1", Inputs: 784, Outputs: 300},
		{Name: "2", Inputs: 300, Outputs: 10},
	}
}

// Tensors returns the tensors of all the layers.
func (n Network) Tensors() []Tensor {
	var tensors []Tensor
	for _, l := range n {
		tensors = append(tensors, l.Tensors()...)
	}

	return tensors
}

// ParameterCount returns the number of trained elements. It is also the
// payload of a full-gradient exchange.
func (n Network) ParameterCount() int64 {
	var total int64
	for _, t := range n.Tensors() {
		if t.IsParameter() {
			total += int64(t.Size)
		}
	}

	return total
}

// ActivationCount returns the number of cached pre-activation and activation
// elements.
func (n Network) ActivationCount() int64 {
	var total int64
	for _, t := range n.Tensors() {
		if !t.IsParameter() {
			total += int64(t.Size)
		}
	}

	return total
}

// ForwardMemory returns the live elements of a forward pass: the parameters
// and the cached activations.
func (n Network) ForwardMemory() int64 {
	return n.ParameterCount() + n.ActivationCount()
}

// BackpropMemory returns the live elements of a backward pass: parameters
// and their gradients, plus the cached activations.
func (n Network) BackpropMemory() int64 {
	return 2*n.ParameterCount() + n.ActivationCount()
}

// Validate checks that every layer has a name and positive dimensions, and
// that consecutive layers connect.
func (n Network) Validate() error {
	if len(n) == 0 {
		return errors.New("network has no layers")
	}

	for i, l := range n {
		if l.Name == "" {
			return errors.Errorf("layer %d has no name", i)
		}

		if l.Inputs <= 0 || l.Outputs <= 0 {
			return errors.Errorf("layer %s has shape %dx%d", l.Name, l.Outputs, l.Inputs)
		}

		if i > 0 && n[i-1].Outputs != l.Inputs {
			return errors.Errorf("layer %s takes %d inputs but layer %s produces %d",
				l.Name, l.Inputs, n[i-1].Name, n[i-1].Outputs)
		}
	}

	return nil
}

// A NetworkLoader loads a network description from a CSV file with the
// columns name, inputs, outputs and a header row.
type NetworkLoader struct {
	// The path of the CSV file.
	Path string
}

// Load reads the network.
func (l *NetworkLoader) Load() (Network, error) {
	absPath, err := filepath.Abs(l.Path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ','
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", l.Path)
	}

	network := make(Network, 0, len(records))

	for i, record := range records {
		if i == 0 {
			continue
		}

		layer, err := parseLayer(record)
		if err != nil {
			return nil, errors.Wrapf(err, "%s line %d", l.Path, i+1)
		}
		network = append(network, layer)
	}

	if err := network.Validate(); err != nil {
		return nil, errors.Wrap(err, l.Path)
	}

	return network, nil
}

func parseLayer(record []string) (Layer, error) {
	if len(record) != 3 {
		return Layer{}, fmt.Errorf("expected 3 fields, got %d", len(record))
	}

	inputs, err := strconv.Atoi(strings.TrimSpace(record[1]))
	if err != nil {
		return Layer{}, err
	}

	outputs, err := strconv.Atoi(strings.TrimSpace(record[2]))
	if err != nil {
		return Layer{}, err
	}

	return Layer{
		Name:    strings.TrimSpace(record[0]),
		Inputs:  inputs,
		Outputs: outputs,
	}, nil
}
