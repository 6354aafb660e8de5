// Package generator dispatches payment orders to the file generator of their
// journal's process method. To add a format, implement PaymentFileGenerator
// and register it with the Registry used by the converter.
package generator

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ginjaninja78/csb3411-remittance/internal/attach"
	"github.com/ginjaninja78/csb3411-remittance/internal/remittance"
	"github.com/ginjaninja78/csb3411-remittance/internal/types"
	"github.com/shopspring/decimal"
)

// ErrUnknownProcessMethod is returned by Lookup for unregistered methods.
var ErrUnknownProcessMethod = errors.New("unknown process method")

// Report summarises a generated file.
type Report struct {
	Records  int
	Payments int
	Amount   decimal.Decimal
	Size     int
}

// PaymentFileGenerator produces the bank file of one payment order.
type PaymentFileGenerator interface {
	// Method returns the process method this generator serves.
	Method() types.ProcessMethod

	// Generate encodes order and hands the file to sink. The sink is called
	// exactly once on success and never on failure.
	Generate(order *types.PaymentOrder, sink attach.Sink) (Report, error)
}

// Registry is the dispatch table keyed by process method.
type Registry struct {
	mu         sync.RWMutex
	generators map[types.ProcessMethod]PaymentFileGenerator
}

// NewRegistry creates a Registry holding gens.
func NewRegistry(gens ...PaymentFileGenerator) (*Registry, error) {
	r := &Registry{generators: make(map[types.ProcessMethod]PaymentFileGenerator)}
	for _, g := range gens {
		if err := r.Register(g); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a generator. A method can only be registered once.
func (r *Registry) Register(g PaymentFileGenerator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.generators[g.Method()]; exists {
		return fmt.Errorf("process method %q is already registered", g.Method())
	}
	r.generators[g.Method()] = g
	return nil
}

// Lookup returns the generator of a process method.
func (r *Registry) Lookup(method types.ProcessMethod) (PaymentFileGenerator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.generators[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProcessMethod, method)
	}
	return g, nil
}

// Methods returns the registered process methods in sorted order.
func (r *Registry) Methods() []types.ProcessMethod {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.ProcessMethod, 0, len(r.generators))
	for m := range r.generators {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// =============================================================================
// CSB 34-11
// =============================================================================

// CSB3411 generates CSB 34-11 payment order files.
type CSB3411 struct {
	encoder *remittance.Encoder
}

// NewCSB3411 creates the CSB 34-11 generator.
func NewCSB3411(encoder *remittance.Encoder) *CSB3411 {
	return &CSB3411{encoder: encoder}
}

// Method implements PaymentFileGenerator.
func (g *CSB3411) Method() types.ProcessMethod {
	return types.ProcessCSB3411
}

// Generate implements PaymentFileGenerator.
func (g *CSB3411) Generate(order *types.PaymentOrder, sink attach.Sink) (Report, error) {
	data, totals, err := g.encoder.EncodeWithTotals(order)
	if err != nil {
		return Report{}, err
	}

	if err := sink.Attach(data); err != nil {
		return Report{}, fmt.Errorf("failed to attach remittance file: %w", err)
	}

	return Report{
		Records:  totals.Records,
		Payments: totals.Payments,
		Amount:   order.TotalAmount(),
		Size:     len(data),
	}, nil
}
