package workload

import (
	"fmt"
	"math/rand"
	"time"
)

// InstructionType constants define the types of operations.
const (
	InstructionTypeIndex = "index"
	InstructionTypeNow   = "now"
	InstructionTypeSend  = "send"
	InstructionTypeClear = "clear"
)

// Instruction represents a single operation in the workload.
type Instruction struct {
	Type    string        // one of the InstructionType constants
	Message string        // body for send operations
	Delay   time.Duration // Optional delay after executing the instruction
}

// WorkloadGenerator generates workloads based on specified parameters.
// Whatever share is left after index, send and clear goes to now.
type WorkloadGenerator struct {
	IndexPercentage  float64       // share of GET / operations
	SendPercentage   float64       // share of POST /send operations
	ClearPercentage  float64       // share of POST /clear operations
	ZipfianS         float64       // S parameter for Zipfian distribution (skewness)
	Vocabulary       uint64        // number of distinct message bodies
	MessageSize      int           // minimum message length in bytes
	OperationCount   int           // Total number of operations to generate
	InstructionDelay time.Duration // Optional delay between instructions
	Seed             int64         // 0 means seed from the clock
}

// NewWorkloadGenerator creates a new WorkloadGenerator with default parameters.
func NewWorkloadGenerator() *WorkloadGenerator {
	return &WorkloadGenerator{
		IndexPercentage:  0.6,
		SendPercentage:   0.3,
		ClearPercentage:  0.05,
		ZipfianS:         1.01,
		Vocabulary:       1000,
		MessageSize:      16,
		OperationCount:   1000,
		InstructionDelay: 0,
	}
}

// Validate reports parameter combinations Generate cannot honour.
func (wg *WorkloadGenerator) Validate() error {
	for name, p := range map[string]float64{
		"index": wg.IndexPercentage,
		"send":  wg.SendPercentage,
		"clear": wg.ClearPercentage,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("workload: %s percentage %.2f out of range", name, p)
		}
	}
	if sum := wg.IndexPercentage + wg.SendPercentage + wg.ClearPercentage; sum > 1 {
		return fmt.Errorf("workload: percentages add up to %.2f", sum)
	}
	if wg.ZipfianS <= 1 {
		return fmt.Errorf("workload: zipfian s must be > 1, got %.2f", wg.ZipfianS)
	}
	if wg.Vocabulary == 0 {
		return fmt.Errorf("workload: vocabulary must not be empty")
	}
	if wg.OperationCount < 0 {
		return fmt.Errorf("workload: negative operation count %d", wg.OperationCount)
	}
	return nil
}

// Generate creates a workload based on the generator's parameters. The
// same Seed always yields the same instructions.
func (wg *WorkloadGenerator) Generate() []Instruction {
	seed := wg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	zipf := rand.NewZipf(rng, wg.ZipfianS, 1, wg.Vocabulary-1)

	instructions := make([]Instruction, 0, wg.OperationCount)

	for i := 0; i < wg.OperationCount; i++ {
		instr := Instruction{Delay: wg.InstructionDelay}

		switch r := rng.Float64(); {
		case r < wg.IndexPercentage:
			instr.Type = InstructionTypeIndex
		case r < wg.IndexPercentage+wg.SendPercentage:
			instr.Type = InstructionTypeSend
			instr.Message = wg.message(zipf.Uint64())
		case r < wg.IndexPercentage+wg.SendPercentage+wg.ClearPercentage:
			instr.Type = InstructionTypeClear
		default:
			instr.Type = InstructionTypeNow
		}
		instructions = append(instructions, instr)
	}

	return instructions
}

// message renders vocabulary entry k, padded to MessageSize.
func (wg *WorkloadGenerator) message(k uint64) string {
	return fmt.Sprintf("msg-%0*d", max(wg.MessageSize-4, 1), k)
}
