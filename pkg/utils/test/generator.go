package testutils

import (
	"context"
	"fmt"
)

// MockGenerator is a test answer generator that records calls and returns
// configurable results.
type MockGenerator struct {
	// Answer is returned by Generate for any query.
	Answer string

	// LastQuery and LastContext capture the most recent Generate call.
	LastQuery   string
	LastContext string

	// Fail causes Generate to return an error.
	Fail bool
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		Answer: "mock answer",
	}
}

func (m *MockGenerator) Generate(_ context.Context, query, contextText string) (string, error) {
	if m.Fail {
		return "", fmt.Errorf("mock generation failure")
	}

	m.LastQuery = query
	m.LastContext = contextText
	return m.Answer, nil
}

func (m *MockGenerator) Close() error {
	return nil
}
