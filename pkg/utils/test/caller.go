package testutils

import (
	"context"
	"errors"

	"github.com/vendorahq/vendora-ai/pkg/llm"
)

// ErrMockCall is returned by FailingCaller.
var ErrMockCall = errors.New("mock model call failure")

// StaticCaller returns an llm.CallFunc that always replies with response
// and records the prompts it received.
func StaticCaller(response string, prompts *[]string) llm.CallFunc {
	return func(_ context.Context, prompt string) (string, error) {
		if prompts != nil {
			*prompts = append(*prompts, prompt)
		}
		return response, nil
	}
}

// FailingCaller returns an llm.CallFunc that always fails.
func FailingCaller() llm.CallFunc {
	return func(context.Context, string) (string, error) {
		return "", ErrMockCall
	}
}
