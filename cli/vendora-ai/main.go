package main

import (
	"os"

	assistantcmder "github.com/vendorahq/vendora-ai/cmd/assistant"
)

func main() {
	cmd := assistantcmder.NewAssistantCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
