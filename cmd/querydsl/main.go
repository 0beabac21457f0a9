package main

import (
	"fmt"
	"os"

	"github.com/study/querydsl-go/cmd/querydsl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", cmd.Warning("Error:"), err)
		os.Exit(1)
	}
}
