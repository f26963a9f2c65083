// Package main provides the entry point for the relterms CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Aman-CERP/relterms/cmd/relterms/cmd"
	apperrors "github.com/Aman-CERP/relterms/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprint(os.Stderr, apperrors.FormatForCLI(err))
		os.Exit(apperrors.ExitCode(err))
	}
}
