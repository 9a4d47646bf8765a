// Package main is the entry point of the ledger CLI and worker.
package main

import (
	"os"

	"github.com/SscSPs/erp_ledger/cmd/ledger_backend/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
