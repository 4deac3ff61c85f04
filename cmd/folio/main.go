// Folio - GitHub activity for a portfolio page
package main

import (
	"os"

	"github.com/HartBrook/folio/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
