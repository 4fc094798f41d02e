// Command odyssey-authctl runs operational tasks against an odyssey-auth
// deployment.
package main

import (
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
