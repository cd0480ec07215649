// Package main is the entry point for the magecli CLI client.
package main

import (
	"github.com/donaldgifford/magento-go/cmd/magecli/cmd"
)

func main() {
	cmd.Execute()
}
