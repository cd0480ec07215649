// Package main generates markdown reference pages for the magecli command
// tree. Usage: docgen [output-dir], defaulting to docs/cli.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/donaldgifford/magento-go/cmd/magecli/cmd"
)

func main() {
	out := "docs/cli"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}

	if err := os.MkdirAll(out, 0o750); err != nil {
		log.Fatalf("creating %s: %v", out, err)
	}

	root := cmd.Root()
	root.DisableAutoGenTag = true

	if err := doc.GenMarkdownTree(root, out); err != nil {
		log.Fatalf("generating docs: %v", err)
	}

	pages, err := os.ReadDir(out)
	if err != nil {
		log.Fatalf("reading %s: %v", out, err)
	}
	fmt.Printf("wrote %d pages to %s/\n", len(pages), out)
}
