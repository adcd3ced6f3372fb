// wikifetch fetches an article from any MediaWiki-powered site and prints it
// as plain text, Markdown, or raw wikitext.
//
// Usage:
//
//	wikifetch [flags] <base-url> <query>
//	wikifetch en.wikipedia.org "golang"
//	wikifetch -m -s cuberpg.fandom.com "Cube"
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "wikifetch: %v\n", err)
		os.Exit(1)
	}
}
