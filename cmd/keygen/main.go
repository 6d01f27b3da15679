// Command keygen prints a fresh API key in the accepted shape. Only the
// 8-character prefix is logged; the full key goes to stdout alone.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/elsinore-cloud/hamletqa/internal/keygen"
)

func main() {
	length := flag.Int("length", keygen.DefaultLength, "key length (20-50)")
	flag.Parse()

	key, err := keygen.Generate(*length)
	if err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "generated key %s...\n", keygen.Prefix(key))
	fmt.Println(key)
}
