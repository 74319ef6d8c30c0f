// cmd/telepathy/main.go
package main

import (
	"os"

	"telepathy/internal/climain"
)

func main() {
	os.Exit(climain.Main(os.Args[1:]))
}
