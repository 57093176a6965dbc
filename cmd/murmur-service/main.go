package main

import (
	"fmt"
	"os"

	"github.com/murmur-app/murmur/murmurservice"
)

func main() {
	if err := murmurservice.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
