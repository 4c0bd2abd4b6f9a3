package main

import (
	"github.com/pvrtools/tvmeta/internal/cmd"
)

func main() {
	cmd.Execute()
}
