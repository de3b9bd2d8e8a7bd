package main

import (
	"github.com/mchmarny/prosody/pkg/cli"
)

func main() {
	cli.Execute()
}
