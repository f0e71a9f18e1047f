package main

import (
	"github.com/abe-nagisa/zipcore/cmd"
)

func main() {
	cmd.Execute()
}
