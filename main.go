package main

import (
	"github.com/maxgio92/eaudit/pkg/cmd"
)

func main() {
	cmd.Execute()
}
