package main

import "github.com/conorfennell/notedeck/internal/cli"

func main() {
	cli.Execute()
}
