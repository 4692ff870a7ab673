package main

import "github.com/mcoot/sovereign-client/internal/cli"

func main() {
	cli.Execute()
}
