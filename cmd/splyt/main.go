package main

import "github.com/forPelevin/splyt/internal/cli"

func main() {
	cli.Main()
}
