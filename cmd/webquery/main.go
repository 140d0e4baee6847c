package main

import "github.com/devicelab-dev/webquery/pkg/cli"

func main() {
	cli.Execute()
}
