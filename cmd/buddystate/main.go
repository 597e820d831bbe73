package main

import "github.com/cameron-webmatter/buddystate/pkg/cli"

func main() {
	cli.Execute()
}
