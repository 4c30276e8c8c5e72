package main

import "github.com/nyumbalink/nyumbalink/internal/cli"

func main() {
	cli.Execute()
}
