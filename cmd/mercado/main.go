package main

import "github.com/pac-william/mercado/internal/cli"

func main() {
	cli.Execute()
}
