package main

import (
	"web_locator/presentation/cli"
)

func main() {
	cli.Main()
}

