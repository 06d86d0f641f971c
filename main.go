package main

import (
	"wtodash/cmd"
)

func main() {
	cmd.Execute()
}
