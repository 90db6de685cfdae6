package main

import "github.com/tilecut/tilecut/cmd"

func main() {
	cmd.Execute()
}
