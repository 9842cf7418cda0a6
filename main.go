package main

import "github.com/truemediaorg/mediaresolver/cmd"

func main() {
	cmd.Execute()
}
