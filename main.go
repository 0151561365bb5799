package main

import "github.com/khrees2412/cvbuilder/cmd"

func main() {
	cmd.Execute()
}
