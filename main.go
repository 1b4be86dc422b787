package main

import "github.com/tugrulsicakyuz/mobile-delivy/cmd"

func main() {
	cmd.Execute()
}
