package main

import "github.com/unparalleled-js/solidity/cmd"

func main() {
	cmd.Execute()
}
