package main

import "igatool/cmd"

func main() {
	cmd.Execute()
}
