package main

import "github.com/Rorical/RoriChat/cmd"

func main() {
	cmd.Execute()
}
