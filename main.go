package main

import "github.com/Yates-Labs/compujudge/cmd"

func main() {
	cmd.Execute()
}
