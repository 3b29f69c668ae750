package main

import "github.com/khanhlinhdang/atkcore/pkg/cmd"

func main() {
	cmd.Execute()
}
