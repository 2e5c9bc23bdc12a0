package main

import "github.com/UB-Mannheim/maidisco/cmd"

func main() {
	cmd.Execute()
}
