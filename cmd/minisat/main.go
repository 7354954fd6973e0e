package main

import "github.com/cybercalc/minisat-recipe/cmd/minisat/internal"

func main() {
	internal.Execute()
}
