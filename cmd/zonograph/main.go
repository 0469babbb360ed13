package main

import "github.com/MeKo-Tech/zonograph/internal/cmd"

func main() {
	cmd.Execute()
}
