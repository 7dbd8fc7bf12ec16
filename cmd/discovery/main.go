package main

import "github.com/JakeFAU/opportunity-discovery/cmd"

func main() {
	cmd.Execute()
}
