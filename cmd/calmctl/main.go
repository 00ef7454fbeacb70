package main

import "github.com/tahcohcat/calmkid/cmd/calmctl/root"

func main() {
	root.Execute()
}
